package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/normalization"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// Membership actions for ComplectService.Change.
const (
	ComplectAdd    = "add"
	ComplectRemove = "remove"
)

type ComplectInput struct {
	ID             *uuid.UUID        `json:"id,omitempty"`
	Name           *string           `json:"name,omitempty"`
	Code           *string           `json:"code,omitempty"`
	State          *string           `json:"state,omitempty"`
	ProfileIDs     *[]uuid.UUID      `json:"profile_ids,omitempty"`
	Meta           datatypes.JSONMap `json:"meta,omitempty"`
	IsEnabled      *bool             `json:"is_enabled,omitempty"`
	CompilerTarget *string           `json:"compiler_target,omitempty"`
	DebugTarget    *string           `json:"debug_target,omitempty"`
	DeployTarget   *string           `json:"deploy_target,omitempty"`
}

type ComplectService interface {
	Create(dbc dbctx.Context, in ComplectInput) (*types.Complect, error)
	CreateBatch(dbc dbctx.Context, in []ComplectInput) ([]*types.Complect, error)
	Update(dbc dbctx.Context, in ComplectInput) (*types.Complect, error)
	UpdateBatch(dbc dbctx.Context, in []ComplectInput) ([]*types.Complect, error)
	Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Complect, error)
	List(dbc dbctx.Context, paging Paging) (*ListResult, error)
	Change(dbc dbctx.Context, id uuid.UUID, action string, profileID uuid.UUID) (*types.Complect, error)
	Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error)
}

type complectService struct {
	db        *gorm.DB
	log       *logger.Logger
	complects *repos.ComplectRepo
}

func NewComplectService(db *gorm.DB, log *logger.Logger, set *repos.Set) ComplectService {
	return &complectService{
		db:        db,
		log:       log.With("service", "ComplectService"),
		complects: set.Complect,
	}
}

func (s *complectService) Create(dbc dbctx.Context, in ComplectInput) (*types.Complect, error) {
	return s.complects.CreateOrUpdate(dbc, nil, func(c *types.Complect) error {
		c.State = base.StateActive
		c.IsEnabled = true
		c.Meta = emptyMeta()
		c.ProfileIDs = datatypes.JSONSlice[uuid.UUID]{}
		return s.apply(c, in)
	})
}

func (s *complectService) CreateBatch(dbc dbctx.Context, in []ComplectInput) ([]*types.Complect, error) {
	return batch(s.db, dbc, in, s.Create)
}

func (s *complectService) Update(dbc dbctx.Context, in ComplectInput) (*types.Complect, error) {
	key, err := requireID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.complects.CreateOrUpdate(dbc, key, func(c *types.Complect) error {
		return s.apply(c, in)
	})
}

func (s *complectService) UpdateBatch(dbc dbctx.Context, in []ComplectInput) ([]*types.Complect, error) {
	return batch(s.db, dbc, in, s.Update)
}

func (s *complectService) apply(c *types.Complect, in ComplectInput) error {
	if err := applyState(&c.State, in.State); err != nil {
		return err
	}
	setString(&c.Name, in.Name)
	setString(&c.Code, in.Code)
	setBool(&c.IsEnabled, in.IsEnabled)
	setMeta(&c.Meta, in.Meta)
	setString(&c.CompilerTarget, in.CompilerTarget)
	setString(&c.DebugTarget, in.DebugTarget)
	setString(&c.DeployTarget, in.DeployTarget)
	if in.ProfileIDs != nil {
		c.ProfileIDs = append(datatypes.JSONSlice[uuid.UUID]{}, (*in.ProfileIDs)...)
	}
	return nil
}

func (s *complectService) Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Complect, error) {
	return s.complects.MustGet(dbc, base.ID(id))
}

func (s *complectService) List(dbc dbctx.Context, paging Paging) (*ListResult, error) {
	items, total, err := s.complects.Filter(dbc, paging.apply(store.Query{}), nil)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// Change adds or removes one profile. A change that would not alter the
// membership returns the complect without writing it.
func (s *complectService) Change(dbc dbctx.Context, id uuid.UUID, action string, profileID uuid.UUID) (*types.Complect, error) {
	action = normalization.ParseInputString(action)
	if action != ComplectAdd && action != ComplectRemove {
		return nil, pkgerrors.Validation("INVALID_ACTION", fmt.Sprintf("action must be %q or %q, got %q", ComplectAdd, ComplectRemove, action))
	}
	var out *types.Complect
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		cur, err := s.complects.MustGet(inner, base.ID(id))
		if err != nil {
			return err
		}
		member := cur.HasProfile(profileID)
		if (action == ComplectAdd && member) || (action == ComplectRemove && !member) {
			out = cur
			return nil
		}
		out, err = s.complects.CreateOrUpdate(inner, base.ID(id), func(c *types.Complect) error {
			if action == ComplectAdd {
				c.AddProfile(profileID)
			} else {
				c.RemoveProfile(profileID)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *complectService) Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error) {
	return s.complects.Remove(dbc, base.IDs(ids)...)
}
