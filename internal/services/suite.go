package services

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type SuiteInput struct {
	ID        *uuid.UUID        `json:"id,omitempty"`
	ProfileID *uuid.UUID        `json:"profile_id,omitempty"`
	Title     *string           `json:"title,omitempty"`
	State     *string           `json:"state,omitempty"`
	IsEnabled *bool             `json:"is_enabled,omitempty"`
	Hidden    *bool             `json:"hidden,omitempty"`
	Meta      datatypes.JSONMap `json:"meta,omitempty"`
}

type SuiteListParams struct {
	Paging
	ProfileIDs []uuid.UUID `json:"profile_ids"`
	IsEnabled  *bool       `json:"is_enabled"`
}

type SuiteService interface {
	Create(dbc dbctx.Context, in SuiteInput) (*types.Suite, error)
	CreateBatch(dbc dbctx.Context, in []SuiteInput) ([]*types.Suite, error)
	Update(dbc dbctx.Context, in SuiteInput) (*types.Suite, error)
	UpdateBatch(dbc dbctx.Context, in []SuiteInput) ([]*types.Suite, error)
	Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Suite, error)
	List(dbc dbctx.Context, params SuiteListParams) (*ListResult, error)
	Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error)
}

type suiteService struct {
	db        *gorm.DB
	log       *logger.Logger
	suites    *repos.SuiteRepo
	templates *repos.TemplateRepo
}

func NewSuiteService(db *gorm.DB, log *logger.Logger, set *repos.Set) SuiteService {
	return &suiteService{
		db:        db,
		log:       log.With("service", "SuiteService"),
		suites:    set.Suite,
		templates: set.Template,
	}
}

func (s *suiteService) Create(dbc dbctx.Context, in SuiteInput) (*types.Suite, error) {
	if in.ProfileID == nil || *in.ProfileID == uuid.Nil {
		return nil, pkgerrors.Validation("MISSING_PROFILE_ID", "profile_id must be given for creating suite")
	}
	return s.suites.CreateOrUpdate(dbc, nil, func(su *types.Suite) error {
		su.ProfileID = *in.ProfileID
		su.State = base.StateActive
		su.IsEnabled = true
		su.Meta = emptyMeta()
		return s.apply(su, in)
	})
}

func (s *suiteService) CreateBatch(dbc dbctx.Context, in []SuiteInput) ([]*types.Suite, error) {
	return batch(s.db, dbc, in, s.Create)
}

func (s *suiteService) Update(dbc dbctx.Context, in SuiteInput) (*types.Suite, error) {
	key, err := requireID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.suites.CreateOrUpdate(dbc, key, func(su *types.Suite) error {
		return s.apply(su, in)
	})
}

func (s *suiteService) UpdateBatch(dbc dbctx.Context, in []SuiteInput) ([]*types.Suite, error) {
	return batch(s.db, dbc, in, s.Update)
}

func (s *suiteService) apply(su *types.Suite, in SuiteInput) error {
	if err := applyState(&su.State, in.State); err != nil {
		return err
	}
	setString(&su.Title, in.Title)
	setBool(&su.IsEnabled, in.IsEnabled)
	setBool(&su.Hidden, in.Hidden)
	setMeta(&su.Meta, in.Meta)
	return nil
}

func (s *suiteService) Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Suite, error) {
	return s.suites.MustGet(dbc, base.ID(id))
}

// List returns suites of the given profiles, each with its template count.
func (s *suiteService) List(dbc dbctx.Context, params SuiteListParams) (*ListResult, error) {
	where := []clause.Expression{store.In("suites.profile_id", params.ProfileIDs)}
	if params.IsEnabled != nil {
		where = append(where, store.Eq("suites.is_enabled", *params.IsEnabled))
	}
	q := params.apply(store.Query{
		Where:      where,
		OuterJoins: []store.Join{{Table: "templates", On: "templates.suite_id = suites.id"}},
		GroupBy:    []string{"suites.id"},
		Extras:     []store.Extra{{Expr: "COUNT(templates.id)", Alias: "templates"}},
	})
	items, total, err := s.suites.Filter(dbc, q, func(r store.Row[types.Suite]) (any, error) {
		n, err := r.ExtraInt("templates")
		if err != nil {
			return nil, err
		}
		return types.SuiteView{Suite: r.Entity, Stat: types.SuiteStat{Templates: n}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// Remove deletes the suites and their templates in one transaction.
func (s *suiteService) Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error) {
	var removed bool
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		if len(ids) > 0 {
			if _, err := s.templates.DeleteWhere(inner, store.In("suite_id", ids)); err != nil {
				return err
			}
		}
		ok, err := s.suites.Remove(inner, base.IDs(ids)...)
		if err != nil {
			return err
		}
		removed = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	s.log.Info("Suites removed", "count", len(ids))
	return removed, nil
}
