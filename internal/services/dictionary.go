package services

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/history"
	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/normalization"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type DictionaryInput struct {
	ID          *uuid.UUID        `json:"id,omitempty"`
	Code        *string           `json:"code,omitempty"`
	Kind        *string           `json:"kind,omitempty"`
	Description *string           `json:"description,omitempty"`
	Content     *string           `json:"content,omitempty"`
	Common      *bool             `json:"common,omitempty"`
	State       *string           `json:"state,omitempty"`
	Meta        datatypes.JSONMap `json:"meta,omitempty"`
	ProfileIDs  *[]uuid.UUID      `json:"profile_ids,omitempty"`
	IsEnabled   *bool             `json:"is_enabled,omitempty"`
	Hidden      *bool             `json:"hidden,omitempty"`
	Parts       datatypes.JSONMap `json:"parts,omitempty"`
}

type DictionaryListParams struct {
	Paging
	IDs       []uuid.UUID `json:"id"`
	ProfileID *uuid.UUID  `json:"profile_id"`
	Code      *string     `json:"code"`
	Kind      *string     `json:"kind"`
	Common    *bool       `json:"common"`
	// WithContent returns full rows instead of summaries.
	WithContent bool `json:"_with_content"`
	Process     bool `json:"_process"`
}

type DictionaryService interface {
	Create(dbc dbctx.Context, in DictionaryInput) (*types.Dictionary, error)
	CreateBatch(dbc dbctx.Context, in []DictionaryInput) ([]*types.Dictionary, error)
	Update(dbc dbctx.Context, in DictionaryInput) (*types.Dictionary, error)
	UpdateBatch(dbc dbctx.Context, in []DictionaryInput) ([]*types.Dictionary, error)
	Fetch(dbc dbctx.Context, id uuid.UUID, process bool) (*types.Dictionary, error)
	List(dbc dbctx.Context, params DictionaryListParams) (*ListResult, error)
	ListVersions(dbc dbctx.Context, id uuid.UUID, paging Paging) (*ListResult, error)
	Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error)
}

type dictionaryService struct {
	db           *gorm.DB
	log          *logger.Logger
	dictionaries *repos.DictionaryRepo
	history      *repos.DictionaryHistory
}

func NewDictionaryService(db *gorm.DB, log *logger.Logger, set *repos.Set) DictionaryService {
	return &dictionaryService{
		db:           db,
		log:          log.With("service", "DictionaryService"),
		dictionaries: set.Dictionary,
		history:      set.DictionaryHistory,
	}
}

func (s *dictionaryService) Create(dbc dbctx.Context, in DictionaryInput) (*types.Dictionary, error) {
	return s.dictionaries.CreateOrUpdate(dbc, nil, func(d *types.Dictionary) error {
		d.State = base.StateActive
		d.Kind = types.DefaultDictionaryKind
		d.IsEnabled = true
		d.Meta = emptyMeta()
		d.Parts = emptyMeta()
		d.ProfileIDs = datatypes.JSONSlice[uuid.UUID]{}
		return s.apply(d, in)
	})
}

func (s *dictionaryService) CreateBatch(dbc dbctx.Context, in []DictionaryInput) ([]*types.Dictionary, error) {
	return batch(s.db, dbc, in, s.Create)
}

func (s *dictionaryService) Update(dbc dbctx.Context, in DictionaryInput) (*types.Dictionary, error) {
	key, err := requireID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.dictionaries.CreateOrUpdate(dbc, key, func(d *types.Dictionary) error {
		return s.apply(d, in)
	})
}

func (s *dictionaryService) UpdateBatch(dbc dbctx.Context, in []DictionaryInput) ([]*types.Dictionary, error) {
	return batch(s.db, dbc, in, s.Update)
}

func (s *dictionaryService) apply(d *types.Dictionary, in DictionaryInput) error {
	if err := applyState(&d.State, in.State); err != nil {
		return err
	}
	setString(&d.Code, in.Code)
	setString(&d.Kind, in.Kind)
	setString(&d.Description, in.Description)
	setString(&d.Content, in.Content)
	setBool(&d.Common, in.Common)
	setBool(&d.IsEnabled, in.IsEnabled)
	setBool(&d.Hidden, in.Hidden)
	setMeta(&d.Meta, in.Meta)
	setMeta(&d.Parts, in.Parts)
	if in.ProfileIDs != nil {
		d.ProfileIDs = append(datatypes.JSONSlice[uuid.UUID]{}, (*in.ProfileIDs)...)
	}
	return nil
}

func (s *dictionaryService) Fetch(dbc dbctx.Context, id uuid.UUID, process bool) (*types.Dictionary, error) {
	d, err := s.dictionaries.MustGet(dbc, base.ID(id))
	if err != nil {
		return nil, err
	}
	if process {
		d.Content = normalization.MarkupToText(d.Content)
	}
	return d, nil
}

func (s *dictionaryService) List(dbc dbctx.Context, params DictionaryListParams) (*ListResult, error) {
	var q store.Query
	if params.IDs != nil {
		q.Where = append(q.Where, store.In("id", params.IDs))
	}
	if params.ProfileID != nil {
		q.Where = append(q.Where, store.JSONContains("profile_ids", params.ProfileID.String()))
	}
	if params.Code != nil {
		q.Where = append(q.Where, store.Eq("title", *params.Code))
	}
	if params.Kind != nil {
		q.Where = append(q.Where, store.Eq("kind", *params.Kind))
	}
	if params.Common != nil {
		q.Where = append(q.Where, store.Eq("common", *params.Common))
	}
	q = params.apply(q)
	items, total, err := s.dictionaries.Filter(dbc, q, func(r store.Row[types.Dictionary]) (any, error) {
		if !params.WithContent {
			return r.Entity.Summary(), nil
		}
		if params.Process {
			r.Entity.Content = normalization.MarkupToText(r.Entity.Content)
		}
		return r.Entity, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// ListVersions pages the recorded snapshots of one dictionary.
func (s *dictionaryService) ListVersions(dbc dbctx.Context, id uuid.UUID, paging Paging) (*ListResult, error) {
	items, total, err := s.history.ListVersions(dbc, id, history.ListOptions{
		Offset: paging.Offset,
		Limit:  paging.Limit,
		Order:  paging.Order,
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// Remove deletes live dictionaries; their recorded versions stay.
func (s *dictionaryService) Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error) {
	return s.dictionaries.Remove(dbc, base.IDs(ids)...)
}
