package services

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/modules/sequencer"
	"github.com/yungbote/arm-gateway/internal/normalization"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// TemplateInput carries the fields of a create or update. SuiteID is only
// read on create; a template never changes suite.
type TemplateInput struct {
	ID           *uuid.UUID        `json:"id,omitempty"`
	SuiteID      *uuid.UUID        `json:"suite_id,omitempty"`
	State        *string           `json:"state,omitempty"`
	Content      *string           `json:"content,omitempty"`
	IsEnabled    *bool             `json:"is_enabled,omitempty"`
	IsCompilable *bool             `json:"is_compilable,omitempty"`
	Meta         datatypes.JSONMap `json:"meta,omitempty"`
	sequencer.Placement
}

type TemplateListParams struct {
	Paging
	SuiteID    *uuid.UUID  `json:"suite_id"`
	ProfileIDs []uuid.UUID `json:"profile_ids"`
	IDs        []uuid.UUID `json:"id"`
	IsEnabled  *bool       `json:"is_enabled"`
	// Process flattens content markup to plain text.
	Process bool `json:"_process"`
}

type TemplateService interface {
	Create(dbc dbctx.Context, in TemplateInput) (*types.Template, error)
	CreateBatch(dbc dbctx.Context, in []TemplateInput) ([]*types.Template, error)
	Update(dbc dbctx.Context, in TemplateInput) (*types.Template, error)
	UpdateBatch(dbc dbctx.Context, in []TemplateInput) ([]*types.Template, error)
	Fetch(dbc dbctx.Context, id uuid.UUID, process bool) (*types.Template, error)
	List(dbc dbctx.Context, params TemplateListParams) (*ListResult, error)
	Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error)
}

type templateService struct {
	db        *gorm.DB
	log       *logger.Logger
	templates *repos.TemplateRepo
	seq       *sequencer.Sequencer
}

func NewTemplateService(db *gorm.DB, log *logger.Logger, set *repos.Set, seq *sequencer.Sequencer) TemplateService {
	return &templateService{
		db:        db,
		log:       log.With("service", "TemplateService"),
		templates: set.Template,
		seq:       seq,
	}
}

func (s *templateService) Create(dbc dbctx.Context, in TemplateInput) (*types.Template, error) {
	out, err := s.CreateBatch(dbc, []TemplateInput{in})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *templateService) CreateBatch(dbc dbctx.Context, in []TemplateInput) ([]*types.Template, error) {
	suiteIDs := make([]uuid.UUID, 0, len(in))
	for _, it := range in {
		if it.SuiteID == nil || *it.SuiteID == uuid.Nil {
			return nil, pkgerrors.Validation("MISSING_SUITE_ID", "suite_id must be given for creating template")
		}
		if err := it.Placement.Validate(); err != nil {
			return nil, err
		}
		suiteIDs = append(suiteIDs, *it.SuiteID)
	}
	unlock, err := s.seq.LockSuites(dbc.Ctx, suiteIDs...)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return batch(s.db, dbc, in, s.create)
}

func (s *templateService) create(dbc dbctx.Context, in TemplateInput) (*types.Template, error) {
	suiteID := *in.SuiteID
	pos, err := s.seq.ResolveAndApply(dbc, suiteID, nil, in.Placement)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.CreateOrUpdate(dbc, nil, func(t *types.Template) error {
		if in.ID != nil && *in.ID != uuid.Nil {
			t.ID = *in.ID
		}
		t.SuiteID = suiteID
		t.Position = *pos
		t.State = base.StateActive
		t.IsEnabled = true
		t.IsCompilable = true
		t.Meta = emptyMeta()
		return s.apply(t, in)
	})
	if err != nil {
		return nil, err
	}
	if err := s.seq.TouchSuite(dbc, suiteID); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) Update(dbc dbctx.Context, in TemplateInput) (*types.Template, error) {
	out, err := s.UpdateBatch(dbc, []TemplateInput{in})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *templateService) UpdateBatch(dbc dbctx.Context, in []TemplateInput) ([]*types.Template, error) {
	suiteIDs := make([]uuid.UUID, 0, len(in))
	for _, it := range in {
		key, err := requireID(it.ID)
		if err != nil {
			return nil, err
		}
		if err := it.Placement.Validate(); err != nil {
			return nil, err
		}
		cur, err := s.templates.MustGet(dbc, key)
		if err != nil {
			return nil, err
		}
		suiteIDs = append(suiteIDs, cur.SuiteID)
	}
	unlock, err := s.seq.LockSuites(dbc.Ctx, suiteIDs...)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return batch(s.db, dbc, in, s.update)
}

func (s *templateService) update(dbc dbctx.Context, in TemplateInput) (*types.Template, error) {
	cur, err := s.templates.MustGet(dbc, base.ID(*in.ID))
	if err != nil {
		return nil, err
	}
	pos, err := s.seq.ResolveAndApply(dbc, cur.SuiteID, &cur.ID, in.Placement)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.CreateOrUpdate(dbc, base.ID(cur.ID), func(t *types.Template) error {
		if pos != nil {
			t.Position = *pos
		}
		return s.apply(t, in)
	})
	if err != nil {
		return nil, err
	}
	if err := s.seq.TouchSuite(dbc, tpl.SuiteID); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) apply(t *types.Template, in TemplateInput) error {
	if err := applyState(&t.State, in.State); err != nil {
		return err
	}
	setString(&t.Content, in.Content)
	setBool(&t.IsEnabled, in.IsEnabled)
	setBool(&t.IsCompilable, in.IsCompilable)
	setMeta(&t.Meta, in.Meta)
	return nil
}

func (s *templateService) Fetch(dbc dbctx.Context, id uuid.UUID, process bool) (*types.Template, error) {
	t, err := s.templates.MustGet(dbc, base.ID(id))
	if err != nil {
		return nil, err
	}
	if process {
		t.Content = normalization.MarkupToText(t.Content)
	}
	return t, nil
}

func (s *templateService) List(dbc dbctx.Context, params TemplateListParams) (*ListResult, error) {
	q := store.Query{Order: []string{"position"}}
	if params.IDs != nil {
		q.Where = append(q.Where, store.In("templates.id", params.IDs))
	}
	if params.SuiteID != nil {
		q.Where = append(q.Where, store.Eq("templates.suite_id", *params.SuiteID))
	}
	if len(params.ProfileIDs) > 0 {
		q.Joins = append(q.Joins, store.Join{Table: "suites", On: "suites.id = templates.suite_id"})
		q.Where = append(q.Where, store.In("suites.profile_id", params.ProfileIDs))
	}
	if params.IsEnabled != nil {
		q.Where = append(q.Where, store.Eq("templates.is_enabled", *params.IsEnabled))
	}
	q = params.apply(q)
	items, total, err := s.templates.Filter(dbc, q, func(r store.Row[types.Template]) (any, error) {
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

// Remove deletes templates and touches every suite that lost one.
func (s *templateService) Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error) {
	var removed bool
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		suites := map[uuid.UUID]struct{}{}
		for _, id := range ids {
			t, err := s.templates.MustGet(inner, base.ID(id))
			if err != nil {
				return err
			}
			suites[t.SuiteID] = struct{}{}
		}
		ok, err := s.templates.Remove(inner, base.IDs(ids)...)
		if err != nil {
			return err
		}
		for id := range suites {
			if err := s.seq.TouchSuite(inner, id); err != nil {
				return err
			}
		}
		removed = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
