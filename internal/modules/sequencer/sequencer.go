// Package sequencer keeps template positions inside a suite unique while
// templates are inserted, moved and removed.
package sequencer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	"github.com/yungbote/arm-gateway/internal/observability"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/platform/scopelock"
)

// parked is the slot a moving template occupies while siblings are rewritten.
const parked = 0

type Deps struct {
	Log       *logger.Logger
	Templates *repos.TemplateRepo
	Suites    *repos.SuiteRepo
	Locker    scopelock.Locker
	Metrics   *observability.Metrics
}

type Sequencer struct {
	log       *logger.Logger
	templates *repos.TemplateRepo
	suites    *repos.SuiteRepo
	locker    scopelock.Locker
	metrics   *observability.Metrics
}

func New(deps Deps) *Sequencer {
	locker := deps.Locker
	if locker == nil {
		locker = scopelock.NewLocal()
	}
	return &Sequencer{
		log:       deps.Log.With("module", "Sequencer"),
		templates: deps.Templates,
		suites:    deps.Suites,
		locker:    locker,
		metrics:   deps.Metrics,
	}
}

// LockSuites takes the scope lock of every suite in a fixed order. It must be
// called before the write transaction opens.
func (s *Sequencer) LockSuites(ctx context.Context, suiteIDs ...uuid.UUID) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ids := append([]uuid.UUID(nil), suiteIDs...)
	sort.Slice(ids, func(i, j int) bool { return base.CompareUUID(ids[i], ids[j]) < 0 })
	unlocks := make([]func(), 0, len(ids))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	var prev *uuid.UUID
	for i := range ids {
		if prev != nil && *prev == ids[i] {
			continue
		}
		unlock, err := s.locker.Lock(ctx, "suite:"+ids[i].String())
		if err != nil {
			release()
			return nil, fmt.Errorf("lock suite %s: %w", ids[i], err)
		}
		unlocks = append(unlocks, unlock)
		prev = &ids[i]
	}
	return release, nil
}

// ResolveAndApply resolves where a template goes inside suiteID and makes
// room for it. existingID is nil for a new template. The returned position
// is nil when an existing template keeps its place; otherwise the caller
// must assign it to the template in the same transaction.
func (s *Sequencer) ResolveAndApply(dbc dbctx.Context, suiteID uuid.UUID, existingID *uuid.UUID, p Placement) (*int, error) {
	r, err := p.parse()
	if err != nil {
		return nil, err
	}
	if existingID != nil && r.anchorID != nil && *existingID == *r.anchorID {
		return nil, pkgerrors.InvalidPosition("a template cannot be positioned relative to itself")
	}

	var target *int
	err = dbctx.Run(s.suites.DB(), dbc, func(inner dbctx.Context) error {
		suite, err := s.suites.GetForUpdate(inner, base.ID(suiteID))
		if err != nil {
			return err
		}
		if suite == nil {
			return pkgerrors.NotFound("suite", suiteID)
		}

		if existingID != nil {
			cur, err := s.templates.GetForUpdate(inner, base.ID(*existingID))
			if err != nil {
				return err
			}
			if cur == nil {
				return pkgerrors.NotFound("template", *existingID)
			}
			if cur.SuiteID != suiteID {
				return fmt.Errorf("%w: template %s belongs to suite %s", pkgerrors.ErrInvalidArgument, cur.ID, cur.SuiteID)
			}
			if p.Empty() {
				return nil
			}
			if err := s.detach(inner, cur.ID, cur.SuiteID, cur.Position); err != nil {
				return err
			}
		}

		pos, err := s.resolve(inner, suiteID, r)
		if err != nil {
			return err
		}
		if err := s.shiftFrom(inner, suiteID, pos); err != nil {
			return err
		}
		target = &pos
		return nil
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Sequencer) resolve(dbc dbctx.Context, suiteID uuid.UUID, r resolved) (int, error) {
	switch {
	case r.anchorID != nil:
		anchor, err := s.templates.Get(dbc, base.ID(*r.anchorID))
		if err != nil {
			return 0, err
		}
		if anchor == nil || anchor.SuiteID != suiteID {
			return 0, pkgerrors.NotFound("template", *r.anchorID)
		}
		if r.after {
			return anchor.Position + 1, nil
		}
		return anchor.Position, nil
	case r.first:
		return 1, nil
	case r.explicit != nil:
		return *r.explicit, nil
	default:
		max, err := s.templates.Max(dbc, "position", store.Eq("suite_id", suiteID))
		if err != nil {
			return 0, err
		}
		return int(max) + 1, nil
	}
}

// shiftFrom moves every sibling at or above pos up by one, highest first,
// so no two rows ever share a position.
func (s *Sequencer) shiftFrom(dbc dbctx.Context, suiteID uuid.UUID, pos int) error {
	siblings, err := s.templates.Find(dbc, store.Query{
		Where: whereSuite(suiteID, store.Gte("position", pos)),
		Order: []string{"-position"},
	})
	if err != nil {
		return err
	}
	for _, t := range siblings {
		if err := s.templates.UpdateColumns(dbc, base.ID(t.ID), map[string]any{"position": t.Position + 1}); err != nil {
			return err
		}
	}
	s.metrics.AddTemplateShifts(len(siblings))
	return nil
}

// detach parks a moving template and closes the hole it leaves, lowest
// first, so positions resolved afterwards describe the final order.
func (s *Sequencer) detach(dbc dbctx.Context, id, suiteID uuid.UUID, from int) error {
	if err := s.templates.UpdateColumns(dbc, base.ID(id), map[string]any{"position": parked}); err != nil {
		return err
	}
	above, err := s.templates.Find(dbc, store.Query{
		Where: whereSuite(suiteID, store.Gt("position", from)),
		Order: []string{"position"},
	})
	if err != nil {
		return err
	}
	for _, t := range above {
		if err := s.templates.UpdateColumns(dbc, base.ID(t.ID), map[string]any{"position": t.Position - 1}); err != nil {
			return err
		}
	}
	s.metrics.AddTemplateShifts(len(above))
	return nil
}

// TouchSuite bumps the suite's last-modified marker.
func (s *Sequencer) TouchSuite(dbc dbctx.Context, suiteID uuid.UUID) error {
	return s.suites.UpdateColumns(dbc, base.ID(suiteID), map[string]any{"updated": time.Now().UTC()})
}

func whereSuite(suiteID uuid.UUID, extra ...clause.Expression) []clause.Expression {
	return append([]clause.Expression{store.Eq("suite_id", suiteID)}, extra...)
}
