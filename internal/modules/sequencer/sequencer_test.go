package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/repos/testutil"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

type fixture struct {
	seq   *Sequencer
	set   *repos.Set
	dbc   dbctx.Context
	suite uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	set := repos.New(db, log)
	p := testutil.SeedProfile(t, tx, "p-"+uuid.NewString()[:6])
	s := testutil.SeedSuite(t, tx, p.ID, "suite")
	return fixture{
		seq:   New(Deps{Log: log, Templates: set.Template, Suites: set.Suite}),
		set:   set,
		dbc:   testutil.Ctx(t, tx),
		suite: s.ID,
	}
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

// place resolves, then writes the template the way the service does.
func (f fixture) place(t *testing.T, content string, existing *uuid.UUID, p Placement) int {
	t.Helper()
	pos, err := f.seq.ResolveAndApply(f.dbc, f.suite, existing, p)
	if err != nil {
		t.Fatalf("ResolveAndApply(%s): %v", content, err)
	}
	if existing != nil {
		if pos != nil {
			if err := f.set.Template.UpdateColumns(f.dbc, base.ID(*existing), map[string]any{"position": *pos}); err != nil {
				t.Fatalf("UpdateColumns: %v", err)
			}
			return *pos
		}
		return 0
	}
	tpl := testutil.SeedTemplate(t, f.dbc.Tx, f.suite, *pos, content)
	return tpl.Position
}

func TestAppendByDefault(t *testing.T) {
	f := newFixture(t)
	for i, c := range []string{"a", "b", "c"} {
		if got := f.place(t, c, nil, Placement{}); got != i+1 {
			t.Fatalf("%s: expected position %d, got %d", c, i+1, got)
		}
	}
}

func TestExplicitPositionShiftsSiblings(t *testing.T) {
	f := newFixture(t)
	f.place(t, "a", nil, Placement{})
	f.place(t, "b", nil, Placement{})
	f.place(t, "x", nil, Placement{Position: intp(1)})

	got := testutil.Positions(t, f.dbc.Tx, f.suite)
	want := map[string]int{"x": 1, "a": 2, "b": 3}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("positions=%v want %v", got, want)
		}
	}
}

func TestAnchors(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 1, "a")
	testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 2, "b")

	if got := f.place(t, "after-a", nil, Placement{After: strp(a.ID.String())}); got != 2 {
		t.Fatalf("after a: expected 2, got %d", got)
	}
	if got := f.place(t, "before-a", nil, Placement{Before: strp(a.ID.String())}); got != 1 {
		t.Fatalf("before a: expected 1, got %d", got)
	}
	if got := f.place(t, "last", nil, Placement{After: strp(AnchorLast)}); got != 5 {
		t.Fatalf("after last: expected 5, got %d", got)
	}
	if got := f.place(t, "first", nil, Placement{Before: strp(AnchorFirst)}); got != 1 {
		t.Fatalf("before first: expected 1, got %d", got)
	}

	got := testutil.Positions(t, f.dbc.Tx, f.suite)
	want := map[string]int{"first": 1, "before-a": 2, "a": 3, "after-a": 4, "b": 5, "last": 6}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("positions=%v want %v", got, want)
		}
	}
}

func TestMoveExistingToFront(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 1, "A")
	b := testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 2, "B")
	testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 3, "C")

	f.place(t, "B", &b.ID, Placement{Before: strp(AnchorFirst)})

	got := testutil.Positions(t, f.dbc.Tx, f.suite)
	want := map[string]int{"B": 1, "A": 2, "C": 3}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("positions=%v want %v", got, want)
		}
	}
}

func TestMoveExistingToEnd(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 1, "A")
	testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 2, "B")
	testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 3, "C")

	f.place(t, "A", &a.ID, Placement{After: strp(AnchorLast)})

	got := testutil.Positions(t, f.dbc.Tx, f.suite)
	want := map[string]int{"B": 1, "C": 2, "A": 3}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("positions=%v want %v", got, want)
		}
	}
}

func TestExistingWithoutPlacementKeepsPosition(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 1, "A")
	pos, err := f.seq.ResolveAndApply(f.dbc, f.suite, &a.ID, Placement{})
	if err != nil {
		t.Fatalf("ResolveAndApply: %v", err)
	}
	if pos != nil {
		t.Fatalf("expected nil position, got %d", *pos)
	}
}

func TestInvalidPlacement(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 1, "A")

	cases := map[string]Placement{
		"two inputs":     {Position: intp(1), Before: strp(AnchorFirst)},
		"zero position":  {Position: intp(0)},
		"before garbage": {Before: strp("middle")},
		"before last":    {Before: strp(AnchorLast)},
		"after first":    {After: strp(AnchorFirst)},
	}
	for name, p := range cases {
		if _, err := f.seq.ResolveAndApply(f.dbc, f.suite, nil, p); !errors.Is(err, pkgerrors.ErrInvalidPosition) {
			t.Fatalf("%s: expected ErrInvalidPosition, got %v", name, err)
		}
	}
	if _, err := f.seq.ResolveAndApply(f.dbc, f.suite, &a.ID, Placement{After: strp(a.ID.String())}); !errors.Is(err, pkgerrors.ErrInvalidPosition) {
		t.Fatalf("self anchor: expected ErrInvalidPosition, got %v", err)
	}
}

func TestUnknownAnchorAndSuite(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTemplate(t, f.dbc.Tx, f.suite, 1, "A")

	_, err := f.seq.ResolveAndApply(f.dbc, f.suite, nil, Placement{Before: strp(uuid.NewString())})
	var nf *pkgerrors.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "template" {
		t.Fatalf("expected template NotFoundError, got %v", err)
	}
	_, err = f.seq.ResolveAndApply(f.dbc, uuid.New(), nil, Placement{})
	if !errors.As(err, &nf) || nf.Entity != "suite" {
		t.Fatalf("expected suite NotFoundError, got %v", err)
	}
	if got := testutil.Positions(t, f.dbc.Tx, f.suite); got["A"] != 1 {
		t.Fatalf("positions changed: %v", got)
	}
}

func TestAnchorInOtherSuiteIsNotFound(t *testing.T) {
	f := newFixture(t)
	other := testutil.SeedSuite(t, f.dbc.Tx, uuid.New(), "other")
	foreign := testutil.SeedTemplate(t, f.dbc.Tx, other.ID, 1, "foreign")

	_, err := f.seq.ResolveAndApply(f.dbc, f.suite, nil, Placement{After: strp(foreign.ID.String())})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPositionsStayDense(t *testing.T) {
	f := newFixture(t)
	ids := make([]uuid.UUID, 0, 6)
	for _, c := range []string{"a", "b", "c", "d", "e", "f"} {
		pos := f.place(t, c, nil, Placement{Position: intp(1)})
		if pos != 1 {
			t.Fatalf("expected 1, got %d", pos)
		}
	}
	rows, err := f.set.Template.Find(f.dbc, storeQuery(f.suite))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	for i, r := range rows {
		ids = append(ids, r.ID)
		if r.Position != i+1 {
			t.Fatalf("row %d has position %d", i, r.Position)
		}
	}
	f.place(t, "moved", &ids[5], Placement{Position: intp(2)})
	seen := map[int]bool{}
	for _, p := range testutil.Positions(t, f.dbc.Tx, f.suite) {
		if seen[p] {
			t.Fatalf("duplicate position %d", p)
		}
		seen[p] = true
	}
}

func TestTouchSuite(t *testing.T) {
	f := newFixture(t)
	before, err := f.set.Suite.MustGet(f.dbc, base.ID(f.suite))
	if err != nil {
		t.Fatalf("MustGet: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := f.seq.TouchSuite(f.dbc, f.suite); err != nil {
		t.Fatalf("TouchSuite: %v", err)
	}
	after, err := f.set.Suite.MustGet(f.dbc, base.ID(f.suite))
	if err != nil {
		t.Fatalf("MustGet: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updated to advance: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
	if after.Version != before.Version {
		t.Fatalf("touch must not bump version")
	}
}

func TestLockSuitesSerializes(t *testing.T) {
	f := newFixture(t)
	a, b := uuid.New(), uuid.New()
	unlock, err := f.seq.LockSuites(context.Background(), a, b, a)
	if err != nil {
		t.Fatalf("LockSuites: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.seq.LockSuites(ctx, b); err == nil {
		t.Fatalf("expected second lock to block until timeout")
	}
	unlock()
	again, err := f.seq.LockSuites(context.Background(), b, a)
	if err != nil {
		t.Fatalf("LockSuites after unlock: %v", err)
	}
	again()
}

func storeQuery(suiteID uuid.UUID) store.Query {
	return store.Query{Where: whereSuite(suiteID), Order: []string{"position"}}
}
