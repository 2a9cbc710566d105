package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/data/repos/testutil"
	"github.com/yungbote/arm-gateway/internal/domain/access"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	"github.com/yungbote/arm-gateway/internal/domain/catalog"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
)

func profiles(t *testing.T) *Store[catalog.Profile, *catalog.Profile] {
	t.Helper()
	db := testutil.DB(t)
	s, err := New[catalog.Profile](db, testutil.Logger(t), WithEntityName("profile"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestCreateOrUpdateVersioning(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))

	p, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error {
		p.Name, p.Code, p.State = "alpha", "alpha", base.StateActive
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatalf("expected minted id")
	}
	if p.Version != 1 {
		t.Fatalf("create version: got %d want 1", p.Version)
	}

	for want := int64(2); want <= 4; want++ {
		p, err = s.CreateOrUpdate(dbc, base.ID(p.ID), func(p *catalog.Profile) error {
			p.Common = !p.Common
			return nil
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if p.Version != want {
			t.Fatalf("update version: got %d want %d", p.Version, want)
		}
	}

	stored, err := s.MustGet(dbc, base.ID(p.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Version != 4 || stored.Name != "alpha" {
		t.Fatalf("stored: %+v", stored)
	}
}

func TestCreateOrUpdatePartialPatch(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))

	p, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error {
		p.Name, p.Code, p.IsEnabled = "alpha", "a-code", true
		p.Meta = map[string]any{"k": "v"}
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = s.CreateOrUpdate(dbc, base.ID(p.ID), func(p *catalog.Profile) error {
		p.Name = "beta"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.MustGet(dbc, base.ID(p.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "beta" || got.Code != "a-code" || !got.IsEnabled || got.Meta["k"] != "v" {
		t.Fatalf("partial update clobbered fields: %+v", got)
	}
}

func TestCreateOrUpdateMissingKey(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))

	missing := uuid.New()
	_, err := s.CreateOrUpdate(dbc, base.ID(missing), func(p *catalog.Profile) error { return nil })
	var nf *pkgerrors.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Key != missing.String() || nf.Entity != "profile" {
		t.Fatalf("not found payload: %+v", nf)
	}
}

func TestPrimaryKeyImmutable(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))
	p, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error { p.Name = "x"; return nil })
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = s.CreateOrUpdate(dbc, base.ID(p.ID), func(p *catalog.Profile) error {
		p.ID = uuid.New()
		return nil
	})
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestGetAbsentAndKeyArity(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))

	got, err := s.Get(dbc, base.ID(uuid.New()))
	if err != nil || got != nil {
		t.Fatalf("absent get: %v %v", got, err)
	}
	if _, err := s.MustGet(dbc, base.ID(uuid.New())); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("must get: %v", err)
	}
	_, err = s.Get(dbc, access.UserProfileKey{UserID: uuid.New(), ProfileID: uuid.New()})
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("arity mismatch: %v", err)
	}
}

func TestCompositeKeyRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	s := MustNew[access.UserProfileGrant](db, testutil.Logger(t))
	dbc := testutil.Ctx(t, testutil.Tx(t, db))

	key := access.UserProfileKey{UserID: uuid.New(), ProfileID: uuid.New()}
	g, err := s.CreateOrUpdate(dbc, nil, func(g *access.UserProfileGrant) error {
		g.UserID, g.ProfileID = key.UserID, key.ProfileID
		g.Permissions = map[string]any{access.PermDLRead: true}
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Version != 1 {
		t.Fatalf("version: %d", g.Version)
	}
	got, err := s.MustGet(dbc, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Permissions[access.PermDLRead] != true {
		t.Fatalf("permissions: %#v", got.Permissions)
	}
	if _, err := s.CreateOrUpdate(dbc, nil, func(g *access.UserProfileGrant) error {
		g.UserID, g.ProfileID = key.UserID, key.ProfileID
		return nil
	}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("duplicate composite key: %v", err)
	}
}

func TestFilterPaginationTotal(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("p%d", i)
		if _, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error { p.Name, p.Code = name, name; return nil }); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	cases := []struct {
		offset, limit int
		want          int
	}{
		{0, 0, 5},
		{0, 2, 2},
		{4, 2, 1},
		{5, 2, 0},
		{10, 0, 0},
	}
	for _, tc := range cases {
		items, total, err := s.Filter(dbc, Query{Offset: tc.offset, Limit: tc.limit, Order: []string{"name"}}, nil)
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		if total != 5 {
			t.Fatalf("offset=%d limit=%d total: got %d", tc.offset, tc.limit, total)
		}
		if len(items) != tc.want {
			t.Fatalf("offset=%d limit=%d items: got %d want %d", tc.offset, tc.limit, len(items), tc.want)
		}
	}
}

func TestFilterOrderAndPredicates(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))
	for _, name := range []string{"b", "c", "a"} {
		n := name
		if _, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error { p.Name, p.Code, p.IsEnabled = n, n, n != "c"; return nil }); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	found, err := s.Find(dbc, Query{Where: []clause.Expression{Eq("is_enabled", true)}, Order: []string{"-name"}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 2 || found[0].Name != "b" || found[1].Name != "a" {
		t.Fatalf("unexpected order/filter: %v", names(found))
	}
	if _, _, err := s.Filter(dbc, Query{Order: []string{"nope"}}, nil); !errors.Is(err, pkgerrors.ErrValidation) {
		t.Fatalf("unknown order column: %v", err)
	}
}

func TestFilterOuterJoinGroupExtras(t *testing.T) {
	db := testutil.DB(t)
	suites := MustNew[catalog.Suite](db, testutil.Logger(t))
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)

	p := testutil.SeedProfile(t, tx, "p")
	s1 := testutil.SeedSuite(t, tx, p.ID, "one")
	s2 := testutil.SeedSuite(t, tx, p.ID, "two")
	testutil.SeedTemplate(t, tx, s1.ID, 1, "a")
	testutil.SeedTemplate(t, tx, s1.ID, 2, "b")

	counts := map[uuid.UUID]int64{}
	items, total, err := suites.Filter(dbc, Query{
		Where:      []clause.Expression{Eq("profile_id", p.ID)},
		OuterJoins: []Join{{Table: "templates", On: "templates.suite_id = suites.id"}},
		GroupBy:    []string{"suites.id"},
		Extras:     []Extra{{Expr: "COUNT(templates.id)", Alias: "templates_count"}},
	}, func(r Row[catalog.Suite]) (any, error) {
		n, err := r.ExtraInt("templates_count")
		if err != nil {
			return nil, err
		}
		counts[r.Entity.ID] = n
		return r.Entity, nil
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
	if counts[s1.ID] != 2 || counts[s2.ID] != 0 {
		t.Fatalf("counts: %v", counts)
	}
}

func TestJSONContains(t *testing.T) {
	db := testutil.DB(t)
	dicts := MustNew[catalog.Dictionary](db, testutil.Logger(t))
	dbc := testutil.Ctx(t, testutil.Tx(t, db))

	target := uuid.New()
	for i, ids := range [][]uuid.UUID{{target}, {uuid.New()}, {uuid.New(), target}} {
		code := fmt.Sprintf("d%d", i)
		pids := ids
		if _, err := dicts.CreateOrUpdate(dbc, nil, func(d *catalog.Dictionary) error {
			d.Code, d.Kind, d.ProfileIDs = code, catalog.DefaultDictionaryKind, pids
			return nil
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	found, err := dicts.Find(dbc, Query{Where: []clause.Expression{JSONContains("profile_ids", target)}, Order: []string{"title"}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 2 || found[0].Code != "d0" || found[1].Code != "d2" {
		t.Fatalf("containment: got %d rows", len(found))
	}
}

func TestRemoveAllOrNothing(t *testing.T) {
	s := profiles(t)
	dbc := testutil.Ctx(t, testutil.Tx(t, s.DB()))
	p, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error { p.Name = "keep"; return nil })
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	missing := uuid.New()
	ok, err := s.Remove(dbc, base.ID(p.ID), base.ID(missing))
	var nf *pkgerrors.NotFoundError
	if ok || !errors.As(err, &nf) || nf.Key != missing.String() {
		t.Fatalf("expected not found for %s, got ok=%v err=%v", missing, ok, err)
	}
}

func TestRemoveAllOrNothingRollsBack(t *testing.T) {
	// Without an outer transaction Remove opens its own, so the rollback is observable.
	s := profiles(t)
	dbc := testutil.Ctx(t, nil)
	p, err := s.CreateOrUpdate(dbc, nil, func(p *catalog.Profile) error { p.Name = "keep"; return nil })
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Remove(dbc, base.ID(p.ID), base.ID(uuid.New())); err == nil {
		t.Fatalf("expected error")
	}
	still, err := s.Get(dbc, base.ID(p.ID))
	if err != nil || still == nil {
		t.Fatalf("row removed despite failed batch: %v", err)
	}
	ok, err := s.Remove(dbc, base.ID(p.ID), base.ID(p.ID))
	if err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	if n, _ := s.Count(dbc, Eq("id", p.ID)); n != 0 {
		t.Fatalf("count after remove: %d", n)
	}
}

func TestDeleteWhereRequiresPredicate(t *testing.T) {
	s := profiles(t)
	if _, err := s.DeleteWhere(testutil.Ctx(t, nil)); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestMaxAndUpdateColumns(t *testing.T) {
	db := testutil.DB(t)
	templates := MustNew[catalog.Template](db, testutil.Logger(t))
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(t, tx)

	p := testutil.SeedProfile(t, tx, "p")
	s := testutil.SeedSuite(t, tx, p.ID, "s")
	if max, err := templates.Max(dbc, "position", Eq("suite_id", s.ID)); err != nil || max != 0 {
		t.Fatalf("empty max: %d %v", max, err)
	}
	tpl := testutil.SeedTemplate(t, tx, s.ID, 3, "a")
	if max, err := templates.Max(dbc, "position", Eq("suite_id", s.ID)); err != nil || max != 3 {
		t.Fatalf("max: %d %v", max, err)
	}
	if err := templates.UpdateColumns(dbc, base.ID(tpl.ID), map[string]any{"position": 7}); err != nil {
		t.Fatalf("update columns: %v", err)
	}
	got, _ := templates.MustGet(dbc, base.ID(tpl.ID))
	if got.Position != 7 || got.Version != 1 {
		t.Fatalf("update columns must not bump version: %+v", got)
	}
	if err := templates.UpdateColumns(dbc, base.ID(uuid.New()), map[string]any{"position": 1}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing row: %v", err)
	}
}

func names(ps []*catalog.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}
