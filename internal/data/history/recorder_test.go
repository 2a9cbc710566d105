package history

import (
	"testing"

	"github.com/yungbote/arm-gateway/internal/data/repos/testutil"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	"github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

func TestRecorderSnapshotsEveryWrite(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	live := store.MustNew[catalog.Dictionary](db, log)
	versions := store.MustNew[catalog.DictionaryVersion](db, log)
	rec := New(versions, "id", catalog.SnapshotDictionary)
	rec.Attach(live)

	dbc := testutil.Ctx(t, testutil.Tx(t, db))
	d, err := live.CreateOrUpdate(dbc, nil, func(d *catalog.Dictionary) error {
		d.Code, d.Kind, d.Content = "colors", catalog.DefaultDictionaryKind, "red"
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, content := range []string{"green", "blue"} {
		c := content
		if _, err := live.CreateOrUpdate(dbc, base.ID(d.ID), func(d *catalog.Dictionary) error { d.Content = c; return nil }); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	items, total, err := rec.ListVersions(dbc, d.ID, ListOptions{})
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
	want := []string{"red", "green", "blue"}
	for i, it := range items {
		v := it.(*catalog.DictionaryVersion)
		if v.Version != int64(i+1) || v.Content != want[i] || v.DictionaryID != d.ID {
			t.Fatalf("snapshot %d: %+v", i, v)
		}
	}

	page, total, err := rec.ListVersions(dbc, d.ID, ListOptions{Offset: 1, Limit: 1, Order: []string{"-version"}})
	if err != nil {
		t.Fatalf("paged: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].(*catalog.DictionaryVersion).Version != 2 {
		t.Fatalf("paged result: total=%d %+v", total, page)
	}
}

func TestRecorderFailureRollsBackWrite(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	live := store.MustNew[catalog.Dictionary](db, log)
	versions := store.MustNew[catalog.DictionaryVersion](db, log)
	fixed := catalog.SnapshotDictionary(&catalog.Dictionary{})
	rec := New(versions, "id", func(*catalog.Dictionary) *catalog.DictionaryVersion {
		cp := *fixed
		return &cp
	})
	rec.Attach(live)

	dbc := dbctx.Context{Ctx: t.Context()}
	first, err := live.CreateOrUpdate(dbc, nil, func(d *catalog.Dictionary) error { d.Code = "one"; return nil })
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	// Second snapshot reuses the version_id and must fail, taking the write with it.
	if _, err := live.CreateOrUpdate(dbc, base.ID(first.ID), func(d *catalog.Dictionary) error { d.Code = "two"; return nil }); err == nil {
		t.Fatalf("expected snapshot conflict")
	}
	got, err := live.MustGet(dbc, base.ID(first.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "one" || got.Version != 1 {
		t.Fatalf("write survived failed snapshot: %+v", got)
	}
}
