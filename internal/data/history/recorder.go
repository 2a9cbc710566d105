// Package history mirrors writes of opted-in entities into an append-only
// snapshot table, in the same transaction as the write itself.
package history

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

// Writable is the hook surface of a live-entity store.
type Writable[T any] interface {
	OnWrite(func(dbctx.Context, *T) error)
}

type Recorder[T any, V any, PV store.Model[V]] struct {
	versions     *store.Store[V, PV]
	parentColumn string
	snapshot     func(*T) *V
}

// New builds a recorder writing snapshot(ent) into versions. parentColumn
// is the snapshot column holding the live entity's id.
func New[T any, V any, PV store.Model[V]](versions *store.Store[V, PV], parentColumn string, snapshot func(*T) *V) *Recorder[T, V, PV] {
	return &Recorder[T, V, PV]{versions: versions, parentColumn: parentColumn, snapshot: snapshot}
}

// Attach makes every successful write on live produce a snapshot.
func (r *Recorder[T, V, PV]) Attach(live Writable[T]) {
	live.OnWrite(r.Record)
}

func (r *Recorder[T, V, PV]) Record(dbc dbctx.Context, ent *T) error {
	snap := r.snapshot(ent)
	if snap == nil {
		return nil
	}
	if err := r.versions.Insert(dbc, snap); err != nil {
		return fmt.Errorf("record %s snapshot: %w", r.versions.Table(), err)
	}
	return nil
}

type ListOptions struct {
	Offset int
	Limit  int
	// Order defaults to ascending version.
	Order []string
}

// ListVersions pages the snapshots of one live entity.
func (r *Recorder[T, V, PV]) ListVersions(dbc dbctx.Context, parentID uuid.UUID, opts ListOptions) ([]any, int64, error) {
	order := opts.Order
	if len(order) == 0 {
		order = []string{"version"}
	}
	return r.versions.Filter(dbc, store.Query{
		Where:  []clause.Expression{store.Eq(r.parentColumn, parentID)},
		Offset: opts.Offset,
		Limit:  opts.Limit,
		Order:  order,
	}, nil)
}
