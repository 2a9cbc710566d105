package store

import (
	"fmt"
	"reflect"

	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/domain/base"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

// Mutator applies the caller's explicitly supplied fields to an entity.
type Mutator[T any] func(*T) error

// CreateOrUpdate inserts a new entity when key is nil and otherwise patches
// the existing row under a row lock. Versioned entities end every successful
// write one version higher than they started (creation starts from 0).
// After-write hooks run in the same transaction.
func (s *Store[T, PT]) CreateOrUpdate(dbc dbctx.Context, key base.Key, mutate Mutator[T]) (out *T, err error) {
	dbc, done := s.begin(dbc, "create_or_update")
	defer func() { done(err) }()

	err = dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		var ent *T
		if key == nil {
			created, err := s.create(inner, mutate)
			if err != nil {
				return err
			}
			ent = created
		} else {
			updated, err := s.update(inner, key, mutate)
			if err != nil {
				return err
			}
			ent = updated
		}
		s.mu.RLock()
		hooks := append([]func(dbctx.Context, *T) error(nil), s.afterWrite...)
		s.mu.RUnlock()
		for _, hook := range hooks {
			if err := hook(inner, ent); err != nil {
				return err
			}
		}
		out = ent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store[T, PT]) create(dbc dbctx.Context, mutate Mutator[T]) (*T, error) {
	ent := new(T)
	v, isVersioned := any(ent).(versioned)
	if isVersioned {
		v.SetVersion(0)
	}
	if mutate != nil {
		if err := mutate(ent); err != nil {
			return nil, err
		}
	}
	if m, ok := any(ent).(keyMinter); ok {
		m.MintKey()
	}
	if isVersioned {
		v.SetVersion(v.GetVersion() + 1)
	}
	if err := dbctx.Conn(s.db, dbc).Create(ent).Error; err != nil {
		return nil, pkgerrors.MapStorageError(s.table+".create", err)
	}
	return ent, nil
}

func (s *Store[T, PT]) update(dbc dbctx.Context, key base.Key, mutate Mutator[T]) (*T, error) {
	ent, err := s.GetForUpdate(dbc, key)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, pkgerrors.NotFound(s.entity, key)
	}
	before := PT(ent).PrimaryKey()
	if mutate != nil {
		if err := mutate(ent); err != nil {
			return nil, err
		}
	}
	if !reflect.DeepEqual(before.Values(), PT(ent).PrimaryKey().Values()) {
		return nil, fmt.Errorf("%w: %s: primary key %s is immutable", pkgerrors.ErrInvalidArgument, s.table, before)
	}
	if v, ok := any(ent).(versioned); ok {
		v.SetVersion(v.GetVersion() + 1)
	}
	res := dbctx.Conn(s.db, dbc).Model(ent).Select("*").Updates(ent)
	if res.Error != nil {
		return nil, pkgerrors.MapStorageError(s.table+".update", res.Error)
	}
	return ent, nil
}

// UpdateColumns writes raw column values for key without a version bump.
// It is meant for bookkeeping writes such as sibling re-sequencing.
func (s *Store[T, PT]) UpdateColumns(dbc dbctx.Context, key base.Key, values map[string]any) (err error) {
	dbc, done := s.begin(dbc, "update_columns")
	defer func() { done(err) }()

	if err := s.checkKey(key); err != nil {
		return err
	}
	for col := range values {
		if !s.HasColumn(col) {
			return fmt.Errorf("%w: %s has no column %q", pkgerrors.ErrInvalidArgument, s.table, col)
		}
	}
	res := dbctx.Conn(s.db, dbc).Model(new(T)).Clauses(clause.Where{Exprs: s.keyWhere(key)}).Updates(values)
	if res.Error != nil {
		return pkgerrors.MapStorageError(s.table+".update_columns", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NotFound(s.entity, key)
	}
	return nil
}

// Insert appends ent as-is: no key minting, no version bump, no hooks.
// History rows use it.
func (s *Store[T, PT]) Insert(dbc dbctx.Context, ent *T) (err error) {
	dbc, done := s.begin(dbc, "insert")
	defer func() { done(err) }()
	if err := dbctx.Conn(s.db, dbc).Create(ent).Error; err != nil {
		return pkgerrors.MapStorageError(s.table+".insert", err)
	}
	return nil
}
