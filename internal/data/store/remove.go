package store

import (
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/domain/base"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

// Remove deletes every key in one transaction. If any key has no row the
// whole call fails with a NotFoundError for that key and nothing is deleted.
// Repeated keys are removed once.
func (s *Store[T, PT]) Remove(dbc dbctx.Context, keys ...base.Key) (removed bool, err error) {
	dbc, done := s.begin(dbc, "remove")
	defer func() { done(err) }()

	if len(keys) == 0 {
		return false, nil
	}
	for _, k := range keys {
		if err := s.checkKey(k); err != nil {
			return false, err
		}
	}
	seen := make(map[string]struct{}, len(keys))
	err = dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		conn := dbctx.Conn(s.db, inner)
		for _, k := range keys {
			id := k.String()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			res := conn.Clauses(clause.Where{Exprs: s.keyWhere(k)}).Delete(new(T))
			if res.Error != nil {
				return pkgerrors.MapStorageError(s.table+".remove", res.Error)
			}
			if res.RowsAffected == 0 {
				return pkgerrors.NotFound(s.entity, k)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteWhere bulk-deletes matching rows and returns how many went away.
// Cascades use it; at least one predicate is required.
func (s *Store[T, PT]) DeleteWhere(dbc dbctx.Context, where ...clause.Expression) (n int64, err error) {
	dbc, done := s.begin(dbc, "delete_where")
	defer func() { done(err) }()

	if len(where) == 0 {
		return 0, fmt.Errorf("%w: %s: delete without predicate", pkgerrors.ErrInvalidArgument, s.table)
	}
	res := dbctx.Conn(s.db, dbc).Clauses(clause.Where{Exprs: where}).Delete(new(T))
	if res.Error != nil {
		return 0, pkgerrors.MapStorageError(s.table+".delete_where", res.Error)
	}
	return res.RowsAffected, nil
}
