package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

// Filter returns one shaped page of matching rows and the total number of
// matches regardless of Offset/Limit. A nil shaper uses the entity's
// Represent method when it has one, the entity itself otherwise.
func (s *Store[T, PT]) Filter(dbc dbctx.Context, q Query, shape Shaper[T]) (items []any, total int64, err error) {
	dbc, done := s.begin(dbc, "filter")
	defer func() { done(err) }()

	if shape == nil {
		shape = s.defaultShape
	}
	order, err := s.orderBy(q)
	if err != nil {
		return nil, 0, err
	}
	conn := dbctx.Conn(s.db, dbc)

	if err := conn.Table("(?) AS filtered", s.build(conn, q)).Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.MapStorageError(s.table+".filter.count", err)
	}
	items = make([]any, 0)
	if total == 0 || (q.Offset > 0 && int64(q.Offset) >= total) {
		return items, total, nil
	}

	page := s.build(conn, q)
	for _, o := range order {
		page = page.Order(o)
	}
	if q.Offset > 0 {
		page = page.Offset(q.Offset)
	}
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}
	rows, err := page.Rows()
	if err != nil {
		return nil, 0, pkgerrors.MapStorageError(s.table+".filter", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}
	extraIdx := map[string]int{}
	for _, e := range q.Extras {
		for i, c := range cols {
			if c == e.Alias {
				extraIdx[e.Alias] = i
			}
		}
	}

	for rows.Next() {
		var ent T
		if err := conn.ScanRows(rows, &ent); err != nil {
			return nil, 0, fmt.Errorf("%s.filter scan: %w", s.table, err)
		}
		row := Row[T]{Entity: &ent}
		if len(extraIdx) > 0 {
			raw := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range raw {
				ptrs[i] = &raw[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return nil, 0, fmt.Errorf("%s.filter scan extras: %w", s.table, err)
			}
			row.Extra = make(map[string]any, len(extraIdx))
			for alias, i := range extraIdx {
				row.Extra[alias] = raw[i]
			}
		}
		shaped, err := shape(row)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, shaped)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, pkgerrors.MapStorageError(s.table+".filter", err)
	}
	return items, total, nil
}

// Find is Filter returning entities instead of shaped rows.
func (s *Store[T, PT]) Find(dbc dbctx.Context, q Query) ([]*T, error) {
	items, _, err := s.Filter(dbc, q, func(r Row[T]) (any, error) { return r.Entity, nil })
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(items))
	for _, it := range items {
		out = append(out, it.(*T))
	}
	return out, nil
}

// Count returns the number of rows matching where.
func (s *Store[T, PT]) Count(dbc dbctx.Context, where ...clause.Expression) (n int64, err error) {
	dbc, done := s.begin(dbc, "count")
	defer func() { done(err) }()
	q := dbctx.Conn(s.db, dbc).Model(new(T))
	if len(where) > 0 {
		q = q.Clauses(clause.Where{Exprs: where})
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, pkgerrors.MapStorageError(s.table+".count", err)
	}
	return n, nil
}

// Max returns the largest integer value of col among matching rows, 0 if none.
func (s *Store[T, PT]) Max(dbc dbctx.Context, col string, where ...clause.Expression) (max int64, err error) {
	dbc, done := s.begin(dbc, "max")
	defer func() { done(err) }()
	if !s.HasColumn(col) {
		return 0, fmt.Errorf("%w: %s has no column %q", pkgerrors.ErrInvalidArgument, s.table, col)
	}
	q := dbctx.Conn(s.db, dbc).Model(new(T)).Select(fmt.Sprintf("COALESCE(MAX(%s.%s), 0)", s.table, col))
	if len(where) > 0 {
		q = q.Clauses(clause.Where{Exprs: where})
	}
	if err := q.Row().Scan(&max); err != nil {
		return 0, pkgerrors.MapStorageError(s.table+".max", err)
	}
	return max, nil
}

func (s *Store[T, PT]) build(conn *gorm.DB, q Query) *gorm.DB {
	sel := make([]string, 0, len(q.Extras)+1)
	sel = append(sel, s.table+".*")
	for _, e := range q.Extras {
		sel = append(sel, e.Expr+" AS "+e.Alias)
	}
	chain := conn.Model(new(T)).Select(strings.Join(sel, ", "))
	for _, j := range q.Joins {
		chain = chain.Joins("JOIN "+j.Table+" ON "+j.On, j.Args...)
	}
	for _, j := range q.OuterJoins {
		chain = chain.Joins("LEFT JOIN "+j.Table+" ON "+j.On, j.Args...)
	}
	if len(q.Where) > 0 {
		chain = chain.Clauses(clause.Where{Exprs: q.Where})
	}
	if len(q.GroupBy) > 0 {
		chain = chain.Group(strings.Join(q.GroupBy, ", "))
	}
	return chain
}

func (s *Store[T, PT]) orderBy(q Query) ([]clause.OrderByColumn, error) {
	aliases := make(map[string]struct{}, len(q.Extras))
	for _, e := range q.Extras {
		aliases[e.Alias] = struct{}{}
	}
	seen := map[string]bool{}
	out := make([]clause.OrderByColumn, 0, len(q.Order)+len(s.pk))
	for _, tok := range q.Order {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		desc := strings.HasPrefix(tok, "-")
		name := strings.TrimLeft(tok, "+-")
		var col clause.Column
		if _, ok := s.columns[name]; ok {
			col = clause.Column{Table: s.table, Name: name}
		} else if _, ok := aliases[name]; ok {
			col = clause.Column{Name: name}
		} else {
			return nil, pkgerrors.Validation("INVALID_ORDER", fmt.Sprintf("unknown order column %q", name))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, clause.OrderByColumn{Column: col, Desc: desc})
	}
	for _, pk := range s.pk {
		if !seen[pk] {
			out = append(out, clause.OrderByColumn{Column: clause.Column{Table: s.table, Name: pk}})
		}
	}
	return out, nil
}

func (s *Store[T, PT]) defaultShape(r Row[T]) (any, error) {
	if rep, ok := any(r.Entity).(Representer); ok {
		return rep.Represent(), nil
	}
	return r.Entity, nil
}
