package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
)

// Paging is shared by every listing. Zero values mean no offset, no limit,
// default order.
type Paging struct {
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
	Order  []string `json:"order"`
}

func (p Paging) apply(q store.Query) store.Query {
	q.Offset = p.Offset
	q.Limit = p.Limit
	if len(p.Order) > 0 {
		q.Order = p.Order
	}
	return q
}

// ListResult is one page and the total number of matches.
type ListResult struct {
	Items []any `json:"items"`
	Total int64 `json:"total"`
}

func emptyList() *ListResult {
	return &ListResult{Items: []any{}, Total: 0}
}

// batch applies fn to every item inside one transaction.
func batch[In any, Out any](db *gorm.DB, dbc dbctx.Context, items []In, fn func(dbctx.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, 0, len(items))
	err := dbctx.Run(db, dbc, func(inner dbctx.Context) error {
		for _, it := range items {
			res, err := fn(inner, it)
			if err != nil {
				return err
			}
			out = append(out, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func requireID(id *uuid.UUID) (base.Key, error) {
	if id == nil || *id == uuid.Nil {
		return nil, pkgerrors.Validation("ID_REQUIRED", "id must be given for update")
	}
	return base.ID(*id), nil
}
