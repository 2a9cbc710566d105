// Package store is the generic data-access engine every entity repo builds on:
// keyed lookup, filtered listing with joins and row shaping, versioned
// create-or-update, and existence-checked removal.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/yungbote/arm-gateway/internal/domain/base"
	"github.com/yungbote/arm-gateway/internal/observability"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// Model is satisfied by pointers to gorm models that expose their key.
type Model[T any] interface {
	*T
	TableName() string
	PrimaryKey() base.Key
}

type versioned interface {
	GetVersion() int64
	SetVersion(int64)
}

type keyMinter interface {
	MintKey()
}

// Representer lets an entity choose its default listing form.
type Representer interface {
	Represent() any
}

type config struct {
	entity  string
	metrics *observability.Metrics
}

type Option func(*config)

// WithEntityName sets the noun used in not-found errors (default: table name).
func WithEntityName(name string) Option {
	return func(c *config) { c.entity = name }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

type Store[T any, PT Model[T]] struct {
	db      *gorm.DB
	log     *logger.Logger
	metrics *observability.Metrics

	table   string
	entity  string
	pk      []string
	columns map[string]struct{}

	mu         sync.RWMutex
	afterWrite []func(dbctx.Context, *T) error
}

// New parses T's schema once; the column set drives key and order validation.
func New[T any, PT Model[T]](db *gorm.DB, log *logger.Logger, opts ...Option) (*Store[T, PT], error) {
	cfg := config{metrics: observability.Current()}
	for _, opt := range opts {
		opt(&cfg)
	}
	sch, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema %T: %w", *new(T), err)
	}
	if len(sch.PrimaryFieldDBNames) == 0 {
		return nil, fmt.Errorf("model %T declares no primary key", *new(T))
	}
	table := PT(new(T)).TableName()
	if cfg.entity == "" {
		cfg.entity = table
	}
	cols := make(map[string]struct{}, len(sch.DBNames))
	for _, name := range sch.DBNames {
		cols[name] = struct{}{}
	}
	return &Store[T, PT]{
		db:      db,
		log:     log.With("store", table),
		metrics: cfg.metrics,
		table:   table,
		entity:  cfg.entity,
		pk:      append([]string(nil), sch.PrimaryFieldDBNames...),
		columns: cols,
	}, nil
}

// MustNew is New for statically known models.
func MustNew[T any, PT Model[T]](db *gorm.DB, log *logger.Logger, opts ...Option) *Store[T, PT] {
	s, err := New[T, PT](db, log, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Store[T, PT]) Table() string { return s.table }

func (s *Store[T, PT]) DB() *gorm.DB { return s.db }

// HasColumn reports whether name is a column of T.
func (s *Store[T, PT]) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// OnWrite registers a hook run after every successful create or update,
// inside the same transaction.
func (s *Store[T, PT]) OnWrite(fn func(dbctx.Context, *T) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterWrite = append(s.afterWrite, fn)
}

// Get returns the row for key, or nil when none exists.
func (s *Store[T, PT]) Get(dbc dbctx.Context, key base.Key) (*T, error) {
	return s.get(dbc, key, false, "get")
}

// GetForUpdate is Get with a row lock held until the transaction ends.
func (s *Store[T, PT]) GetForUpdate(dbc dbctx.Context, key base.Key) (*T, error) {
	return s.get(dbc, key, true, "get_for_update")
}

// MustGet is Get that reports absence as a NotFoundError.
func (s *Store[T, PT]) MustGet(dbc dbctx.Context, key base.Key) (*T, error) {
	ent, err := s.Get(dbc, key)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, pkgerrors.NotFound(s.entity, key)
	}
	return ent, nil
}

func (s *Store[T, PT]) get(dbc dbctx.Context, key base.Key, lock bool, op string) (out *T, err error) {
	dbc, done := s.begin(dbc, op)
	defer func() { done(err) }()

	if err := s.checkKey(key); err != nil {
		return nil, err
	}
	q := dbctx.Conn(s.db, dbc).Clauses(clause.Where{Exprs: s.keyWhere(key)})
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ent T
	if err := q.Take(&ent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.MapStorageError(s.table+"."+op, err)
	}
	return &ent, nil
}

func (s *Store[T, PT]) checkKey(key base.Key) error {
	if key == nil {
		return fmt.Errorf("%w: %s: missing key", pkgerrors.ErrInvalidArgument, s.table)
	}
	cols, vals := key.Columns(), key.Values()
	if len(cols) != len(s.pk) || len(vals) != len(cols) {
		return fmt.Errorf("%w: %s: key %s has arity %d, want %d", pkgerrors.ErrInvalidArgument, s.table, key, len(vals), len(s.pk))
	}
	for _, c := range cols {
		found := false
		for _, p := range s.pk {
			if p == c {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s: %q is not a key column", pkgerrors.ErrInvalidArgument, s.table, c)
		}
	}
	return nil
}

func (s *Store[T, PT]) keyWhere(key base.Key) []clause.Expression {
	cols, vals := key.Columns(), key.Values()
	exprs := make([]clause.Expression, 0, len(cols))
	for i, c := range cols {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Table: s.table, Name: c}, Value: vals[i]})
	}
	return exprs
}

// begin opens a span for op and returns the completion callback that records
// the outcome on the span and in metrics.
func (s *Store[T, PT]) begin(dbc dbctx.Context, op string) (dbctx.Context, func(error)) {
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := observability.Tracer().Start(ctx, "store."+s.table+"."+op)
	start := time.Now()
	dbc.Ctx = ctx
	return dbc, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveStore(s.table, op, err, time.Since(start))
	}
}
