// Package access decides which profiles a principal may list and which
// permissions are shown on each of them.
package access

import (
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	acl "github.com/yungbote/arm-gateway/internal/domain/access"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	"github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/observability"
	"github.com/yungbote/arm-gateway/internal/platform/ctxutil"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// Tier names, also used as metric labels.
const (
	TierUnrestricted = "unrestricted"
	TierAccount      = "account"
	TierUser         = "user"
	TierUserFull     = "user_full_list"
)

const grantAlias = "apu"

const permissionsAlias = "permissions"

// Scope is the outcome of a resolution: the filter to add to a profile
// listing and the permission default for its overlay.
type Scope struct {
	Tier string
	// Empty means nothing is visible and the listing must not run.
	Empty bool

	Default    bool
	where      []clause.Expression
	outerJoins []store.Join
	extras     []store.Extra
}

// Apply adds the scope's predicates, joins and extra columns to q.
func (s *Scope) Apply(q store.Query) store.Query {
	q.Where = append(append([]clause.Expression(nil), q.Where...), s.where...)
	q.OuterJoins = append(append([]store.Join(nil), q.OuterJoins...), s.outerJoins...)
	q.Extras = append(append([]store.Extra(nil), q.Extras...), s.extras...)
	return q
}

// Overlay returns the permissions shown on a listed profile row.
func (s *Scope) Overlay(row store.Row[catalog.Profile]) (map[string]bool, error) {
	stored, err := row.ExtraMap(permissionsAlias)
	if err != nil {
		return nil, err
	}
	return acl.Overlay(stored, s.Default), nil
}

type Resolver struct {
	log      *logger.Logger
	flags    *repos.UserFlagsRepo
	userAcc  *repos.UserProfileGrantRepo
	accounts *repos.AccountProfileGrantRepo
	metrics  *observability.Metrics
}

func NewResolver(log *logger.Logger, set *repos.Set, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		log:      log.With("module", "AccessResolver"),
		flags:    set.UserFlags,
		userAcc:  set.UserProfileGrant,
		accounts: set.AccountProfileGrant,
		metrics:  metrics,
	}
}

// Resolve runs the three-tier cascade for principal p. accountID narrows the
// account tiers; fullList widens a plain user to the account's grant set.
func (r *Resolver) Resolve(dbc dbctx.Context, p *ctxutil.Principal, accountID *uuid.UUID, fullList bool) (*Scope, error) {
	scope, err := r.resolve(dbc, p, accountID, fullList)
	if err != nil {
		return nil, err
	}
	r.metrics.IncAccessTier(scope.Tier)
	return scope, nil
}

func (r *Resolver) resolve(dbc dbctx.Context, p *ctxutil.Principal, accountID *uuid.UUID, fullList bool) (*Scope, error) {
	if p == nil || p.UserID == nil {
		return &Scope{Tier: TierUnrestricted, Default: true}, nil
	}
	userID := *p.UserID

	flags, err := r.flags.Get(dbc, base.Scalar[uuid.UUID]{Column: "user_id", Value: userID})
	if err != nil {
		return nil, err
	}
	if flags.Flag(acl.FlagSysAdmin) {
		return &Scope{Tier: TierUnrestricted, Default: true}, nil
	}

	if flags.Flag(acl.FlagAccAdmin) && accountID != nil {
		ids, err := r.accountProfileIDs(dbc, *accountID)
		if err != nil {
			return nil, err
		}
		return withIDs(&Scope{Tier: TierAccount, Default: true}, ids), nil
	}

	scope := &Scope{
		Default: false,
		extras:  []store.Extra{{Expr: grantAlias + ".permissions", Alias: permissionsAlias}},
	}
	var ids []uuid.UUID
	if fullList && accountID != nil {
		scope.Tier = TierUserFull
		ids, err = r.accountProfileIDs(dbc, *accountID)
		if err != nil {
			return nil, err
		}
		scope.outerJoins = []store.Join{{
			Table: "access_profile_user " + grantAlias,
			On:    grantAlias + ".profile_id = profiles.id AND " + grantAlias + ".user_id = ?",
			Args:  []any{userID},
		}}
	} else {
		scope.Tier = TierUser
		ids, err = r.userProfileIDs(dbc, userID)
		if err != nil {
			return nil, err
		}
		scope.outerJoins = []store.Join{{
			Table: "access_profile_user " + grantAlias,
			On:    grantAlias + ".profile_id = profiles.id",
		}}
		scope.where = append(scope.where, store.Raw(grantAlias+".user_id = ?", userID))
	}
	return withIDs(scope, ids), nil
}

func withIDs(s *Scope, ids []uuid.UUID) *Scope {
	if len(ids) == 0 {
		s.Empty = true
		return s
	}
	s.where = append(s.where, store.In("profiles.id", ids))
	return s
}

func (r *Resolver) accountProfileIDs(dbc dbctx.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.accounts.Find(dbc, store.Query{Where: []clause.Expression{store.Eq("account_id", accountID)}})
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, g := range rows {
		out = append(out, g.ProfileID)
	}
	return out, nil
}

func (r *Resolver) userProfileIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.userAcc.Find(dbc, store.Query{Where: []clause.Expression{store.Eq("user_id", userID)}})
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, g := range rows {
		out = append(out, g.ProfileID)
	}
	return out, nil
}
