package services

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/access"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// ProfilePermissions is one user grant in a create or update request.
type ProfilePermissions struct {
	ProfileID   uuid.UUID      `json:"profile_id"`
	Permissions map[string]any `json:"permissions"`
}

// UserGrantsResult echoes what a grant write covered.
type UserGrantsResult struct {
	UserID     uuid.UUID            `json:"user_id"`
	ProfileIDs []ProfilePermissions `json:"profile_ids"`
}

type AccountGrantsResult struct {
	AccountID   uuid.UUID   `json:"account_id"`
	ProfileIDs  []uuid.UUID `json:"profile_ids,omitempty"`
	ComplectIDs []uuid.UUID `json:"complect_ids,omitempty"`
}

type AccessService interface {
	// user -> profile
	CreateUserGrants(dbc dbctx.Context, userID uuid.UUID, items []ProfilePermissions) (*UserGrantsResult, error)
	UpdateUserGrants(dbc dbctx.Context, userID uuid.UUID, items []ProfilePermissions) (*UserGrantsResult, error)
	FetchUserGrants(dbc dbctx.Context, userID uuid.UUID, profileIDs []uuid.UUID) ([]*types.UserProfileGrant, error)
	ListUserProfiles(dbc dbctx.Context, userID uuid.UUID, paging Paging) (*ListResult, error)
	RemoveUserGrants(dbc dbctx.Context, userID uuid.UUID, profileIDs []uuid.UUID) (bool, error)

	// account -> profile
	CreateAccountProfiles(dbc dbctx.Context, accountID uuid.UUID, profileIDs []uuid.UUID) (*AccountGrantsResult, error)
	FetchAccountProfile(dbc dbctx.Context, accountID, profileID uuid.UUID) (*types.AccountProfileGrant, error)
	ListAccountProfiles(dbc dbctx.Context, accountID uuid.UUID, paging Paging) (*ListResult, error)
	RemoveAccountProfiles(dbc dbctx.Context, accountID uuid.UUID, profileIDs []uuid.UUID) (bool, error)

	// account -> complect
	CreateAccountComplects(dbc dbctx.Context, accountID uuid.UUID, complectIDs []uuid.UUID) (*AccountGrantsResult, error)
	FetchAccountComplect(dbc dbctx.Context, accountID, complectID uuid.UUID) (*types.AccountComplectGrant, error)
	ListAccountComplects(dbc dbctx.Context, accountID uuid.UUID, paging Paging) (*ListResult, error)
	RemoveAccountComplects(dbc dbctx.Context, accountID uuid.UUID, complectIDs []uuid.UUID) (bool, error)

	// flags
	FetchFlags(dbc dbctx.Context, userID uuid.UUID) (*types.UserFlags, error)
	SetFlags(dbc dbctx.Context, userID uuid.UUID, flags map[string]any) (*types.UserFlags, error)
}

type accessService struct {
	db            *gorm.DB
	log           *logger.Logger
	userGrants    *repos.UserProfileGrantRepo
	accountGrants *repos.AccountProfileGrantRepo
	complectACL   *repos.AccountComplectGrantRepo
	flags         *repos.UserFlagsRepo
}

func NewAccessService(db *gorm.DB, log *logger.Logger, set *repos.Set) AccessService {
	return &accessService{
		db:            db,
		log:           log.With("service", "AccessService"),
		userGrants:    set.UserProfileGrant,
		accountGrants: set.AccountProfileGrant,
		complectACL:   set.AccountComplectGrant,
		flags:         set.UserFlags,
	}
}

// CreateUserGrants upserts: an existing grant has its permissions replaced.
func (s *accessService) CreateUserGrants(dbc dbctx.Context, userID uuid.UUID, items []ProfilePermissions) (*UserGrantsResult, error) {
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		for _, it := range items {
			key := types.UserProfileKey{UserID: userID, ProfileID: it.ProfileID}
			cur, err := s.userGrants.Get(inner, key)
			if err != nil {
				return err
			}
			var target base.Key
			if cur != nil {
				target = key
			}
			perms := datatypes.JSONMap(copyPerms(it.Permissions))
			if _, err := s.userGrants.CreateOrUpdate(inner, target, func(g *types.UserProfileGrant) error {
				g.UserID = userID
				g.ProfileID = it.ProfileID
				g.Permissions = perms
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &UserGrantsResult{UserID: userID, ProfileIDs: items}, nil
}

// UpdateUserGrants merges the given keys into existing grants; every grant
// must exist.
func (s *accessService) UpdateUserGrants(dbc dbctx.Context, userID uuid.UUID, items []ProfilePermissions) (*UserGrantsResult, error) {
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		for _, it := range items {
			key := types.UserProfileKey{UserID: userID, ProfileID: it.ProfileID}
			if _, err := s.userGrants.CreateOrUpdate(inner, key, func(g *types.UserProfileGrant) error {
				merged := copyPerms(g.Permissions)
				for k, v := range it.Permissions {
					merged[k] = v
				}
				g.Permissions = merged
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &UserGrantsResult{UserID: userID, ProfileIDs: items}, nil
}

func (s *accessService) FetchUserGrants(dbc dbctx.Context, userID uuid.UUID, profileIDs []uuid.UUID) ([]*types.UserProfileGrant, error) {
	out := make([]*types.UserProfileGrant, 0, len(profileIDs))
	for _, pid := range profileIDs {
		g, err := s.userGrants.MustGet(dbc, types.UserProfileKey{UserID: userID, ProfileID: pid})
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// ListUserProfiles pages the profile ids granted to a user.
func (s *accessService) ListUserProfiles(dbc dbctx.Context, userID uuid.UUID, paging Paging) (*ListResult, error) {
	q := paging.apply(store.Query{Where: []clause.Expression{store.Eq("user_id", userID)}})
	items, total, err := s.userGrants.Filter(dbc, q, func(r store.Row[types.UserProfileGrant]) (any, error) {
		return r.Entity.ProfileID, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *accessService) RemoveUserGrants(dbc dbctx.Context, userID uuid.UUID, profileIDs []uuid.UUID) (bool, error) {
	keys := make([]base.Key, 0, len(profileIDs))
	for _, pid := range profileIDs {
		keys = append(keys, types.UserProfileKey{UserID: userID, ProfileID: pid})
	}
	return s.userGrants.Remove(dbc, keys...)
}

// CreateAccountProfiles is idempotent: grants that exist are left alone.
func (s *accessService) CreateAccountProfiles(dbc dbctx.Context, accountID uuid.UUID, profileIDs []uuid.UUID) (*AccountGrantsResult, error) {
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		for _, pid := range profileIDs {
			cur, err := s.accountGrants.Get(inner, types.AccountProfileKey{AccountID: accountID, ProfileID: pid})
			if err != nil {
				return err
			}
			if cur != nil {
				continue
			}
			if _, err := s.accountGrants.CreateOrUpdate(inner, nil, func(g *types.AccountProfileGrant) error {
				g.AccountID = accountID
				g.ProfileID = pid
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &AccountGrantsResult{AccountID: accountID, ProfileIDs: profileIDs}, nil
}

func (s *accessService) FetchAccountProfile(dbc dbctx.Context, accountID, profileID uuid.UUID) (*types.AccountProfileGrant, error) {
	return s.accountGrants.MustGet(dbc, types.AccountProfileKey{AccountID: accountID, ProfileID: profileID})
}

func (s *accessService) ListAccountProfiles(dbc dbctx.Context, accountID uuid.UUID, paging Paging) (*ListResult, error) {
	q := paging.apply(store.Query{Where: []clause.Expression{store.Eq("account_id", accountID)}})
	items, total, err := s.accountGrants.Filter(dbc, q, func(r store.Row[types.AccountProfileGrant]) (any, error) {
		return r.Entity.ProfileID, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *accessService) RemoveAccountProfiles(dbc dbctx.Context, accountID uuid.UUID, profileIDs []uuid.UUID) (bool, error) {
	keys := make([]base.Key, 0, len(profileIDs))
	for _, pid := range profileIDs {
		keys = append(keys, types.AccountProfileKey{AccountID: accountID, ProfileID: pid})
	}
	return s.accountGrants.Remove(dbc, keys...)
}

func (s *accessService) CreateAccountComplects(dbc dbctx.Context, accountID uuid.UUID, complectIDs []uuid.UUID) (*AccountGrantsResult, error) {
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		for _, cid := range complectIDs {
			cur, err := s.complectACL.Get(inner, types.AccountComplectKey{AccountID: accountID, ComplectID: cid})
			if err != nil {
				return err
			}
			if cur != nil {
				continue
			}
			if _, err := s.complectACL.CreateOrUpdate(inner, nil, func(g *types.AccountComplectGrant) error {
				g.AccountID = accountID
				g.ComplectID = cid
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &AccountGrantsResult{AccountID: accountID, ComplectIDs: complectIDs}, nil
}

func (s *accessService) FetchAccountComplect(dbc dbctx.Context, accountID, complectID uuid.UUID) (*types.AccountComplectGrant, error) {
	return s.complectACL.MustGet(dbc, types.AccountComplectKey{AccountID: accountID, ComplectID: complectID})
}

func (s *accessService) ListAccountComplects(dbc dbctx.Context, accountID uuid.UUID, paging Paging) (*ListResult, error) {
	q := paging.apply(store.Query{Where: []clause.Expression{store.Eq("account_id", accountID)}})
	items, total, err := s.complectACL.Filter(dbc, q, func(r store.Row[types.AccountComplectGrant]) (any, error) {
		return r.Entity.ComplectID, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *accessService) RemoveAccountComplects(dbc dbctx.Context, accountID uuid.UUID, complectIDs []uuid.UUID) (bool, error) {
	keys := make([]base.Key, 0, len(complectIDs))
	for _, cid := range complectIDs {
		keys = append(keys, types.AccountComplectKey{AccountID: accountID, ComplectID: cid})
	}
	return s.complectACL.Remove(dbc, keys...)
}

func (s *accessService) FetchFlags(dbc dbctx.Context, userID uuid.UUID) (*types.UserFlags, error) {
	return s.flags.MustGet(dbc, flagsKey(userID))
}

// SetFlags replaces the user's flags, creating the row on first use.
func (s *accessService) SetFlags(dbc dbctx.Context, userID uuid.UUID, flags map[string]any) (*types.UserFlags, error) {
	if flags == nil {
		return nil, pkgerrors.Validation("MISSING_FLAGS", "flags must be given")
	}
	var out *types.UserFlags
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		cur, err := s.flags.Get(inner, flagsKey(userID))
		if err != nil {
			return err
		}
		var target base.Key
		if cur != nil {
			target = flagsKey(userID)
		}
		out, err = s.flags.CreateOrUpdate(inner, target, func(f *types.UserFlags) error {
			f.UserID = userID
			f.Flags = datatypes.JSONMap(copyPerms(flags))
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("User flags set", "user_id", userID)
	return out, nil
}

func flagsKey(userID uuid.UUID) base.Key {
	return base.Scalar[uuid.UUID]{Column: "user_id", Value: userID}
}

func copyPerms(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
