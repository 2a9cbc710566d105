package services

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/yungbote/arm-gateway/internal/data/db"
	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/modules/access"
	"github.com/yungbote/arm-gateway/internal/platform/ctxutil"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type ProfileInput struct {
	ID        *uuid.UUID        `json:"id,omitempty"`
	Name      *string           `json:"name,omitempty"`
	Code      *string           `json:"code,omitempty"`
	Common    *bool             `json:"common,omitempty"`
	State     *string           `json:"state,omitempty"`
	Meta      datatypes.JSONMap `json:"meta,omitempty"`
	IsEnabled *bool             `json:"is_enabled,omitempty"`
}

type ProfileListParams struct {
	Paging
	AccountID *uuid.UUID `json:"account_id"`
	FullList  bool       `json:"full_list"`
}

type ProfileService interface {
	Create(dbc dbctx.Context, in ProfileInput) (*types.Profile, error)
	CreateBatch(dbc dbctx.Context, in []ProfileInput) ([]*types.Profile, error)
	Update(dbc dbctx.Context, in ProfileInput) (*types.Profile, error)
	UpdateBatch(dbc dbctx.Context, in []ProfileInput) ([]*types.Profile, error)
	Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	List(dbc dbctx.Context, params ProfileListParams) (*ListResult, error)
	Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error)
}

type profileService struct {
	db             *gorm.DB
	log            *logger.Logger
	profiles       *repos.ProfileRepo
	complects      *repos.ComplectRepo
	userGrants     *repos.UserProfileGrantRepo
	accountGrants  *repos.AccountProfileGrantRepo
	suiteRepo      *repos.SuiteRepo
	suites         SuiteService
	resolver       *access.Resolver
	mainComplectID uuid.UUID
}

// NewProfileService wires profile operations. New profiles are appended to
// the complect mainComplectID when it exists.
func NewProfileService(db *gorm.DB, log *logger.Logger, set *repos.Set, suites SuiteService, resolver *access.Resolver, mainComplectID uuid.UUID) ProfileService {
	return &profileService{
		db:             db,
		log:            log.With("service", "ProfileService"),
		profiles:       set.Profile,
		complects:      set.Complect,
		userGrants:     set.UserProfileGrant,
		accountGrants:  set.AccountProfileGrant,
		suiteRepo:      set.Suite,
		suites:         suites,
		resolver:       resolver,
		mainComplectID: mainComplectID,
	}
}

func (s *profileService) Create(dbc dbctx.Context, in ProfileInput) (*types.Profile, error) {
	var out *types.Profile
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		engineID, err := dbpkg.NextEngineID(dbctx.Conn(s.db, inner))
		if err != nil {
			return err
		}
		p, err := s.profiles.CreateOrUpdate(inner, nil, func(p *types.Profile) error {
			p.State = base.StateActive
			p.IsEnabled = true
			p.Meta = emptyMeta()
			p.EngineID = engineID
			p.Code = randomCode()
			return s.apply(p, in)
		})
		if err != nil {
			return err
		}
		if err := s.joinMainComplect(inner, p.ID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Profile created", "profile_id", out.ID, "engine_id", out.EngineID)
	return out, nil
}

func (s *profileService) joinMainComplect(dbc dbctx.Context, profileID uuid.UUID) error {
	if s.mainComplectID == uuid.Nil {
		return nil
	}
	main, err := s.complects.Get(dbc, base.ID(s.mainComplectID))
	if err != nil {
		return err
	}
	if main == nil {
		return nil
	}
	_, err = s.complects.CreateOrUpdate(dbc, base.ID(main.ID), func(c *types.Complect) error {
		c.AddProfile(profileID)
		return nil
	})
	return err
}

func (s *profileService) CreateBatch(dbc dbctx.Context, in []ProfileInput) ([]*types.Profile, error) {
	return batch(s.db, dbc, in, s.Create)
}

func (s *profileService) Update(dbc dbctx.Context, in ProfileInput) (*types.Profile, error) {
	key, err := requireID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.profiles.CreateOrUpdate(dbc, key, func(p *types.Profile) error {
		return s.apply(p, in)
	})
}

func (s *profileService) UpdateBatch(dbc dbctx.Context, in []ProfileInput) ([]*types.Profile, error) {
	return batch(s.db, dbc, in, s.Update)
}

// apply patches p. The code follows the name unless one is given
// explicitly; an empty code never overwrites the current one.
func (s *profileService) apply(p *types.Profile, in ProfileInput) error {
	if err := applyState(&p.State, in.State); err != nil {
		return err
	}
	setString(&p.Name, in.Name)
	code := in.Code
	if code == nil || *code == "" {
		code = in.Name
	}
	if code != nil && *code != "" {
		p.Code = *code
	}
	setBool(&p.Common, in.Common)
	setBool(&p.IsEnabled, in.IsEnabled)
	setMeta(&p.Meta, in.Meta)
	return nil
}

func (s *profileService) Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	return s.profiles.MustGet(dbc, base.ID(id))
}

// List returns the profiles visible to the caller with their permissions.
func (s *profileService) List(dbc dbctx.Context, params ProfileListParams) (*ListResult, error) {
	principal := ctxutil.GetPrincipal(dbc.Ctx)
	scope, err := s.resolver.Resolve(dbc, principal, params.AccountID, params.FullList)
	if err != nil {
		return nil, err
	}
	if scope.Empty {
		return emptyList(), nil
	}
	q := scope.Apply(params.apply(store.Query{}))
	items, total, err := s.profiles.Filter(dbc, q, func(r store.Row[types.Profile]) (any, error) {
		perms, err := scope.Overlay(r)
		if err != nil {
			return nil, err
		}
		return types.ProfileView{Profile: r.Entity, Permissions: perms}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// Remove deletes the profiles together with their suites, templates and
// access grants.
func (s *profileService) Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error) {
	var removed bool
	err := dbctx.Run(s.db, dbc, func(inner dbctx.Context) error {
		owned, err := s.suiteRepo.Find(inner, store.Query{Where: []clause.Expression{store.In("profile_id", ids)}})
		if err != nil {
			return err
		}
		if len(owned) > 0 {
			suiteIDs := make([]uuid.UUID, 0, len(owned))
			for _, su := range owned {
				suiteIDs = append(suiteIDs, su.ID)
			}
			if _, err := s.suites.Remove(inner, suiteIDs); err != nil {
				return err
			}
		}
		if len(ids) > 0 {
			if _, err := s.userGrants.DeleteWhere(inner, store.In("profile_id", ids)); err != nil {
				return err
			}
			if _, err := s.accountGrants.DeleteWhere(inner, store.In("profile_id", ids)); err != nil {
				return err
			}
		}
		ok, err := s.profiles.Remove(inner, base.IDs(ids)...)
		if err != nil {
			return err
		}
		removed = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	s.log.Info("Profiles removed", "count", len(ids))
	return removed, nil
}

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz"

func randomCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}
