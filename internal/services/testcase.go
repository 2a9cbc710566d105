package services

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/data/store"
	"github.com/yungbote/arm-gateway/internal/domain/base"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/pkg/nullable"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// TestcaseInput.ProfileID is tri-state: absent keeps the owner, null clears
// it, a value sets it.
type TestcaseInput struct {
	ID          *uuid.UUID                `json:"id,omitempty"`
	ProfileID   nullable.Field[uuid.UUID] `json:"profile_id"`
	Title       *string                   `json:"title,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Replicas    *[]string                 `json:"replicas,omitempty"`
	IsCommon    *bool                     `json:"is_common,omitempty"`
	Author      *int64                    `json:"author,omitempty"`
}

type TestcaseListParams struct {
	Paging
	ProfileIDs []uuid.UUID `json:"profile_ids"`
	IsCommon   *bool       `json:"is_common"`
}

type TestcaseService interface {
	Create(dbc dbctx.Context, in TestcaseInput) (*types.Testcase, error)
	CreateBatch(dbc dbctx.Context, in []TestcaseInput) ([]*types.Testcase, error)
	Update(dbc dbctx.Context, in TestcaseInput) (*types.Testcase, error)
	UpdateBatch(dbc dbctx.Context, in []TestcaseInput) ([]*types.Testcase, error)
	Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Testcase, error)
	List(dbc dbctx.Context, params TestcaseListParams) (*ListResult, error)
	Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error)
}

type testcaseService struct {
	db        *gorm.DB
	log       *logger.Logger
	testcases *repos.TestcaseRepo
}

func NewTestcaseService(db *gorm.DB, log *logger.Logger, set *repos.Set) TestcaseService {
	return &testcaseService{
		db:        db,
		log:       log.With("service", "TestcaseService"),
		testcases: set.Testcase,
	}
}

func (s *testcaseService) Create(dbc dbctx.Context, in TestcaseInput) (*types.Testcase, error) {
	return s.testcases.CreateOrUpdate(dbc, nil, func(tc *types.Testcase) error {
		tc.IsCommon = true
		tc.Replicas = datatypes.JSONSlice[string]{}
		s.apply(tc, in)
		return nil
	})
}

func (s *testcaseService) CreateBatch(dbc dbctx.Context, in []TestcaseInput) ([]*types.Testcase, error) {
	return batch(s.db, dbc, in, s.Create)
}

func (s *testcaseService) Update(dbc dbctx.Context, in TestcaseInput) (*types.Testcase, error) {
	key, err := requireID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.testcases.CreateOrUpdate(dbc, key, func(tc *types.Testcase) error {
		s.apply(tc, in)
		return nil
	})
}

func (s *testcaseService) UpdateBatch(dbc dbctx.Context, in []TestcaseInput) ([]*types.Testcase, error) {
	return batch(s.db, dbc, in, s.Update)
}

func (s *testcaseService) apply(tc *types.Testcase, in TestcaseInput) {
	if in.ProfileID.Set {
		tc.ProfileID = in.ProfileID.Value
	}
	setString(&tc.Title, in.Title)
	setString(&tc.Description, in.Description)
	if in.Replicas != nil {
		tc.Replicas = append(datatypes.JSONSlice[string]{}, (*in.Replicas)...)
	}
	setBool(&tc.IsCommon, in.IsCommon)
	if in.Author != nil {
		tc.Author = *in.Author
	}
}

func (s *testcaseService) Fetch(dbc dbctx.Context, id uuid.UUID) (*types.Testcase, error) {
	return s.testcases.MustGet(dbc, base.ID(id))
}

func (s *testcaseService) List(dbc dbctx.Context, params TestcaseListParams) (*ListResult, error) {
	var q store.Query
	if len(params.ProfileIDs) > 0 {
		q.Where = append(q.Where, store.In("profile_id", params.ProfileIDs))
	}
	if params.IsCommon != nil {
		q.Where = append(q.Where, store.Eq("is_common", *params.IsCommon))
	}
	items, total, err := s.testcases.Filter(dbc, params.apply(q), nil)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *testcaseService) Remove(dbc dbctx.Context, ids []uuid.UUID) (bool, error) {
	return s.testcases.Remove(dbc, base.IDs(ids)...)
}
