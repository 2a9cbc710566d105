package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/history"
	"github.com/yungbote/arm-gateway/internal/data/store"
	types "github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type ProfileRepo = store.Store[types.Profile, *types.Profile]
type SuiteRepo = store.Store[types.Suite, *types.Suite]
type TemplateRepo = store.Store[types.Template, *types.Template]
type DictionaryRepo = store.Store[types.Dictionary, *types.Dictionary]
type DictionaryVersionRepo = store.Store[types.DictionaryVersion, *types.DictionaryVersion]
type ComplectRepo = store.Store[types.Complect, *types.Complect]
type TestcaseRepo = store.Store[types.Testcase, *types.Testcase]

// DictionaryHistory records a snapshot per dictionary write.
type DictionaryHistory = history.Recorder[types.Dictionary, types.DictionaryVersion, *types.DictionaryVersion]

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) *ProfileRepo {
	return store.MustNew[types.Profile](db, baseLog.With("repo", "ProfileRepo"), store.WithEntityName("profile"))
}

func NewSuiteRepo(db *gorm.DB, baseLog *logger.Logger) *SuiteRepo {
	return store.MustNew[types.Suite](db, baseLog.With("repo", "SuiteRepo"), store.WithEntityName("suite"))
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) *TemplateRepo {
	return store.MustNew[types.Template](db, baseLog.With("repo", "TemplateRepo"), store.WithEntityName("template"))
}

// NewDictionaryRepo returns the live store with history recording attached.
func NewDictionaryRepo(db *gorm.DB, baseLog *logger.Logger) (*DictionaryRepo, *DictionaryHistory) {
	live := store.MustNew[types.Dictionary](db, baseLog.With("repo", "DictionaryRepo"), store.WithEntityName("dictionary"))
	versions := store.MustNew[types.DictionaryVersion](db, baseLog.With("repo", "DictionaryVersionRepo"), store.WithEntityName("dictionary version"))
	rec := history.New(versions, "id", types.SnapshotDictionary)
	rec.Attach(live)
	return live, rec
}

func NewComplectRepo(db *gorm.DB, baseLog *logger.Logger) *ComplectRepo {
	return store.MustNew[types.Complect](db, baseLog.With("repo", "ComplectRepo"), store.WithEntityName("complect"))
}

func NewTestcaseRepo(db *gorm.DB, baseLog *logger.Logger) *TestcaseRepo {
	return store.MustNew[types.Testcase](db, baseLog.With("repo", "TestcaseRepo"), store.WithEntityName("testcase"))
}
