package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos/access"
	"github.com/yungbote/arm-gateway/internal/data/repos/catalog"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type ProfileRepo = catalog.ProfileRepo
type SuiteRepo = catalog.SuiteRepo
type TemplateRepo = catalog.TemplateRepo
type DictionaryRepo = catalog.DictionaryRepo
type DictionaryHistory = catalog.DictionaryHistory
type ComplectRepo = catalog.ComplectRepo
type TestcaseRepo = catalog.TestcaseRepo

type UserProfileGrantRepo = access.UserProfileGrantRepo
type AccountProfileGrantRepo = access.AccountProfileGrantRepo
type AccountComplectGrantRepo = access.AccountComplectGrantRepo
type UserFlagsRepo = access.UserFlagsRepo

// Set holds one store per table.
type Set struct {
	Profile           *ProfileRepo
	Suite             *SuiteRepo
	Template          *TemplateRepo
	Dictionary        *DictionaryRepo
	DictionaryHistory *DictionaryHistory
	Complect          *ComplectRepo
	Testcase          *TestcaseRepo

	UserProfileGrant     *UserProfileGrantRepo
	AccountProfileGrant  *AccountProfileGrantRepo
	AccountComplectGrant *AccountComplectGrantRepo
	UserFlags            *UserFlagsRepo
}

func New(db *gorm.DB, log *logger.Logger) *Set {
	log.Info("Wiring repos...")
	dict, dictHistory := catalog.NewDictionaryRepo(db, log)
	return &Set{
		Profile:           catalog.NewProfileRepo(db, log),
		Suite:             catalog.NewSuiteRepo(db, log),
		Template:          catalog.NewTemplateRepo(db, log),
		Dictionary:        dict,
		DictionaryHistory: dictHistory,
		Complect:          catalog.NewComplectRepo(db, log),
		Testcase:          catalog.NewTestcaseRepo(db, log),

		UserProfileGrant:     access.NewUserProfileGrantRepo(db, log),
		AccountProfileGrant:  access.NewAccountProfileGrantRepo(db, log),
		AccountComplectGrant: access.NewAccountComplectGrantRepo(db, log),
		UserFlags:            access.NewUserFlagsRepo(db, log),
	}
}
