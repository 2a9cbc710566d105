package app

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/modules/access"
	"github.com/yungbote/arm-gateway/internal/modules/sequencer"
	"github.com/yungbote/arm-gateway/internal/observability"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type Services struct {
	Profile    services.ProfileService
	Suite      services.SuiteService
	Template   services.TemplateService
	Dictionary services.DictionaryService
	Complect   services.ComplectService
	Testcase   services.TestcaseService
	Access     services.AccessService
	System     services.SystemService
}

func wireServices(db *gorm.DB, log *logger.Logger, set *repos.Set, clients Clients, metrics *observability.Metrics, mainComplect uuid.UUID) Services {
	log.Info("Wiring services...")
	seq := sequencer.New(sequencer.Deps{
		Log:       log,
		Templates: set.Template,
		Suites:    set.Suite,
		Locker:    clients.Locker,
		Metrics:   metrics,
	})
	resolver := access.NewResolver(log, set, metrics)
	suites := services.NewSuiteService(db, log, set)
	return Services{
		Profile:    services.NewProfileService(db, log, set, suites, resolver, mainComplect),
		Suite:      suites,
		Template:   services.NewTemplateService(db, log, set, seq),
		Dictionary: services.NewDictionaryService(db, log, set),
		Complect:   services.NewComplectService(db, log, set),
		Testcase:   services.NewTestcaseService(db, log, set),
		Access:     services.NewAccessService(db, log, set),
		System:     services.NewSystemService(),
	}
}
