package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/arm-gateway/internal/http/handlers"
	httpMW "github.com/yungbote/arm-gateway/internal/http/middleware"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Profile    *httpH.ProfileHandler
	Suite      *httpH.SuiteHandler
	Template   *httpH.TemplateHandler
	Dictionary *httpH.DictionaryHandler
	Complect   *httpH.ComplectHandler
	Testcase   *httpH.TestcaseHandler
	Access     *httpH.AccessHandler
	System     *httpH.SystemHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set; trusting X-User-Id / X-Account-Id headers")
	}
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey)}
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Profile:    httpH.NewProfileHandler(log, svc.Profile),
		Suite:      httpH.NewSuiteHandler(log, svc.Suite),
		Template:   httpH.NewTemplateHandler(log, svc.Template),
		Dictionary: httpH.NewDictionaryHandler(log, svc.Dictionary),
		Complect:   httpH.NewComplectHandler(log, svc.Complect),
		Testcase:   httpH.NewTestcaseHandler(log, svc.Testcase),
		Access:     httpH.NewAccessHandler(log, svc.Access),
		System:     httpH.NewSystemHandler(svc.System),
	}
}
