package app

import (
	"fmt"

	server "github.com/yungbote/arm-gateway/internal/http"
	"github.com/yungbote/arm-gateway/internal/observability"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *server.Server {
	return server.NewServer(fmt.Sprintf(":%d", cfg.Port), server.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.Otel.ServiceName,
		TracingEnabled: cfg.Otel.Enabled,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: middleware.Auth,

		ProfileHandler:    handlers.Profile,
		SuiteHandler:      handlers.Suite,
		TemplateHandler:   handlers.Template,
		DictionaryHandler: handlers.Dictionary,
		ComplectHandler:   handlers.Complect,
		TestcaseHandler:   handlers.Testcase,
		AccessHandler:     handlers.Access,
		SystemHandler:     handlers.System,
		HealthHandler:     handlers.Health,
	})
}
