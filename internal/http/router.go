package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/arm-gateway/internal/http/handlers"
	httpMW "github.com/yungbote/arm-gateway/internal/http/middleware"
	"github.com/yungbote/arm-gateway/internal/observability"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	ProfileHandler    *httpH.ProfileHandler
	SuiteHandler      *httpH.SuiteHandler
	TemplateHandler   *httpH.TemplateHandler
	DictionaryHandler *httpH.DictionaryHandler
	ComplectHandler   *httpH.ComplectHandler
	TestcaseHandler   *httpH.TestcaseHandler
	AccessHandler     *httpH.AccessHandler
	SystemHandler     *httpH.SystemHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.AttachPrincipal())
	}

	if cfg.SystemHandler != nil {
		api.GET("/system/version", cfg.SystemHandler.Version)
	}

	// Profiles
	if h := cfg.ProfileHandler; h != nil {
		api.POST("/profiles", h.Create)
		api.PATCH("/profiles", h.Update)
		api.GET("/profiles", h.List)
		api.GET("/profiles/:id", h.Fetch)
		api.DELETE("/profiles", h.Remove)
		api.DELETE("/profiles/:id", h.Remove)
	}

	// Suites
	if h := cfg.SuiteHandler; h != nil {
		api.POST("/suites", h.Create)
		api.PATCH("/suites", h.Update)
		api.GET("/suites", h.List)
		api.GET("/suites/:id", h.Fetch)
		api.DELETE("/suites", h.Remove)
		api.DELETE("/suites/:id", h.Remove)
	}

	// Templates
	if h := cfg.TemplateHandler; h != nil {
		api.POST("/templates", h.Create)
		api.PATCH("/templates", h.Update)
		api.GET("/templates", h.List)
		api.GET("/templates/:id", h.Fetch)
		api.DELETE("/templates", h.Remove)
		api.DELETE("/templates/:id", h.Remove)
	}

	// Dictionaries
	if h := cfg.DictionaryHandler; h != nil {
		api.POST("/dictionaries", h.Create)
		api.PATCH("/dictionaries", h.Update)
		api.GET("/dictionaries", h.List)
		api.GET("/dictionaries/:id", h.Fetch)
		api.GET("/dictionaries/:id/versions", h.ListVersions)
		api.DELETE("/dictionaries", h.Remove)
		api.DELETE("/dictionaries/:id", h.Remove)
	}

	// Complects
	if h := cfg.ComplectHandler; h != nil {
		api.POST("/complects", h.Create)
		api.PATCH("/complects", h.Update)
		api.GET("/complects", h.List)
		api.GET("/complects/:id", h.Fetch)
		api.POST("/complects/:id/profiles", h.Change)
		api.DELETE("/complects", h.Remove)
		api.DELETE("/complects/:id", h.Remove)
	}

	// Testcases
	if h := cfg.TestcaseHandler; h != nil {
		api.POST("/testcases", h.Create)
		api.PATCH("/testcases", h.Update)
		api.GET("/testcases", h.List)
		api.GET("/testcases/:id", h.Fetch)
		api.DELETE("/testcases", h.Remove)
		api.DELETE("/testcases/:id", h.Remove)
	}

	// Access grants
	if h := cfg.AccessHandler; h != nil {
		users := api.Group("/access/users/:user_id")
		users.POST("/profiles", h.CreateUserGrants)
		users.PATCH("/profiles", h.UpdateUserGrants)
		users.GET("/profiles", h.ListUserProfiles)
		users.DELETE("/profiles", h.RemoveUserGrants)
		users.GET("/grants", h.FetchUserGrants)
		users.GET("/flags", h.FetchFlags)
		users.PUT("/flags", h.SetFlags)

		accounts := api.Group("/access/accounts/:account_id")
		accounts.POST("/profiles", h.CreateAccountProfiles)
		accounts.GET("/profiles", h.ListAccountProfiles)
		accounts.GET("/profiles/:profile_id", h.FetchAccountProfile)
		accounts.DELETE("/profiles", h.RemoveAccountProfiles)
		accounts.POST("/complects", h.CreateAccountComplects)
		accounts.GET("/complects", h.ListAccountComplects)
		accounts.GET("/complects/:complect_id", h.FetchAccountComplect)
		accounts.DELETE("/complects", h.RemoveAccountComplects)
	}

	return r
}
