package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/repos"
	server "github.com/yungbote/arm-gateway/internal/http"
	"github.com/yungbote/arm-gateway/internal/observability"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
	"github.com/yungbote/arm-gateway/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    *repos.Set
	Services Services
	Server   *server.Server
	Metrics  *observability.Metrics

	clients      Clients
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Config loaded", "db_driver", cfg.DBDriver, "port", cfg.Port, "redis", cfg.Redis.Addr != "")

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Otel.Environment,
		Version:     services.Version,
		Endpoint:    cfg.Otel.Endpoint,
		Insecure:    cfg.Otel.Insecure,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		SampleRatio: cfg.Otel.SampleRatio,
	})
	// Before repos: stores pick the registry up at construction.
	metrics := observability.Init(cfg.MetricsEnabled)

	mainComplect, err := cfg.MainComplect()
	if err != nil {
		log.Sync()
		return nil, err
	}

	theDB, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	clients, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, reposet, clients, metrics, mainComplect)
	handlerset := wireHandlers(theDB, log, serviceset)
	middleware := wireMiddleware(log, cfg)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Server:       wireServer(log, cfg, metrics, handlerset, middleware),
		Metrics:      metrics,
		clients:      clients,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until Shutdown.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Shutdown stops accepting requests, drains in-flight ones and releases
// clients, tracing and the database pool.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if a.Server != nil {
		keep(a.Server.Shutdown(ctx))
	}
	keep(a.clients.Close())
	if a.otelShutdown != nil {
		keep(a.otelShutdown(ctx))
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			keep(sqlDB.Close())
		}
	}
	a.Log.Sync()
	return first
}
