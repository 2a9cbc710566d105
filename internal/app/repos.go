package app

import (
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/yungbote/arm-gateway/internal/data/db"
	"github.com/yungbote/arm-gateway/internal/data/repos"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	var (
		theDB *gorm.DB
		err   error
	)
	switch cfg.DBDriver {
	case "sqlite":
		theDB, err = dbpkg.NewSQLite(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	default:
		pg, err := dbpkg.NewPostgresService(log, dbpkg.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Name:     cfg.Postgres.Name,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxOpen:  cfg.Postgres.MaxOpen,
			MaxIdle:  cfg.Postgres.MaxIdle,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		theDB = pg.DB()
	}
	if err := dbpkg.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return theDB, nil
}

func wireRepos(db *gorm.DB, log *logger.Logger) *repos.Set {
	return repos.New(db, log)
}
