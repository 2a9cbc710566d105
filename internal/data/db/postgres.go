package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxOpen  int
	MaxIdle  int
}

func (c PostgresConfig) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, sslmode)
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger, cfg PostgresConfig) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")
	return newPostgres(serviceLog, cfg.DSN(), cfg.MaxOpen, cfg.MaxIdle)
}

// NewPostgresFromDSN is used by tests pointed at TEST_POSTGRES_DSN.
func NewPostgresFromDSN(log *logger.Logger, dsn string) (*PostgresService, error) {
	return newPostgres(log.With("service", "PostgresService"), dsn, 0, 0)
}

func newPostgres(log *logger.Logger, dsn string, maxOpen, maxIdle int) (*PostgresService, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.NewGormAdapter(log, gormLogger.Warn, time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	log.Info("connected to postgres")
	return &PostgresService{db: db, log: log}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }
