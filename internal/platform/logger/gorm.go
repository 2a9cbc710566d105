package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes GORM's SQL logging through the zap logger.
type GormAdapter struct {
	log           *Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormAdapter(log *Logger, level gormlogger.LogLevel, slow time.Duration) *GormAdapter {
	return &GormAdapter{log: log.With("component", "gorm"), level: level, slowThreshold: slow}
}

func (g *GormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormAdapter) Info(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.log.SugaredLogger.Infof(msg, args...)
	}
}

func (g *GormAdapter) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.log.SugaredLogger.Warnf(msg, args...)
	}
}

func (g *GormAdapter) Error(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.log.SugaredLogger.Errorf(msg, args...)
	}
}

func (g *GormAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Error("sql failed", "error", err, "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("slow sql", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("sql", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	}
}
