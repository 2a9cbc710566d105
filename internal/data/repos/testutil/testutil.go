package testutil

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/arm-gateway/internal/data/db"
	"github.com/yungbote/arm-gateway/internal/domain/catalog"
	"github.com/yungbote/arm-gateway/internal/platform/dbctx"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		if os.Getenv("TEST_VERBOSE_LOGS") == "" {
			logg = logger.NewNop()
			return
		}
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database. With TEST_POSTGRES_DSN set every test
// shares one Postgres database and must isolate itself with Tx; otherwise
// each call gets a private in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		pgOnce.Do(func() {
			svc, err := dbpkg.NewPostgresFromDSN(logger.NewNop(), dsn)
			if err != nil {
				pgErr = err
				return
			}
			pgDB = svc.DB()
			pgErr = dbpkg.AutoMigrateAll(pgDB)
		})
		if pgErr != nil {
			tb.Fatalf("failed to init test db: %v", pgErr)
		}
		return pgDB
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name()) + "_" + uuid.NewString()[:8]
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// Ctx wraps tx for store and service calls.
func Ctx(tb testing.TB, tx *gorm.DB) dbctx.Context {
	tb.Helper()
	return dbctx.Context{Ctx: tb.Context(), Tx: tx}
}

func SeedProfile(tb testing.TB, tx *gorm.DB, name string) *catalog.Profile {
	tb.Helper()
	p := &catalog.Profile{ID: uuid.New(), State: "active", Name: name, Code: name, IsEnabled: true}
	p.Version = 1
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedSuite(tb testing.TB, tx *gorm.DB, profileID uuid.UUID, title string) *catalog.Suite {
	tb.Helper()
	s := &catalog.Suite{ID: uuid.New(), ProfileID: profileID, State: "active", Title: title, IsEnabled: true}
	s.Version = 1
	if err := tx.Create(s).Error; err != nil {
		tb.Fatalf("seed suite: %v", err)
	}
	return s
}

func SeedTemplate(tb testing.TB, tx *gorm.DB, suiteID uuid.UUID, position int, content string) *catalog.Template {
	tb.Helper()
	t := &catalog.Template{ID: uuid.New(), SuiteID: suiteID, Position: position, State: "active", Content: content, IsEnabled: true}
	t.Version = 1
	if err := tx.Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}

// Positions maps template content to position for one suite.
func Positions(tb testing.TB, tx *gorm.DB, suiteID uuid.UUID) map[string]int {
	tb.Helper()
	var rows []catalog.Template
	if err := tx.Where("suite_id = ?", suiteID).Order("position").Find(&rows).Error; err != nil {
		tb.Fatalf("load positions: %v", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Content] = r.Position
	}
	return out
}
