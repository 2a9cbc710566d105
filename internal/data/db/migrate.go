package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/domain"
)

// ProfileEngineSequence feeds profiles.engine_id on Postgres.
const ProfileEngineSequence = "profile_engine_id_seq"

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := ensureSequences(db); err != nil {
		return err
	}
	return ensureIndexes(db)
}

func ensureSequences(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", ProfileEngineSequence)).Error; err != nil {
		return fmt.Errorf("create sequence %s: %w", ProfileEngineSequence, err)
	}
	return nil
}

func ensureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_access_profile_user_user ON access_profile_user (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_access_profile_account_account ON access_profile_account (account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dictionaries_versions_id_version ON dictionaries_versions (id, version)`,
	}
	if db.Dialector.Name() == "postgres" {
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS idx_dictionaries_profile_ids ON dictionaries USING GIN ((profile_ids::jsonb))`,
		)
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}

// NextEngineID allocates the next profiles.engine_id inside tx. Dialects
// without sequences fall back to max+1, which is safe because writers are
// serialized there.
func NextEngineID(tx *gorm.DB) (int64, error) {
	var next int64
	var err error
	if tx.Dialector.Name() == "postgres" {
		err = tx.Raw(fmt.Sprintf("SELECT nextval('%s')", ProfileEngineSequence)).Row().Scan(&next)
	} else {
		err = tx.Raw("SELECT COALESCE(MAX(engine_id), 0) + 1 FROM profiles").Row().Scan(&next)
	}
	if err != nil {
		return 0, fmt.Errorf("next engine id: %w", err)
	}
	return next, nil
}
