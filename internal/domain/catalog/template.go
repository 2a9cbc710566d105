package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

// Template is an ordered child of a Suite. (suite_id, position) is unique.
type Template struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SuiteID uuid.UUID `gorm:"type:uuid;column:suite_id;not null;uniqueIndex:suite_id_positions,priority:1" json:"suite_id"`
	base.Timestamps
	base.Versioned
	Position     int               `gorm:"column:position;not null;uniqueIndex:suite_id_positions,priority:2" json:"position"`
	State        string            `gorm:"column:state;not null" json:"state"`
	Content      string            `gorm:"column:content;type:text;not null" json:"content"`
	IsEnabled    bool              `gorm:"column:is_enabled;not null" json:"is_enabled"`
	IsCompilable bool              `gorm:"column:is_compilable;not null" json:"is_compilable"`
	Meta         datatypes.JSONMap `gorm:"column:meta" json:"meta"`
}

func (Template) TableName() string { return "templates" }

func (t *Template) PrimaryKey() base.Key { return base.ID(t.ID) }

func (t *Template) MintKey() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}
