package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

type Suite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	base.Timestamps
	base.Versioned
	State     string            `gorm:"column:state;not null" json:"state"`
	Title     string            `gorm:"column:title;not null" json:"title"`
	IsEnabled bool              `gorm:"column:is_enabled;not null" json:"is_enabled"`
	Hidden    bool              `gorm:"column:hidden;not null" json:"hidden"`
	Meta      datatypes.JSONMap `gorm:"column:meta" json:"meta"`
}

func (Suite) TableName() string { return "suites" }

func (s *Suite) PrimaryKey() base.Key { return base.ID(s.ID) }

func (s *Suite) MintKey() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
}

// SuiteStat is attached to listed suites.
type SuiteStat struct {
	Templates int64 `json:"templates"`
}

// SuiteView is a listed suite with its template count.
type SuiteView struct {
	*Suite
	Stat SuiteStat `json:"stat"`
}
