package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

type Profile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	base.Timestamps
	base.Versioned
	State     string            `gorm:"column:state;not null" json:"state"`
	Name      string            `gorm:"column:name;not null" json:"name"`
	Code      string            `gorm:"column:code;not null;index" json:"code"`
	Common    bool              `gorm:"column:common;not null" json:"common"`
	Meta      datatypes.JSONMap `gorm:"column:meta" json:"meta"`
	IsEnabled bool              `gorm:"column:is_enabled;not null" json:"is_enabled"`
	EngineID  int64             `gorm:"column:engine_id;not null" json:"engine_id"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) PrimaryKey() base.Key { return base.ID(p.ID) }

func (p *Profile) MintKey() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
}

// ProfileView is a listed profile with the caller's permission overlay.
type ProfileView struct {
	*Profile
	Permissions map[string]bool `json:"permissions"`
}
