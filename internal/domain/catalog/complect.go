package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

// Complect groups profiles into a deployable set.
type Complect struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	base.Timestamps
	base.Versioned
	State          string                         `gorm:"column:state;not null" json:"state"`
	ProfileIDs     datatypes.JSONSlice[uuid.UUID] `gorm:"column:profile_ids" json:"profile_ids"`
	Name           string                         `gorm:"column:name;not null" json:"name"`
	Code           string                         `gorm:"column:code;not null;index" json:"code"`
	Meta           datatypes.JSONMap              `gorm:"column:meta" json:"meta"`
	IsEnabled      bool                           `gorm:"column:is_enabled;not null" json:"is_enabled"`
	CompilerTarget string                         `gorm:"column:compiler_target;not null" json:"compiler_target"`
	DebugTarget    string                         `gorm:"column:debug_target;not null" json:"debug_target"`
	DeployTarget   string                         `gorm:"column:deploy_target;not null" json:"deploy_target"`
}

func (Complect) TableName() string { return "complects" }

func (c *Complect) PrimaryKey() base.Key { return base.ID(c.ID) }

func (c *Complect) MintKey() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
}

// HasProfile reports whether id is a member.
func (c *Complect) HasProfile(id uuid.UUID) bool {
	for _, p := range c.ProfileIDs {
		if p == id {
			return true
		}
	}
	return false
}

// AddProfile appends id unless already present.
func (c *Complect) AddProfile(id uuid.UUID) bool {
	if c.HasProfile(id) {
		return false
	}
	c.ProfileIDs = append(c.ProfileIDs, id)
	return true
}

// RemoveProfile drops every occurrence of id.
func (c *Complect) RemoveProfile(id uuid.UUID) bool {
	kept := c.ProfileIDs[:0]
	removed := false
	for _, p := range c.ProfileIDs {
		if p == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	c.ProfileIDs = kept
	return removed
}
