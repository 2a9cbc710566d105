package base

import "time"

// Versioned is embedded by entities whose writes bump a version counter.
type Versioned struct {
	Version int64 `gorm:"column:version;not null" json:"version"`
}

func (v *Versioned) GetVersion() int64   { return v.Version }
func (v *Versioned) SetVersion(n int64) { v.Version = n }

// Element states.
const (
	StateActive   = "active"
	StateInactive = "inactive"
)

func ValidState(s string) bool {
	return s == StateActive || s == StateInactive
}

// Timestamps maps the created/updated columns shared by catalog tables.
type Timestamps struct {
	CreatedAt time.Time `gorm:"column:created;autoCreateTime" json:"created"`
	UpdatedAt time.Time `gorm:"column:updated;autoUpdateTime" json:"updated"`
}
