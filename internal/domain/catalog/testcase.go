package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

// Testcase is a set of replicas; a nil ProfileID marks it as shared.
type Testcase struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	base.Timestamps
	base.Versioned
	ProfileID   *uuid.UUID                  `gorm:"type:uuid;column:profile_id;index" json:"profile_id"`
	Title       string                      `gorm:"column:title;type:text;not null" json:"title"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Replicas    datatypes.JSONSlice[string] `gorm:"column:replicas" json:"replicas"`
	IsCommon    bool                        `gorm:"column:is_common;not null" json:"is_common"`
	Author      int64                       `gorm:"column:author;not null" json:"author"`
}

func (Testcase) TableName() string { return "testcase" }

func (t *Testcase) PrimaryKey() base.Key { return base.ID(t.ID) }

func (t *Testcase) MintKey() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}
