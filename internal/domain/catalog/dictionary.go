package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

const DefaultDictionaryKind = "match"

// Dictionary writes are mirrored into DictionaryVersion.
type Dictionary struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	base.Timestamps
	base.Versioned
	State       string                         `gorm:"column:state;not null" json:"state"`
	Kind        string                         `gorm:"column:kind;not null" json:"kind"`
	Code        string                         `gorm:"column:title;not null;index" json:"code"`
	Description string                         `gorm:"column:description;type:text;not null" json:"description"`
	Content     string                         `gorm:"column:content;type:text;not null" json:"content"`
	Common      bool                           `gorm:"column:common;not null" json:"common"`
	Hidden      bool                           `gorm:"column:hidden;not null" json:"hidden"`
	Meta        datatypes.JSONMap              `gorm:"column:meta" json:"meta"`
	ProfileIDs  datatypes.JSONSlice[uuid.UUID] `gorm:"column:profile_ids" json:"profile_ids"`
	IsEnabled   bool                           `gorm:"column:is_enabled;not null" json:"is_enabled"`
	Parts       datatypes.JSONMap              `gorm:"column:parts" json:"parts"`
}

func (Dictionary) TableName() string { return "dictionaries" }

func (d *Dictionary) PrimaryKey() base.Key { return base.ID(d.ID) }

func (d *Dictionary) MintKey() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
}

// DictionarySummary is the listing form without content.
type DictionarySummary struct {
	ID          uuid.UUID                      `json:"id"`
	Version     int64                          `json:"version"`
	State       string                         `json:"state"`
	Kind        string                         `json:"kind"`
	Code        string                         `json:"code"`
	Description string                         `json:"description"`
	Common      bool                           `json:"common"`
	Hidden      bool                           `json:"hidden"`
	Meta        datatypes.JSONMap              `json:"meta"`
	ProfileIDs  datatypes.JSONSlice[uuid.UUID] `json:"profile_ids"`
	IsEnabled   bool                           `json:"is_enabled"`
	Parts       datatypes.JSONMap              `json:"parts"`
}

func (d *Dictionary) Summary() DictionarySummary {
	return DictionarySummary{
		ID:          d.ID,
		Version:     d.Version,
		State:       d.State,
		Kind:        d.Kind,
		Code:        d.Code,
		Description: d.Description,
		Common:      d.Common,
		Hidden:      d.Hidden,
		Meta:        d.Meta,
		ProfileIDs:  d.ProfileIDs,
		IsEnabled:   d.IsEnabled,
		Parts:       d.Parts,
	}
}

// DictionaryVersion is an immutable snapshot of a Dictionary write.
type DictionaryVersion struct {
	VersionID    uuid.UUID `gorm:"type:uuid;column:version_id;primaryKey" json:"version_id"`
	DictionaryID uuid.UUID `gorm:"type:uuid;column:id;not null;index" json:"id"`
	base.Timestamps
	Version     int64                          `gorm:"column:version;not null;index" json:"version"`
	State       string                         `gorm:"column:state" json:"state"`
	Kind        string                         `gorm:"column:kind" json:"kind"`
	Code        string                         `gorm:"column:title" json:"code"`
	Description string                         `gorm:"column:description;type:text" json:"description"`
	Content     string                         `gorm:"column:content;type:text" json:"content"`
	Common      bool                           `gorm:"column:common" json:"common"`
	Hidden      bool                           `gorm:"column:hidden" json:"hidden"`
	Meta        datatypes.JSONMap              `gorm:"column:meta" json:"meta"`
	ProfileIDs  datatypes.JSONSlice[uuid.UUID] `gorm:"column:profile_ids" json:"profile_ids"`
	IsEnabled   bool                           `gorm:"column:is_enabled" json:"is_enabled"`
	Parts       datatypes.JSONMap              `gorm:"column:parts" json:"parts"`
}

func (DictionaryVersion) TableName() string { return "dictionaries_versions" }

func (v *DictionaryVersion) PrimaryKey() base.Key {
	return base.Scalar[uuid.UUID]{Column: "version_id", Value: v.VersionID}
}

func (v *DictionaryVersion) MintKey() {
	if v.VersionID == uuid.Nil {
		v.VersionID = uuid.New()
	}
}

// SnapshotDictionary copies every field of d into a new history row.
func SnapshotDictionary(d *Dictionary) *DictionaryVersion {
	return &DictionaryVersion{
		VersionID:    uuid.New(),
		DictionaryID: d.ID,
		Timestamps:   d.Timestamps,
		Version:      d.Version,
		State:        d.State,
		Kind:         d.Kind,
		Code:         d.Code,
		Description:  d.Description,
		Content:      d.Content,
		Common:       d.Common,
		Hidden:       d.Hidden,
		Meta:         cloneMap(d.Meta),
		ProfileIDs:   append(datatypes.JSONSlice[uuid.UUID](nil), d.ProfileIDs...),
		IsEnabled:    d.IsEnabled,
		Parts:        cloneMap(d.Parts),
	}
}

func cloneMap(m datatypes.JSONMap) datatypes.JSONMap {
	if m == nil {
		return nil
	}
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
