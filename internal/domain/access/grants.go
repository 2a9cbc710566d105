package access

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
)

// UserProfileKey is the (user_id, profile_id) primary key.
type UserProfileKey struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
}

func (k UserProfileKey) Columns() []string { return []string{"user_id", "profile_id"} }
func (k UserProfileKey) Values() []any     { return []any{k.UserID, k.ProfileID} }
func (k UserProfileKey) String() string    { return base.FormatTuple(k.UserID, k.ProfileID) }

func (k UserProfileKey) Compare(o UserProfileKey) int {
	if c := base.CompareUUID(k.UserID, o.UserID); c != 0 {
		return c
	}
	return base.CompareUUID(k.ProfileID, o.ProfileID)
}

// UserProfileGrant gives a user access to a profile with a permissions payload.
type UserProfileGrant struct {
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;primaryKey" json:"user_id"`
	ProfileID uuid.UUID `gorm:"type:uuid;column:profile_id;primaryKey;index" json:"profile_id"`
	base.Versioned
	Permissions datatypes.JSONMap `gorm:"column:permissions" json:"permissions"`
}

func (UserProfileGrant) TableName() string { return "access_profile_user" }

func (g *UserProfileGrant) PrimaryKey() base.Key {
	return UserProfileKey{UserID: g.UserID, ProfileID: g.ProfileID}
}

// AccountProfileKey is the (account_id, profile_id) primary key.
type AccountProfileKey struct {
	AccountID uuid.UUID
	ProfileID uuid.UUID
}

func (k AccountProfileKey) Columns() []string { return []string{"account_id", "profile_id"} }
func (k AccountProfileKey) Values() []any     { return []any{k.AccountID, k.ProfileID} }
func (k AccountProfileKey) String() string    { return base.FormatTuple(k.AccountID, k.ProfileID) }

func (k AccountProfileKey) Compare(o AccountProfileKey) int {
	if c := base.CompareUUID(k.AccountID, o.AccountID); c != 0 {
		return c
	}
	return base.CompareUUID(k.ProfileID, o.ProfileID)
}

type AccountProfileGrant struct {
	AccountID uuid.UUID `gorm:"type:uuid;column:account_id;primaryKey" json:"account_id"`
	ProfileID uuid.UUID `gorm:"type:uuid;column:profile_id;primaryKey;index" json:"profile_id"`
}

func (AccountProfileGrant) TableName() string { return "access_profile_account" }

func (g *AccountProfileGrant) PrimaryKey() base.Key {
	return AccountProfileKey{AccountID: g.AccountID, ProfileID: g.ProfileID}
}

// AccountComplectKey is the (account_id, complect_id) primary key.
type AccountComplectKey struct {
	AccountID  uuid.UUID
	ComplectID uuid.UUID
}

func (k AccountComplectKey) Columns() []string { return []string{"account_id", "complect_id"} }
func (k AccountComplectKey) Values() []any     { return []any{k.AccountID, k.ComplectID} }
func (k AccountComplectKey) String() string    { return base.FormatTuple(k.AccountID, k.ComplectID) }

func (k AccountComplectKey) Compare(o AccountComplectKey) int {
	if c := base.CompareUUID(k.AccountID, o.AccountID); c != 0 {
		return c
	}
	return base.CompareUUID(k.ComplectID, o.ComplectID)
}

type AccountComplectGrant struct {
	AccountID  uuid.UUID `gorm:"type:uuid;column:account_id;primaryKey" json:"account_id"`
	ComplectID uuid.UUID `gorm:"type:uuid;column:complect_id;primaryKey;index" json:"complect_id"`
}

func (AccountComplectGrant) TableName() string { return "access_complect_account" }

func (g *AccountComplectGrant) PrimaryKey() base.Key {
	return AccountComplectKey{AccountID: g.AccountID, ComplectID: g.ComplectID}
}

// UserFlags holds global flags such as sys_admin and acc_admin.
type UserFlags struct {
	UserID uuid.UUID `gorm:"type:uuid;column:user_id;primaryKey" json:"user_id"`
	base.Versioned
	Flags datatypes.JSONMap `gorm:"column:flags" json:"flags"`
}

func (UserFlags) TableName() string { return "access_user_flags" }

func (f *UserFlags) PrimaryKey() base.Key {
	return base.Scalar[uuid.UUID]{Column: "user_id", Value: f.UserID}
}

// Flag reads a boolean flag; anything but a stored true is false.
func (f *UserFlags) Flag(name string) bool {
	if f == nil {
		return false
	}
	v, ok := f.Flags[name].(bool)
	return ok && v
}
