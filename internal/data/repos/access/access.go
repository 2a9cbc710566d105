package access

import (
	"gorm.io/gorm"

	"github.com/yungbote/arm-gateway/internal/data/store"
	types "github.com/yungbote/arm-gateway/internal/domain/access"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

type UserProfileGrantRepo = store.Store[types.UserProfileGrant, *types.UserProfileGrant]
type AccountProfileGrantRepo = store.Store[types.AccountProfileGrant, *types.AccountProfileGrant]
type AccountComplectGrantRepo = store.Store[types.AccountComplectGrant, *types.AccountComplectGrant]
type UserFlagsRepo = store.Store[types.UserFlags, *types.UserFlags]

func NewUserProfileGrantRepo(db *gorm.DB, baseLog *logger.Logger) *UserProfileGrantRepo {
	return store.MustNew[types.UserProfileGrant](db, baseLog.With("repo", "UserProfileGrantRepo"), store.WithEntityName("profile access"))
}

func NewAccountProfileGrantRepo(db *gorm.DB, baseLog *logger.Logger) *AccountProfileGrantRepo {
	return store.MustNew[types.AccountProfileGrant](db, baseLog.With("repo", "AccountProfileGrantRepo"), store.WithEntityName("account profile access"))
}

func NewAccountComplectGrantRepo(db *gorm.DB, baseLog *logger.Logger) *AccountComplectGrantRepo {
	return store.MustNew[types.AccountComplectGrant](db, baseLog.With("repo", "AccountComplectGrantRepo"), store.WithEntityName("account complect access"))
}

func NewUserFlagsRepo(db *gorm.DB, baseLog *logger.Logger) *UserFlagsRepo {
	return store.MustNew[types.UserFlags](db, baseLog.With("repo", "UserFlagsRepo"), store.WithEntityName("user flags"))
}
