package domain

import (
	"github.com/yungbote/arm-gateway/internal/domain/access"
	"github.com/yungbote/arm-gateway/internal/domain/catalog"
)

// Models returns every persisted model in migration order.
func Models() []any {
	return []any{
		&catalog.Profile{},
		&catalog.Suite{},
		&catalog.Template{},
		&catalog.Dictionary{},
		&catalog.DictionaryVersion{},
		&catalog.Complect{},
		&catalog.Testcase{},
		&access.UserProfileGrant{},
		&access.AccountProfileGrant{},
		&access.AccountComplectGrant{},
		&access.UserFlags{},
	}
}
