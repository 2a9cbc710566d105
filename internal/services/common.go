package services

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/yungbote/arm-gateway/internal/domain/base"
	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
)

// applyState validates and assigns an optional lifecycle state.
func applyState(dst *string, src *string) error {
	if src == nil {
		return nil
	}
	if !base.ValidState(*src) {
		return pkgerrors.Validation("INVALID_STATE", fmt.Sprintf("state must be %q or %q, got %q", base.StateActive, base.StateInactive, *src))
	}
	*dst = *src
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setMeta(dst *datatypes.JSONMap, src datatypes.JSONMap) {
	if src != nil {
		*dst = src
	}
}

func emptyMeta() datatypes.JSONMap { return datatypes.JSONMap{} }
