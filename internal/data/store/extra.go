package store

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ExtraInt decodes an aggregate extra column. Drivers hand these back as
// int64, float64, []byte or string depending on dialect.
func (r Row[T]) ExtraInt(alias string) (int64, error) {
	switch v := r.Extra[alias].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("extra %q: unexpected %T", alias, v)
	}
}

// ExtraMap decodes a JSON object extra column; NULL yields nil.
func (r Row[T]) ExtraMap(alias string) (map[string]any, error) {
	var raw []byte
	switch v := r.Extra[alias].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, fmt.Errorf("extra %q: unexpected %T", alias, v)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("extra %q: %w", alias, err)
	}
	return out, nil
}
