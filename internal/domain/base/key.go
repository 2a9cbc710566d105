package base

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Key identifies one row. Columns and Values are positionally paired and
// their order is the declared primary-key order of the table.
type Key interface {
	Columns() []string
	Values() []any
	String() string
}

// Scalar is a single-column key.
type Scalar[V comparable] struct {
	Column string
	Value  V
}

func (k Scalar[V]) Columns() []string { return []string{k.Column} }
func (k Scalar[V]) Values() []any     { return []any{k.Value} }
func (k Scalar[V]) String() string    { return fmt.Sprint(k.Value) }

// ID is the common "id uuid" primary key.
func ID(v uuid.UUID) Scalar[uuid.UUID] {
	return Scalar[uuid.UUID]{Column: "id", Value: v}
}

// IDs converts a slice of uuids into keys.
func IDs(ids []uuid.UUID) []Key {
	out := make([]Key, 0, len(ids))
	for _, id := range ids {
		out = append(out, ID(id))
	}
	return out
}

// CompareUUID orders uuids bytewise.
func CompareUUID(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// FormatTuple renders a composite key as "(a, b)".
func FormatTuple(vals ...any) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, fmt.Sprint(v))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
