package store

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query describes one filtered listing. Zero Offset/Limit mean "none".
// Order tokens are column names or extra aliases, prefixed with "-" for
// descending; the primary key is always appended as the final tie-breaker.
type Query struct {
	Where      []clause.Expression
	Offset     int
	Limit      int
	Order      []string
	Joins      []Join
	OuterJoins []Join
	GroupBy    []string
	Extras     []Extra
}

// Join is rendered as "[LEFT] JOIN <Table> ON <On>".
type Join struct {
	Table string
	On    string
	Args  []any
}

// Extra adds "<Expr> AS <Alias>" to the select list; the value reaches the
// shaper through Row.Extra[Alias].
type Extra struct {
	Expr  string
	Alias string
}

// Row is one raw listing row handed to a Shaper.
type Row[T any] struct {
	Entity *T
	Extra  map[string]any
}

// Shaper turns a raw row into its external representation.
type Shaper[T any] func(Row[T]) (any, error)

func column(name string) clause.Column {
	if table, col, ok := strings.Cut(name, "."); ok {
		return clause.Column{Table: table, Name: col}
	}
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// Eq matches column = value; a nil value renders IS NULL.
func Eq(col string, value any) clause.Expression {
	return clause.Eq{Column: column(col), Value: value}
}

func Neq(col string, value any) clause.Expression {
	return clause.Neq{Column: column(col), Value: value}
}

func Gte(col string, value any) clause.Expression {
	return clause.Gte{Column: column(col), Value: value}
}

func Gt(col string, value any) clause.Expression {
	return clause.Gt{Column: column(col), Value: value}
}

func IsNull(col string) clause.Expression {
	return clause.Eq{Column: column(col), Value: nil}
}

// In matches column IN (values...). An empty slice matches nothing.
func In[V any](col string, values []V) clause.Expression {
	if len(values) == 0 {
		return clause.Expr{SQL: "1 = 0"}
	}
	vals := make([]any, 0, len(values))
	for _, v := range values {
		vals = append(vals, v)
	}
	return clause.IN{Column: column(col), Values: vals}
}

// Raw is an escape hatch for predicates over joined tables.
func Raw(sql string, args ...any) clause.Expression {
	return clause.Expr{SQL: sql, Vars: args}
}

// JSONContains matches rows whose JSON array column holds value.
func JSONContains(col string, value any) clause.Expression {
	return jsonContains{column: column(col), value: value}
}

type jsonContains struct {
	column clause.Column
	value  any
}

func (e jsonContains) Build(builder clause.Builder) {
	stmt, ok := builder.(*gorm.Statement)
	if !ok {
		return
	}
	switch stmt.Dialector.Name() {
	case "postgres":
		raw, err := json.Marshal([]any{e.value})
		if err != nil {
			_ = stmt.AddError(err)
			return
		}
		builder.WriteQuoted(e.column)
		builder.WriteString(" @> ")
		builder.AddVar(builder, string(raw))
		builder.WriteString("::jsonb")
	default:
		builder.WriteString("EXISTS (SELECT 1 FROM json_each(")
		builder.WriteQuoted(e.column)
		builder.WriteString(") WHERE json_each.value = ")
		builder.AddVar(builder, e.value)
		builder.WriteString(")")
	}
}
