package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/Aleph-Alpha/docstore/v1/filters"
)

// TranslateFilter converts f into a gorm expression over the mapped model.
// AND and OR groups keep their structure, NOT negates the conjunction of
// its conditions. A nil filter yields a nil expression.
//
// Fields resolve as follows:
//
//	id, content, ...        the mapped column
//	meta.a.b / meta__a__b   jsonb path a,b inside the meta column
//	<col>.a                 jsonb path inside any other jsonb column
//	<col>                   any other column of the model
func TranslateFilter(m *Mapping, f filters.Filter) (clause.Expression, error) {
	if f == nil {
		return nil, nil
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return m.translate(f)
}

func (m *Mapping) translate(f filters.Filter) (clause.Expression, error) {
	switch v := f.(type) {
	case filters.Comparison:
		return m.translateComparison(v)
	case *filters.Comparison:
		return m.translateComparison(*v)
	case filters.Logical:
		return m.translateLogical(v)
	case *filters.Logical:
		return m.translateLogical(*v)
	default:
		return nil, fmt.Errorf("%w: unexpected filter type %T", filters.ErrInvalidFilter, f)
	}
}

func (m *Mapping) translateLogical(l filters.Logical) (clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(l.Conditions))
	for _, c := range l.Conditions {
		e, err := m.translate(c)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}

	switch l.Operator {
	case filters.And:
		return group{op: " AND ", exprs: exprs, empty: "TRUE"}, nil
	case filters.Or:
		return group{op: " OR ", exprs: exprs, empty: "FALSE"}, nil
	case filters.Not:
		return negation{expr: group{op: " AND ", exprs: exprs, empty: "TRUE"}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", filters.ErrUnsupportedOperator, string(l.Operator))
	}
}

// target is the left-hand side of a comparison.
type target struct {
	column clause.Column
	json   bool
	path   []string
}

// value renders the target as a jsonb (or plain) expression.
func (t target) value() clause.Expr {
	if !t.json || len(t.path) == 0 {
		return clause.Expr{SQL: "?", Vars: []interface{}{t.column}}
	}
	return clause.Expr{SQL: "jsonb_extract_path(" + t.placeholders() + ")", Vars: t.vars()}
}

// text renders the target as text, unwrapping json strings.
func (t target) text() clause.Expr {
	switch {
	case !t.json:
		return clause.Expr{SQL: "?", Vars: []interface{}{t.column}}
	case len(t.path) == 0:
		return clause.Expr{SQL: "? #>> '{}'", Vars: []interface{}{t.column}}
	default:
		return clause.Expr{SQL: "jsonb_extract_path_text(" + t.placeholders() + ")", Vars: t.vars()}
	}
}

func (t target) placeholders() string {
	return strings.TrimSuffix(strings.Repeat("?, ", len(t.path)+1), ", ")
}

func (t target) vars() []interface{} {
	vars := make([]interface{}, 0, len(t.path)+1)
	vars = append(vars, t.column)
	for _, p := range t.path {
		vars = append(vars, p)
	}
	return vars
}

func (m *Mapping) resolveField(name string) (target, error) {
	parts := splitFieldPath(name)
	head, path := parts[0], parts[1:]

	field := m.columns[head]
	if field == nil {
		field = m.schema.LookUpField(head)
	}
	if field == nil || field.DBName == "" {
		return target{}, fmt.Errorf("%w: unknown filter field %q", filters.ErrInvalidFilter, name)
	}

	t := target{column: clause.Column{Name: field.DBName}}
	if isJSONColumn(m, head, field) {
		t.json = true
		t.path = path
		return t, nil
	}
	if len(path) > 0 {
		return target{}, fmt.Errorf("%w: field %q is not a json column and has no keys", filters.ErrInvalidFilter, name)
	}
	return t, nil
}

func splitFieldPath(name string) []string {
	if strings.Contains(name, "__") {
		return strings.Split(name, "__")
	}
	return strings.Split(name, ".")
}

func isJSONColumn(m *Mapping, attribute string, f *schema.Field) bool {
	if jsonFields[attribute] && m.columns[attribute] == f {
		return true
	}
	dataType := strings.ToLower(string(f.DataType))
	return dataType == "jsonb" || dataType == "json"
}

func (m *Mapping) translateComparison(c filters.Comparison) (clause.Expression, error) {
	t, err := m.resolveField(c.Field)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case filters.OpEq:
		return equal(t, c.Value)
	case filters.OpNe:
		return notEqual(t, c.Value)
	case filters.OpGt, filters.OpGte, filters.OpLt, filters.OpLte:
		return compare(t, c)
	case filters.OpIn, filters.OpNotIn:
		values, _ := filters.ListValues(c.Value)
		return membership(t, values, c.Operator == filters.OpNotIn)
	default:
		return nil, fmt.Errorf("%w: %q", filters.ErrUnsupportedOperator, string(c.Operator))
	}
}

func equal(t target, value any) (clause.Expression, error) {
	if !t.json {
		if _, ok := filters.ListValues(value); ok && !isBytes(value) {
			return nil, fmt.Errorf("%w: operator \"==\" on column %q does not take a list, use \"in\"", filters.ErrInvalidFilter, t.column.Name)
		}
		return clause.Eq{Column: t.column, Value: value}, nil
	}
	lhs := t.value()
	if value == nil {
		return clause.Expr{SQL: "(? IS NULL OR ? = 'null'::jsonb)", Vars: []interface{}{lhs, lhs}}, nil
	}
	raw, err := jsonLiteral(value)
	if err != nil {
		return nil, err
	}
	return clause.Expr{SQL: "? = ?::jsonb", Vars: []interface{}{lhs, raw}}, nil
}

func notEqual(t target, value any) (clause.Expression, error) {
	if !t.json {
		if _, ok := filters.ListValues(value); ok && !isBytes(value) {
			return nil, fmt.Errorf("%w: operator \"!=\" on column %q does not take a list, use \"not in\"", filters.ErrInvalidFilter, t.column.Name)
		}
		if value == nil {
			return clause.Expr{SQL: "? IS NOT NULL", Vars: []interface{}{t.column}}, nil
		}
		return clause.Expr{SQL: "? IS DISTINCT FROM ?", Vars: []interface{}{t.column, value}}, nil
	}
	lhs := t.value()
	if value == nil {
		return clause.Expr{SQL: "(? IS NOT NULL AND ? <> 'null'::jsonb)", Vars: []interface{}{lhs, lhs}}, nil
	}
	raw, err := jsonLiteral(value)
	if err != nil {
		return nil, err
	}
	return clause.Expr{SQL: "? IS DISTINCT FROM ?::jsonb", Vars: []interface{}{lhs, raw}}, nil
}

var sqlOperators = map[filters.Operator]string{
	filters.OpGt:  ">",
	filters.OpGte: ">=",
	filters.OpLt:  "<",
	filters.OpLte: "<=",
}

// compare renders range comparisons. Numbers compare as numeric, dates
// and ISO-8601 strings as timestamptz; nil never matches.
func compare(t target, c filters.Comparison) (clause.Expression, error) {
	if c.Value == nil {
		return clause.Expr{SQL: "FALSE"}, nil
	}
	op := sqlOperators[c.Operator]

	if isNumber(c.Value) {
		if !t.json {
			return clause.Expr{SQL: "? " + op + " ?", Vars: []interface{}{t.column, c.Value}}, nil
		}
		typed := clause.Expr{
			SQL:  "CASE WHEN jsonb_typeof(?) = 'number' THEN (?)::numeric END",
			Vars: []interface{}{t.value(), t.text()},
		}
		return clause.Expr{SQL: "? " + op + " ?", Vars: []interface{}{typed, c.Value}}, nil
	}

	ts, ok := asTime(c.Value)
	if !ok {
		return nil, fmt.Errorf("%w: operator %q on field %q requires a number or a date, got %T",
			filters.ErrInvalidFilter, c.Operator, c.Field, c.Value)
	}
	if !t.json {
		return clause.Expr{SQL: "? " + op + " ?", Vars: []interface{}{t.column, ts}}, nil
	}
	return clause.Expr{
		SQL:  "(?)::timestamptz " + op + " ?::timestamptz",
		Vars: []interface{}{t.text(), ts},
	}, nil
}

// membership renders in / not in. Rows without the field match not in.
func membership(t target, values []any, negate bool) (clause.Expression, error) {
	if len(values) == 0 {
		if negate {
			return clause.Expr{SQL: "TRUE"}, nil
		}
		return clause.Expr{SQL: "FALSE"}, nil
	}

	var list clause.Expr
	if t.json {
		vars := make([]interface{}, 0, len(values))
		for _, v := range values {
			raw, err := jsonLiteral(v)
			if err != nil {
				return nil, err
			}
			vars = append(vars, raw)
		}
		list = clause.Expr{
			SQL:  "(" + strings.TrimSuffix(strings.Repeat("?::jsonb, ", len(vars)), ", ") + ")",
			Vars: vars,
		}
	} else {
		list = clause.Expr{
			SQL:  "(" + strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ") + ")",
			Vars: values,
		}
	}

	lhs := t.value()
	if negate {
		return clause.Expr{SQL: "(? IS NULL OR ? NOT IN ?)", Vars: []interface{}{lhs, lhs, list}}, nil
	}
	return clause.Expr{SQL: "? IN ?", Vars: []interface{}{lhs, list}}, nil
}

func jsonLiteral(v any) (string, error) {
	if t, ok := v.(time.Time); ok {
		v = t.Format(time.RFC3339Nano)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: value %v cannot be compared as json: %w", filters.ErrInvalidFilter, v, err)
	}
	return string(raw), nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isBytes(v any) bool {
	_, ok := v.([]byte)
	return ok
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// group joins expressions with op and always parenthesises, so nesting
// never depends on gorm's single-expression shortcuts.
type group struct {
	op    string
	exprs []clause.Expression
	empty string
}

func (g group) Build(builder clause.Builder) {
	switch len(g.exprs) {
	case 0:
		builder.WriteString(g.empty)
	case 1:
		g.exprs[0].Build(builder)
	default:
		builder.WriteByte('(')
		for i, e := range g.exprs {
			if i > 0 {
				builder.WriteString(g.op)
			}
			e.Build(builder)
		}
		builder.WriteByte(')')
	}
}

type negation struct {
	expr clause.Expression
}

func (n negation) Build(builder clause.Builder) {
	builder.WriteString("NOT (")
	n.expr.Build(builder)
	builder.WriteByte(')')
}
