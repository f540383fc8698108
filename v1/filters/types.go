package filters

import (
	"fmt"
	"reflect"
	"strings"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEq    Operator = "=="
	OpNe    Operator = "!="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpIn    Operator = "in"
	OpNotIn Operator = "not in"
)

// LogicalOperator combines conditions.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
	Not LogicalOperator = "NOT"
)

// Filter is either a Comparison or a Logical group.
type Filter interface {
	// Validate checks operators and value shapes recursively.
	Validate() error

	isFilter()
}

// Comparison is a leaf condition: Field Operator Value.
type Comparison struct {
	Field    string
	Operator Operator
	Value    any
}

func (Comparison) isFilter() {}

// Validate checks the operator and, for in/not in, that Value is a list.
func (c Comparison) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("%w: comparison without field", ErrInvalidFilter)
	}
	switch c.Operator {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
		return nil
	case OpIn, OpNotIn:
		if !isList(c.Value) {
			return fmt.Errorf("%w: operator %q on field %q requires a list value, got %T",
				ErrInvalidFilter, c.Operator, c.Field, c.Value)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, string(c.Operator))
	}
}

// Logical groups conditions. NOT negates the conjunction of its
// conditions.
type Logical struct {
	Operator   LogicalOperator
	Conditions []Filter
}

func (Logical) isFilter() {}

// Validate checks the operator and every nested condition.
func (l Logical) Validate() error {
	switch l.Operator {
	case And, Or, Not:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, string(l.Operator))
	}
	for i, c := range l.Conditions {
		if c == nil {
			return fmt.Errorf("%w: nil condition at index %d of %s", ErrInvalidFilter, i, l.Operator)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseOperator normalises a comparison operator name.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.Join(strings.Fields(s), " ")))
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, s)
	}
}

// ParseLogicalOperator accepts AND, OR and NOT in any case.
func ParseLogicalOperator(s string) (LogicalOperator, error) {
	op := LogicalOperator(strings.ToUpper(strings.TrimSpace(s)))
	switch op {
	case And, Or, Not:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, s)
	}
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// ListValues flattens a list value into []any. It returns false when v is
// not a slice or array.
func ListValues(v any) ([]any, bool) {
	if vs, ok := v.([]any); ok {
		return vs, true
	}
	if !isList(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
