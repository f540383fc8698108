package filters

// Eq matches field == value.
func Eq(field string, value any) Comparison {
	return Comparison{Field: field, Operator: OpEq, Value: value}
}

// Ne matches field != value.
func Ne(field string, value any) Comparison {
	return Comparison{Field: field, Operator: OpNe, Value: value}
}

// Gt matches field > value.
func Gt(field string, value any) Comparison {
	return Comparison{Field: field, Operator: OpGt, Value: value}
}

// Gte matches field >= value.
func Gte(field string, value any) Comparison {
	return Comparison{Field: field, Operator: OpGte, Value: value}
}

// Lt matches field < value.
func Lt(field string, value any) Comparison {
	return Comparison{Field: field, Operator: OpLt, Value: value}
}

// Lte matches field <= value.
func Lte(field string, value any) Comparison {
	return Comparison{Field: field, Operator: OpLte, Value: value}
}

// In matches when field equals any of values.
func In(field string, values ...any) Comparison {
	if values == nil {
		values = []any{}
	}
	return Comparison{Field: field, Operator: OpIn, Value: values}
}

// NotIn matches when field equals none of values.
func NotIn(field string, values ...any) Comparison {
	if values == nil {
		values = []any{}
	}
	return Comparison{Field: field, Operator: OpNotIn, Value: values}
}

// AllOf is the conjunction of conditions.
func AllOf(conditions ...Filter) Logical {
	return Logical{Operator: And, Conditions: conditions}
}

// AnyOf is the disjunction of conditions.
func AnyOf(conditions ...Filter) Logical {
	return Logical{Operator: Or, Conditions: conditions}
}

// NoneOf negates the conjunction of conditions.
func NoneOf(conditions ...Filter) Logical {
	return Logical{Operator: Not, Conditions: conditions}
}

// NewComparison builds and validates a comparison from an operator name.
func NewComparison(field, operator string, value any) (Comparison, error) {
	op, err := ParseOperator(operator)
	if err != nil {
		return Comparison{}, err
	}
	c := Comparison{Field: field, Operator: op, Value: value}
	if err := c.Validate(); err != nil {
		return Comparison{}, err
	}
	return c, nil
}

// NewLogical builds and validates a logical group from an operator name.
func NewLogical(operator string, conditions ...Filter) (Logical, error) {
	op, err := ParseLogicalOperator(operator)
	if err != nil {
		return Logical{}, err
	}
	l := Logical{Operator: op, Conditions: conditions}
	if err := l.Validate(); err != nil {
		return Logical{}, err
	}
	return l, nil
}
