package filters

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse converts the dict form of a filter into a Filter:
//
//	{"field": "meta.genre", "operator": "==", "value": "news"}
//	{"operator": "AND", "conditions": [ ... ]}
//
// The top level must carry "operator" or "conditions". A nil or empty map
// yields a nil Filter.
func Parse(m map[string]any) (Filter, error) {
	if len(m) == 0 {
		return nil, nil
	}
	_, hasOperator := m["operator"]
	_, hasConditions := m["conditions"]
	if !hasOperator && !hasConditions {
		return nil, fmt.Errorf("%w: top level must contain 'operator' or 'conditions'", ErrInvalidFilter)
	}
	return parseNode(m)
}

// ParseJSON parses the JSON dict form. "null", "{}" and empty input yield
// a nil Filter.
func ParseJSON(data []byte) (Filter, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	normalized, _ := normalizeNumbers(m).(map[string]any)
	return Parse(normalized)
}

func parseNode(m map[string]any) (Filter, error) {
	if _, ok := m["field"]; ok {
		return parseComparison(m)
	}
	return parseLogical(m)
}

func parseComparison(m map[string]any) (Filter, error) {
	field, ok := m["field"].(string)
	if !ok || field == "" {
		return nil, fmt.Errorf("%w: 'field' must be a non-empty string", ErrInvalidFilter)
	}
	operator, ok := m["operator"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: comparison on %q is missing 'operator'", ErrInvalidFilter, field)
	}
	value, ok := m["value"]
	if !ok {
		return nil, fmt.Errorf("%w: comparison on %q is missing 'value'", ErrInvalidFilter, field)
	}
	return NewComparison(field, operator, value)
}

func parseLogical(m map[string]any) (Filter, error) {
	operator, ok := m["operator"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: logical condition is missing 'operator'", ErrInvalidFilter)
	}
	op, err := ParseLogicalOperator(operator)
	if err != nil {
		return nil, err
	}

	raw, ok := m["conditions"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: 'conditions' must be a list of filter dictionaries", ErrInvalidFilter)
	}

	conditions := make([]Filter, 0, len(raw))
	for _, r := range raw {
		cm, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: 'conditions' must be a list of filter dictionaries", ErrInvalidFilter)
		}
		c, err := parseNode(cm)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	return Logical{Operator: op, Conditions: conditions}, nil
}

// ToMap renders f in the dict form accepted by Parse. A nil Filter gives
// a nil map.
func ToMap(f Filter) map[string]any {
	switch v := f.(type) {
	case nil:
		return nil
	case Comparison:
		return map[string]any{
			"field":    v.Field,
			"operator": string(v.Operator),
			"value":    v.Value,
		}
	case *Comparison:
		return ToMap(*v)
	case Logical:
		conditions := make([]any, 0, len(v.Conditions))
		for _, c := range v.Conditions {
			conditions = append(conditions, ToMap(c))
		}
		return map[string]any{
			"operator":   string(v.Operator),
			"conditions": conditions,
		}
	case *Logical:
		return ToMap(*v)
	default:
		return nil
	}
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}
