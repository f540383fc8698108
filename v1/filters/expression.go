package filters

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Expression wraps a Filter so it can live in JSON and YAML config
// structs. The zero value holds no filter.
type Expression struct {
	Filter Filter
}

// IsZero reports whether no filter is set. yaml.v3 uses it for omitempty.
func (e Expression) IsZero() bool {
	return e.Filter == nil
}

func (e Expression) MarshalJSON() ([]byte, error) {
	if e.Filter == nil {
		return []byte("null"), nil
	}
	return json.Marshal(ToMap(e.Filter))
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	f, err := ParseJSON(data)
	if err != nil {
		return err
	}
	e.Filter = f
	return nil
}

func (e Expression) MarshalYAML() (interface{}, error) {
	if e.Filter == nil {
		return nil, nil
	}
	return ToMap(e.Filter), nil
}

func (e *Expression) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	f, err := Parse(m)
	if err != nil {
		return err
	}
	e.Filter = f
	return nil
}
