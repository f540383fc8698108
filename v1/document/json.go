package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a map column stored as jsonb.
type JSONMap map[string]any

// Value implements driver.Valuer. A nil map is stored as '{}'.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json map: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to unmarshal json map: %w", err)
	}
	*m = out
	return nil
}

// GormDataType tells gorm the column type for migrations.
func (JSONMap) GormDataType() string {
	return "jsonb"
}

// JSONValue is a nullable jsonb column holding raw JSON.
type JSONValue json.RawMessage

// Value implements driver.Valuer. An empty value is stored as NULL.
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	if !json.Valid(v) {
		return nil, fmt.Errorf("invalid json value")
	}
	return string(v), nil
}

// Scan implements sql.Scanner.
func (v *JSONValue) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if raw == nil {
		*v = nil
		return nil
	}
	*v = append((*v)[:0], raw...)
	return nil
}

// GormDataType tells gorm the column type for migrations.
func (JSONValue) GormDataType() string {
	return "jsonb"
}

// MarshalJSON keeps the raw value. Empty becomes null.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON stores a copy of data.
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

func jsonBytes(src any) ([]byte, error) {
	switch s := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		out := make([]byte, len(s))
		copy(out, s)
		return out, nil
	case string:
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("unsupported json source type %T", src)
	}
}
