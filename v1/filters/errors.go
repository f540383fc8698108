package filters

import "errors"

var (
	// ErrUnsupportedOperator is returned for comparison or logical
	// operators outside the filter grammar.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")

	// ErrInvalidFilter is returned for malformed filters: missing keys,
	// wrong value types, empty fields.
	ErrInvalidFilter = errors.New("invalid filter")
)
