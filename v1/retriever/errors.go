package retriever

import "errors"

var (
	// ErrInvalidFilterPolicy is returned for filter policies other than
	// replace and merge.
	ErrInvalidFilterPolicy = errors.New("invalid filter policy")

	// ErrInvalidTopK is returned for a negative top k.
	ErrInvalidTopK = errors.New("top_k must not be negative")

	// ErrStoreRequired is returned when a retriever is built without a
	// document store.
	ErrStoreRequired = errors.New("a document store is required")
)
