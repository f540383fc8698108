package docstore

import "errors"

var (
	// ErrFieldRequired is returned when a required document field has no
	// column on the model, or a document lacks a required value.
	ErrFieldRequired = errors.New("required document field missing")

	// ErrDuplicateDocument is returned by WriteDocuments under the fail
	// policy when a document ID already exists.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrVectorFunctionRequired is returned by embedding retrieval when
	// neither the call nor the store defines a vector function.
	ErrVectorFunctionRequired = errors.New("a vector function must be provided or defined on the model")

	// ErrUnknownVectorFunction is returned for unrecognised vector
	// function names.
	ErrUnknownVectorFunction = errors.New("unknown vector function")

	// ErrUnknownModel is returned by NewFromConfig for model names that
	// were never registered.
	ErrUnknownModel = errors.New("unknown document model")

	// ErrInvalidQuery is returned for retrieval queries that cannot be
	// ranked, such as an empty query embedding.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrDocumentNotFound is returned by QuerySet.First when nothing matches.
	ErrDocumentNotFound = errors.New("document not found")
)
