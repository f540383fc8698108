package embedding

import "errors"

var (
	ErrMissingEndpoint = errors.New("embedding: missing endpoint")
	ErrMissingModel    = errors.New("embedding: missing model")
	ErrUnexpectedReply = errors.New("embedding: unexpected response")
)
