// Package observability defines the hook that storage components use to report
// completed operations to metrics, tracing, or audit backends.
//
// Components accept an optional Observer and call it once per operation after
// the operation finished. A nil Observer is valid and disables reporting.
package observability

import "time"

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "docstore".
	Component string

	// Operation is the operation name, e.g. "write_documents".
	Operation string

	// Resource is the primary object the operation touched (table name).
	Resource string

	// SubResource carries extra context such as the ranking function.
	SubResource string

	// Duration is the wall time of the operation.
	Duration time.Duration

	// Error is the error returned to the caller, if any.
	Error error

	// Size is the number of documents affected or returned.
	Size int64

	// Metadata holds operation specific attributes.
	Metadata map[string]interface{}
}

// Observer receives OperationContext values. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Status returns "success" or "error" depending on ctx.Error.
func (ctx OperationContext) Status() string {
	if ctx.Error != nil {
		return "error"
	}
	return "success"
}
