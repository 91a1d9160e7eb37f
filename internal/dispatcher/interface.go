package dispatcher

import "context"

// Dispatcher triggers a pipeline run asynchronously. Dispatch returns once the
// run has been accepted, not when it finishes.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload []byte) error
}
