package records

import "context"

type implNoop struct{}

// NewNoop creates a Store that discards records.
func NewNoop() Store {
	return implNoop{}
}

func (implNoop) Put(ctx context.Context, rec Record) error {
	return nil
}
