package watcher

import "context"

// Watcher monitors a local uploads directory and reports jobs whose audio
// uploads have settled.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once per settled job with its summaryId.
type EventHandler func(ctx context.Context, jobID string) error
