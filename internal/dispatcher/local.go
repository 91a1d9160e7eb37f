package dispatcher

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

// ErrClosed is returned by Local.Dispatch once Wait has been called.
var ErrClosed = errors.New("dispatcher: closed")

// RunFunc executes one dispatched payload.
type RunFunc func(ctx context.Context, payload []byte) error

// Local runs payloads in background goroutines of the current process.
type Local struct {
	run    RunFunc
	logger logger.Logger
	base   context.Context
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewLocal creates a Local dispatcher. Runs use base as their parent context,
// so they outlive the request that triggered them.
func NewLocal(base context.Context, run RunFunc, log logger.Logger) *Local {
	return &Local{run: run, logger: log, base: base}
}

func (d *Local) Dispatch(ctx context.Context, payload []byte) error {
	body := append([]byte(nil), payload...)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		if err := d.run(d.base, body); err != nil {
			d.logger.Error(d.base, "Dispatched run failed: %v", err)
		}
	}()
	return nil
}

// Wait stops accepting dispatches and blocks until every dispatched run has
// returned.
func (d *Local) Wait() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}
