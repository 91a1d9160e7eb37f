package processor

import "context"

// semaphore bounds how many objects of one job are transcribed at once
type semaphore struct {
	ch chan struct{}
}

// newSemaphore creates a semaphore with the given capacity, at least 1
func newSemaphore(capacity int) *semaphore {
	if capacity < 1 {
		capacity = 1
	}
	return &semaphore{
		ch: make(chan struct{}, capacity),
	}
}

// acquire acquires a slot, blocking until one is free or ctx is done
func (s *semaphore) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release releases a semaphore slot
func (s *semaphore) release() {
	<-s.ch
}
