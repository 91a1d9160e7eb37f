package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

type Service interface {
	Name() string
	Run(context.Context) error
}

// Group runs services until the first one fails or ctx is done, then waits
// for all of them and returns their combined errors.
type Group []Service

func (g Group) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	var wg sync.WaitGroup
	errCh := make(chan error, len(g))
	wg.Add(len(g))
	for _, s := range g {
		go func(s Service) {
			defer wg.Done()
			if err := s.Run(runCtx); err != nil {
				errCh <- fmt.Errorf("%s: %w", s.Name(), err)
				cancelFn()
			}
		}(s)
	}

	<-runCtx.Done()
	wg.Wait()

	var err error
	close(errCh)
	for srvErr := range errCh {
		err = multierror.Append(err, srvErr)
	}
	return err
}

type funcService struct {
	name string
	run  func(context.Context) error
}

// Func wraps run as a Service. A context.Canceled return is treated as a
// clean stop.
func Func(name string, run func(context.Context) error) Service {
	return &funcService{name: name, run: run}
}

func (f *funcService) Name() string { return f.name }

func (f *funcService) Run(ctx context.Context) error {
	if err := f.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type httpService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// HTTP serves srv until ctx is done, then shuts it down gracefully.
func HTTP(srv *http.Server, shutdownTimeout time.Duration) Service {
	return &httpService{server: srv, shutdownTimeout: shutdownTimeout}
}

func (h *httpService) Name() string { return "http server " + h.server.Addr }

func (h *httpService) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
