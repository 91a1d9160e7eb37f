package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

// Options configures which uploads trigger a job and how long a job must stay
// quiet before it is handed off.
type Options struct {
	Extension     string
	Settle        time.Duration
	MaxConcurrent int
}

// New creates a Watcher on uploadsDir, the directory holding one subdirectory
// per summaryId.
func New(uploadsDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(uploadsDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Extension == "" {
		opts.Extension = ".mp3"
	}

	return &implWatcher{
		uploadsDir: uploadsDir,
		handler:    handler,
		logger:     log,
		watcher:    watcher,
		opts:       opts,
		semaphore:  make(chan struct{}, opts.MaxConcurrent),
		timers:     make(map[string]*time.Timer),
		ready:      make(chan string, 16),
	}, nil
}
