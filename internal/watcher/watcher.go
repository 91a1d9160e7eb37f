package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

type implWatcher struct {
	uploadsDir string
	handler    EventHandler
	logger     logger.Logger
	watcher    *fsnotify.Watcher
	opts       Options
	semaphore  chan struct{}
	wg         sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
}

// Start watches the uploads directory until ctx is done. Each new job
// directory is added to the watch; every audio write re-arms the job's settle
// timer, and the handler runs once the job stays quiet for the settle delay.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Uploads watcher started (max concurrent: %d, settle: %s). Monitoring: %s",
		w.opts.MaxConcurrent, w.opts.Settle, w.uploadsDir)

	entries, err := os.ReadDir(w.uploadsDir)
	if err != nil {
		return fmt.Errorf("read uploads dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.watchJob(ctx, filepath.Join(w.uploadsDir, e.Name()), false)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.logger.Info(ctx, "Waiting for ongoing jobs to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Uploads watcher stopped")
			return ctx.Err()

		case jobID := <-w.ready:
			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(jobID string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					jobCtx := logger.ContextWithJobID(ctx, jobID)
					if err := w.handler(jobCtx, jobID); err != nil {
						w.logger.Error(jobCtx, "Failed to start job %s: %v", jobID, err)
					}
				}(jobID)
			case <-ctx.Done():
				return ctx.Err()
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	w.stopTimers()
	return w.watcher.Close()
}

func (w *implWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if filepath.Dir(event.Name) == filepath.Clean(w.uploadsDir) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.watchJob(ctx, event.Name, true)
			}
		}
		return
	}

	jobID, ok := w.jobIDFromPath(event.Name)
	if !ok {
		return
	}
	if !w.isAudioFile(event.Name) {
		w.logger.Debug(ctx, "Ignoring non-audio upload: %s", event.Name)
		return
	}

	w.schedule(ctx, jobID)
}

// watchJob adds a job directory to the watch. Files that landed before the
// watch was in place are picked up by scanning the directory once.
func (w *implWatcher) watchJob(ctx context.Context, dir string, scan bool) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn(ctx, "Failed to watch %s: %v", dir, err)
		return
	}
	w.logger.Debug(ctx, "Watching job directory: %s", dir)

	if !scan {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() && w.isAudioFile(e.Name()) {
			w.schedule(ctx, filepath.Base(dir))
			return
		}
	}
}

// schedule (re)arms the settle timer of jobID.
func (w *implWatcher) schedule(ctx context.Context, jobID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[jobID]; ok {
		t.Reset(w.opts.Settle)
		return
	}

	w.logger.Info(ctx, "New upload detected for job %s", jobID)
	w.timers[jobID] = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		delete(w.timers, jobID)
		w.mu.Unlock()

		select {
		case w.ready <- jobID:
		case <-ctx.Done():
		}
	})
}

func (w *implWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
}

// jobIDFromPath returns the summaryId of a file directly inside a job
// directory.
func (w *implWatcher) jobIDFromPath(path string) (string, bool) {
	rel, err := filepath.Rel(w.uploadsDir, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == ".." || parts[0] == "." || parts[1] == "" {
		return "", false
	}
	return parts[0], true
}

// isAudioFile checks the extension case-insensitively. Partial writes of the
// local store are skipped.
func (w *implWatcher) isAudioFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), w.opts.Extension)
}
