package processor

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/storage"
)

// Process orchestrates download, normalization, segmentation and transcription for one job
func (p *implProcessor) Process(ctx context.Context, jobID, bucket string) (Result, error) {
	if err := validateJobID(jobID); err != nil {
		return Result{}, err
	}
	if bucket == "" {
		return Result{}, apperr.Validationf("bucket is required")
	}

	ctx = logger.ContextWithJobID(ctx, jobID)
	startTime := time.Now()

	objects, err := p.discover(ctx, jobID, bucket)
	if err != nil {
		return Result{}, err
	}
	if len(objects) == 0 {
		p.logger.Info(ctx, "No %s files found under %s%s/", p.cfg.Audio.Extension, p.cfg.Storage.UploadsPrefix, jobID)
		return Result{JobID: jobID, Empty: true}, nil
	}

	p.logger.Info(ctx, "Found %d audio files to process", len(objects))

	scratch, err := os.MkdirTemp(p.cfg.Paths.Temp, "job-"+jobID+"-*")
	if err != nil {
		return Result{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer p.cleanupDir(ctx, scratch)

	transcripts, err := p.transcribeAll(ctx, objects, scratch)
	if err != nil {
		return Result{}, err
	}

	result := Result{JobID: jobID, Transcripts: transcripts}

	if p.cfg.Pipeline.SaveTranscripts {
		if err := p.saveTranscripts(ctx, bucket, result); err != nil {
			return Result{}, err
		}
	}

	p.logger.Info(ctx, "Transcription completed: %d files in %s", len(transcripts), time.Since(startTime).Round(time.Millisecond))
	return result, nil
}

// discover lists the job's audio objects in listing order.
func (p *implProcessor) discover(ctx context.Context, jobID, bucket string) ([]storage.Object, error) {
	prefix := p.cfg.Storage.UploadsPrefix + jobID + "/"

	listed, err := p.store.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(p.cfg.Audio.Extension)
	var objects []storage.Object
	for _, obj := range listed {
		if strings.HasSuffix(strings.ToLower(obj.Key), ext) {
			objects = append(objects, obj)
		}
	}
	return objects, nil
}

// transcribeAll runs objects through a semaphore of cfg.Performance.MaxConcurrent.
// Results land at their discovery index. The first failure cancels the rest.
func (p *implProcessor) transcribeAll(ctx context.Context, objects []storage.Object, scratch string) ([]Transcript, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := newSemaphore(p.cfg.Performance.MaxConcurrent)
	transcripts := make([]Transcript, len(objects))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, obj := range objects {
		if err := sem.acquire(ctx); err != nil {
			break
		}

		wg.Add(1)
		go func(i int, obj storage.Object) {
			defer wg.Done()
			defer sem.release()

			p.logger.Info(ctx, "[%d/%d] Transcribing %s", i+1, len(objects), obj.Key)

			workDir := filepath.Join(scratch, fmt.Sprintf("%03d", i))
			text, err := p.transcribeObject(ctx, obj, workDir)
			if err != nil {
				p.logger.Error(ctx, "Transcription failure for %s: %v", obj.Key, err)
				fail(err)
				return
			}
			transcripts[i] = Transcript{Key: obj.Key, Text: text}
		}(i, obj)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return transcripts, nil
}

// transcribeObject downloads and normalizes one object, splits it when it is
// over the size ceiling and returns the joined transcript.
func (p *implProcessor) transcribeObject(ctx context.Context, obj storage.Object, workDir string) (string, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer p.cleanupDir(ctx, workDir)

	localPath := filepath.Join(workDir, path.Base(obj.Key))
	p.logger.Debug(ctx, "Downloading %s to %s", obj.Key, localPath)
	if err := p.store.Download(ctx, obj.Bucket, obj.Key, localPath); err != nil {
		return "", err
	}
	defer p.cleanupTempFile(ctx, localPath)

	processed, err := p.transcoder.Normalize(ctx, localPath)
	if err != nil {
		return "", err
	}
	defer p.cleanupTempFile(ctx, processed)

	info, err := os.Stat(processed)
	if err != nil {
		return "", apperr.New(apperr.KindTranscode, "stat normalized audio", err)
	}
	p.logger.Info(ctx, "Normalized size: %d bytes", info.Size())

	if info.Size() <= p.cfg.Audio.MaxContentSize {
		return p.transcriber.Transcribe(ctx, processed, 1)
	}

	p.logger.Info(ctx, "File exceeds %d bytes, splitting into segments", p.cfg.Audio.MaxContentSize)

	segDir := filepath.Join(workDir, "segments")
	if err := os.MkdirAll(segDir, 0755); err != nil {
		return "", fmt.Errorf("create segment dir: %w", err)
	}

	segments, err := p.transcoder.Split(ctx, processed, segDir)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", apperr.WithDetail(apperr.KindTranscode, "split "+obj.Key, "segmenter produced no segments", nil)
	}

	var text strings.Builder
	for _, seg := range segments {
		p.logger.Info(ctx, "Transcribing segment %d/%d", seg.Index+1, len(segments))

		fragment, err := p.transcriber.Transcribe(ctx, seg.Path, seg.Index+1)
		p.cleanupTempFile(ctx, seg.Path)
		if err != nil {
			return "", err
		}
		text.WriteString(fragment)
		text.WriteString(" ")
	}

	return strings.TrimSpace(text.String()), nil
}

func validateJobID(jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return apperr.Validationf("summaryId is required")
	}
	if strings.ContainsAny(jobID, `/\`) || jobID == "." || jobID == ".." {
		return apperr.Validationf("invalid summaryId %q", jobID)
	}
	return nil
}
