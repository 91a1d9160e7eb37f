package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/audio"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/storage"
)

const (
	mib    = 1024 * 1024
	bucket = "documentos-to-summary"
)

// fakeTranscoder writes sparse files of a chosen size instead of running ffmpeg.
type fakeTranscoder struct {
	sizes        map[string]int64 // by input base name
	segments     int
	normalizeErr map[string]error
	splitCalls   int
}

func (f *fakeTranscoder) Normalize(ctx context.Context, inputPath string) (string, error) {
	base := filepath.Base(inputPath)
	if err := f.normalizeErr[base]; err != nil {
		return "", err
	}
	out := filepath.Join(filepath.Dir(inputPath), "processed_"+base)
	if err := os.WriteFile(out, nil, 0644); err != nil {
		return "", err
	}
	if err := os.Truncate(out, f.sizes[base]); err != nil {
		return "", err
	}
	return out, nil
}

func (f *fakeTranscoder) Split(ctx context.Context, path, outDir string) ([]audio.Segment, error) {
	f.splitCalls++
	var segs []audio.Segment
	for i := 0; i < f.segments; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("segment_%03d.mp3", i))
		if err := os.WriteFile(p, []byte("seg"), 0644); err != nil {
			return nil, err
		}
		segs = append(segs, audio.Segment{Index: i, Path: p})
	}
	return segs, nil
}

// fakeTranscriber answers with text derived from the object and segment.
type fakeTranscriber struct {
	mu    sync.Mutex
	calls []string
	text  func(path string, ordinal int) (string, error)
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string, ordinal int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(path))
	f.mu.Unlock()
	if f.text == nil {
		return "texto de " + filepath.Base(path), nil
	}
	return f.text(path, ordinal)
}

type fixture struct {
	cfg         *config.Config
	store       storage.ObjectStore
	transcoder  *fakeTranscoder
	transcriber *fakeTranscriber
	processor   Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Bucket: bucket},
		Records: config.RecordsConfig{Driver: config.RecordsNone},
		Paths:   config.PathsConfig{Temp: t.TempDir()},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		cfg:         cfg,
		store:       storage.NewLocal(t.TempDir(), "http://localhost:8080"),
		transcoder:  &fakeTranscoder{sizes: map[string]int64{}, normalizeErr: map[string]error{}},
		transcriber: &fakeTranscriber{},
	}
	f.processor = New(cfg, f.store, f.transcoder, f.transcriber, logger.NewWithFormat("error", logger.FormatText, io.Discard))
	return f
}

func (f *fixture) upload(t *testing.T, key string) {
	t.Helper()
	if err := f.store.Put(context.Background(), bucket, key, []byte("mp3"), "audio/mpeg"); err != nil {
		t.Fatalf("upload %s: %v", key, err)
	}
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch dir not cleaned: %v", entries)
	}
}

func TestProcessEmptyListing(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "uploads/abc123/notes.txt")
	f.upload(t, "uploads/abc1234/other.mp3")

	result, err := f.processor.Process(context.Background(), "abc123", bucket)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !result.Empty {
		t.Errorf("Process() Empty = false, want true (transcripts %v)", result.Transcripts)
	}
	if len(f.transcriber.calls) != 0 {
		t.Errorf("transcriber calls = %v, want none", f.transcriber.calls)
	}
}

func TestProcessSingleSmallFile(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "uploads/abc123/lecture.mp3")
	f.transcoder.sizes["lecture.mp3"] = 10 * mib

	result, err := f.processor.Process(context.Background(), "abc123", bucket)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if f.transcoder.splitCalls != 0 {
		t.Errorf("Split called %d times, want 0", f.transcoder.splitCalls)
	}
	if len(f.transcriber.calls) != 1 || f.transcriber.calls[0] != "processed_lecture.mp3" {
		t.Errorf("transcriber calls = %v, want [processed_lecture.mp3]", f.transcriber.calls)
	}
	if len(result.Transcripts) != 1 || result.Transcripts[0].Key != "uploads/abc123/lecture.mp3" {
		t.Fatalf("Transcripts = %+v", result.Transcripts)
	}
	if result.Combined() != "texto de processed_lecture.mp3" {
		t.Errorf("Combined() = %q", result.Combined())
	}
	assertScratchEmpty(t, f.cfg.Paths.Temp)
}

func TestProcessSizeCeiling(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		wantSplit bool
	}{
		{"below ceiling", 10 * mib, false},
		{"exactly at ceiling", 25 * mib, false},
		{"one byte over", 25*mib + 1, true},
		{"large lecture", 40 * mib, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.upload(t, "uploads/big1/aula.mp3")
			f.transcoder.sizes["aula.mp3"] = tt.size
			f.transcoder.segments = 2

			if _, err := f.processor.Process(context.Background(), "big1", bucket); err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if got := f.transcoder.splitCalls > 0; got != tt.wantSplit {
				t.Errorf("split = %v, want %v", got, tt.wantSplit)
			}
		})
	}
}

func TestProcessLargeFileJoinsSegmentsInOrder(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "uploads/big1/aula.mp3")
	f.transcoder.sizes["aula.mp3"] = 40 * mib
	f.transcoder.segments = 4

	var ordinals []int
	f.transcriber.text = func(path string, ordinal int) (string, error) {
		ordinals = append(ordinals, ordinal)
		return fmt.Sprintf("parte%d", ordinal-1), nil
	}

	result, err := f.processor.Process(context.Background(), "big1", bucket)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := "parte0 parte1 parte2 parte3"
	if result.Transcripts[0].Text != want {
		t.Errorf("Text = %q, want %q", result.Transcripts[0].Text, want)
	}
	if fmt.Sprint(ordinals) != "[1 2 3 4]" {
		t.Errorf("ordinals = %v, want [1 2 3 4]", ordinals)
	}
	wantCalls := "segment_000.mp3,segment_001.mp3,segment_002.mp3,segment_003.mp3"
	if strings.Join(f.transcriber.calls, ",") != wantCalls {
		t.Errorf("calls = %v", f.transcriber.calls)
	}
	assertScratchEmpty(t, f.cfg.Paths.Temp)
}

func TestProcessDiscoveryOrder(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("max_concurrent=%d", concurrency), func(t *testing.T) {
			f := newFixture(t)
			f.cfg.Performance.MaxConcurrent = concurrency
			f.upload(t, "uploads/job/c.mp3")
			f.upload(t, "uploads/job/a.MP3")
			f.upload(t, "uploads/job/b.mp3")
			f.upload(t, "uploads/job/readme.txt")

			f.transcriber.text = func(path string, ordinal int) (string, error) {
				base := strings.TrimPrefix(filepath.Base(path), "processed_")
				return strings.ToUpper(strings.TrimSuffix(strings.ToLower(base), ".mp3")), nil
			}

			result, err := f.processor.Process(context.Background(), "job", bucket)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}

			var keys []string
			for _, tr := range result.Transcripts {
				keys = append(keys, tr.Key)
			}
			if strings.Join(keys, ",") != "uploads/job/a.MP3,uploads/job/b.mp3,uploads/job/c.mp3" {
				t.Errorf("keys = %v", keys)
			}
			if result.Combined() != "A\nB\nC" {
				t.Errorf("Combined() = %q, want %q", result.Combined(), "A\nB\nC")
			}
		})
	}
}

func TestProcessTranscodeFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.cfg.Pipeline.SaveTranscripts = true
	f.upload(t, "uploads/job/a.mp3")
	f.upload(t, "uploads/job/b.mp3")
	f.transcoder.normalizeErr["b.mp3"] = apperr.WithDetail(apperr.KindTranscode, "ffmpeg normalize", "Invalid data found", errors.New("exit status 1"))

	result, err := f.processor.Process(context.Background(), "job", bucket)
	if !errors.Is(err, apperr.Transcode) {
		t.Fatalf("Process() error = %v, want Transcode", err)
	}
	if len(result.Transcripts) != 0 {
		t.Errorf("partial transcripts returned: %v", result.Transcripts)
	}

	saved, err := f.store.List(context.Background(), bucket, "transcriptions/")
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 0 {
		t.Errorf("artifacts persisted after failure: %v", saved)
	}
	assertScratchEmpty(t, f.cfg.Paths.Temp)
}

func TestProcessTranscriptionFailure(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "uploads/big1/aula.mp3")
	f.transcoder.sizes["aula.mp3"] = 40 * mib
	f.transcoder.segments = 3
	f.transcriber.text = func(path string, ordinal int) (string, error) {
		if ordinal == 2 {
			return "", apperr.New(apperr.KindTranscriptionAPI, "transcribe", errors.New("500"))
		}
		return "ok", nil
	}

	_, err := f.processor.Process(context.Background(), "big1", bucket)
	if !errors.Is(err, apperr.TranscriptionAPI) {
		t.Fatalf("Process() error = %v, want TranscriptionAPI", err)
	}
	if len(f.transcriber.calls) != 2 {
		t.Errorf("transcriber calls = %v, want stop after segment 2", f.transcriber.calls)
	}
}

func TestProcessZeroSegmentsIsTranscodeError(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "uploads/big1/aula.mp3")
	f.transcoder.sizes["aula.mp3"] = 40 * mib
	f.transcoder.segments = 0

	_, err := f.processor.Process(context.Background(), "big1", bucket)
	if !errors.Is(err, apperr.Transcode) {
		t.Fatalf("Process() error = %v, want Transcode", err)
	}
	if !strings.Contains(err.Error(), "segmenter produced no segments") {
		t.Errorf("error = %q", err)
	}
}

func TestProcessSavesTranscripts(t *testing.T) {
	f := newFixture(t)
	f.cfg.Pipeline.SaveTranscripts = true
	f.upload(t, "uploads/job/a.mp3")
	f.upload(t, "uploads/job/b.mp3")

	if _, err := f.processor.Process(context.Background(), "job", bucket); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	raw, err := f.store.Get(context.Background(), bucket, "transcriptions/job/transcript.json")
	if err != nil {
		t.Fatalf("transcript.json: %v", err)
	}
	var saved []Transcript
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("transcript.json is not JSON: %v", err)
	}
	if len(saved) != 2 || saved[0].Key != "uploads/job/a.mp3" {
		t.Errorf("transcript.json = %+v", saved)
	}

	combined, err := f.store.Get(context.Background(), bucket, "transcriptions/job/combined.txt")
	if err != nil {
		t.Fatalf("combined.txt: %v", err)
	}
	if string(combined) != "texto de processed_a.mp3\ntexto de processed_b.mp3" {
		t.Errorf("combined.txt = %q", combined)
	}
}

func TestProcessValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		jobID  string
		bucket string
	}{
		{"empty job", "", bucket},
		{"blank job", "  ", bucket},
		{"job with slash", "a/b", bucket},
		{"parent dir", "..", bucket},
		{"empty bucket", "abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.processor.Process(context.Background(), tt.jobID, tt.bucket)
			if !errors.Is(err, apperr.Validation) {
				t.Errorf("Process() error = %v, want Validation", err)
			}
		})
	}
}

func TestResultByKey(t *testing.T) {
	r := Result{Transcripts: []Transcript{{Key: "k1", Text: "a"}, {Key: "k2", Text: "b"}}}
	m := r.ByKey()
	if len(m) != 2 || m["k1"] != "a" || m["k2"] != "b" {
		t.Errorf("ByKey() = %v", m)
	}
	if (Result{}).Combined() != "" {
		t.Error("Combined() of empty result should be empty")
	}
}

func TestSemaphore(t *testing.T) {
	sem := newSemaphore(0)
	ctx := context.Background()
	if err := sem.acquire(ctx); err != nil {
		t.Fatalf("acquire() error = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := sem.acquire(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire() on full semaphore = %v, want context.Canceled", err)
	}
	sem.release()
}
