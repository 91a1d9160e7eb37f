package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/pkg/executor"
)

const segmentPattern = "segment_%03d.mp3"

var segmentName = regexp.MustCompile(`^segment_(\d{3,})\.mp3$`)

// Normalize converts the input to 16kHz mono MP3
func (t *implTranscoder) Normalize(ctx context.Context, inputPath string) (string, error) {
	outPath := filepath.Join(filepath.Dir(inputPath), "processed_"+filepath.Base(inputPath))

	t.logger.Info(ctx, "Normalizing audio: %s -> %s", inputPath, outPath)

	// -nostdin: never wait on the terminal
	// -y: overwrite a leftover output from an earlier attempt
	// -vn: drop cover art and any video stream
	// -ar: sample rate accepted by the transcription model
	// -ac: mono
	// -f mp3: keep the container the API expects
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ar", strconv.Itoa(t.cfg.Audio.SampleRate),
		"-ac", strconv.Itoa(t.cfg.Audio.Channels),
		"-f", "mp3",
		outPath,
	}

	if _, err := t.executor.Execute(ctx, t.binary(ctx), args...); err != nil {
		return "", transcodeError("ffmpeg normalize", err)
	}

	return outPath, nil
}

// Split cuts the file into segments of cfg.Audio.SegmentSeconds without re-encoding
func (t *implTranscoder) Split(ctx context.Context, path, outDir string) ([]Segment, error) {
	t.logger.Info(ctx, "Splitting into %ds segments: %s", t.cfg.Audio.SegmentSeconds, path)

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", path,
		"-f", "segment",
		"-segment_time", strconv.Itoa(t.cfg.Audio.SegmentSeconds),
		"-c", "copy",
		filepath.Join(outDir, segmentPattern),
	}

	if _, err := t.executor.Execute(ctx, t.binary(ctx), args...); err != nil {
		return nil, transcodeError("ffmpeg segment", err)
	}

	segments, err := collectSegments(outDir)
	if err != nil {
		return nil, apperr.New(apperr.KindTranscode, "ffmpeg segment", err)
	}

	t.logger.Info(ctx, "Total segments created: %d", len(segments))
	return segments, nil
}

// collectSegments lists segment files in outDir, ordered by index and cut at
// the first gap in the numbering.
func collectSegments(outDir string) ([]Segment, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read segment dir: %w", err)
	}

	var found []Segment
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := segmentName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, Segment{Index: idx, Path: filepath.Join(outDir, e.Name())})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Index < found[j].Index })

	segments := make([]Segment, 0, len(found))
	for i, s := range found {
		if s.Index != i {
			break
		}
		segments = append(segments, s)
	}
	return segments, nil
}

// binary resolves the ffmpeg executable once: an explicit path wins, then the
// configured search paths, then PATH.
func (t *implTranscoder) binary(ctx context.Context) string {
	t.resolveOnce.Do(func() {
		t.ffmpeg = resolveBinary(t.cfg.FFmpeg.BinaryPath, t.cfg.FFmpeg.SearchPaths, t.executor.LookPath)
		t.logger.Debug(ctx, "Using ffmpeg binary: %s", t.ffmpeg)
	})
	return t.ffmpeg
}

func resolveBinary(name string, searchPaths []string, lookPath func(string) (string, error)) string {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
			return candidate
		}
	}
	if p, err := lookPath(name); err == nil {
		return p
	}
	return name
}

func transcodeError(op string, err error) error {
	var cmdErr *executor.CommandError
	if errors.As(err, &cmdErr) {
		return apperr.WithDetail(apperr.KindTranscode, op, lastLines(cmdErr.Stderr, 5), err)
	}
	return apperr.New(apperr.KindTranscode, op, err)
}

// lastLines keeps the tail of ffmpeg stderr, where the actual failure is printed.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
