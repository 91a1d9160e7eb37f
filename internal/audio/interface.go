package audio

import "context"

// Segment is one ffmpeg output chunk. Index is its zero-based position in the recording.
type Segment struct {
	Index int
	Path  string
}

// Normalizer re-encodes an input file to the transcription format.
type Normalizer interface {
	// Normalize writes <dir>/processed_<base> next to inputPath and returns its path.
	Normalize(ctx context.Context, inputPath string) (string, error)
}

// Segmenter splits audio into fixed-duration chunks.
type Segmenter interface {
	// Split writes segment_000.mp3, segment_001.mp3, ... into outDir and returns
	// them in index order.
	Split(ctx context.Context, path, outDir string) ([]Segment, error)
}

// Transcoder is the ffmpeg-backed implementation of both steps.
type Transcoder interface {
	Normalizer
	Segmenter
}
