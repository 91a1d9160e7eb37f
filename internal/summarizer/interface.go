package summarizer

import "context"

// Source tells how a Summary's text was obtained.
type Source int

const (
	// SourceStructured means the text was extracted from a well-formed response.
	SourceStructured Source = iota
	// SourceRawFallback means the response had an unexpected shape and Text is the raw body.
	SourceRawFallback
)

func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "structured"
	case SourceRawFallback:
		return "raw_fallback"
	default:
		return "unknown"
	}
}

// Summary is the generated recap document.
type Summary struct {
	Text   string
	Source Source
}

// Summarizer turns a combined transcript into a markdown recap with quiz questions.
// Shape mismatches in a successful response degrade to SourceRawFallback; only
// transport or API errors are returned, as apperr.SummaryAPI.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (Summary, error)
}
