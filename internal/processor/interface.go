package processor

import (
	"context"
	"strings"
)

// Transcript is the full text of one uploaded object.
type Transcript struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Result is the outcome of one job. Transcripts are in discovery order.
type Result struct {
	JobID       string
	Empty       bool
	Transcripts []Transcript
}

// Combined joins every object's transcript with newlines, in discovery order.
func (r Result) Combined() string {
	texts := make([]string, len(r.Transcripts))
	for i, t := range r.Transcripts {
		texts[i] = t.Text
	}
	return strings.Join(texts, "\n")
}

// ByKey indexes transcripts by object key.
func (r Result) ByKey() map[string]string {
	m := make(map[string]string, len(r.Transcripts))
	for _, t := range r.Transcripts {
		m[t.Key] = t.Text
	}
	return m
}

// Processor turns a job's uploaded audio into transcripts.
type Processor interface {
	// Process transcribes every audio object under the job's upload prefix.
	// Any object failure aborts the job and no transcript is returned.
	Process(ctx context.Context, jobID, bucket string) (Result, error)
}
