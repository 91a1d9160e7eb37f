package processor

import (
	"context"
	"encoding/json"
	"fmt"
)

// saveTranscripts writes transcript.json and combined.txt under the job's transcriptions prefix.
func (p *implProcessor) saveTranscripts(ctx context.Context, bucket string, result Result) error {
	prefix := p.cfg.Storage.TranscriptionsPrefix + result.JobID + "/"

	body, err := json.MarshalIndent(result.Transcripts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcripts: %w", err)
	}
	if err := p.store.Put(ctx, bucket, prefix+"transcript.json", body, "application/json"); err != nil {
		return err
	}
	if err := p.store.Put(ctx, bucket, prefix+"combined.txt", []byte(result.Combined()), "text/plain; charset=utf-8"); err != nil {
		return err
	}

	p.logger.Info(ctx, "Transcripts stored under %s", prefix)
	return nil
}
