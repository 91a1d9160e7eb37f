package records

import (
	"context"
	"time"
)

// Record is the row written each time a summary is fetched.
type Record struct {
	SummaryID    string    `dynamodbav:"summaryId"`
	CreatedAt    time.Time `dynamodbav:"-"`
	DocumentName string    `dynamodbav:"documentName"`
}

// NewRecord builds the record for summaryID stamped at now (UTC).
func NewRecord(summaryID string, now time.Time) Record {
	return Record{
		SummaryID:    summaryID,
		CreatedAt:    now.UTC(),
		DocumentName: "audio/" + summaryID + ".mp3",
	}
}

// Store persists summary records.
type Store interface {
	Put(ctx context.Context, rec Record) error
}
