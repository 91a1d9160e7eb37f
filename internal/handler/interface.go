package handler

import "context"

// Func is one entry point. event is either a bare JSON payload or an
// API Gateway style envelope whose "body" holds the payload.
type Func func(ctx context.Context, event []byte) Response

// Handler exposes the four entry points of the service.
type Handler interface {
	// IssueUploadTarget answers {fileName, fileType} with a presigned upload URL and a new summaryId.
	IssueUploadTarget(ctx context.Context, event []byte) Response
	// FetchResult returns results/<summaryId>.md and records the fetch.
	FetchResult(ctx context.Context, event []byte) Response
	// StartProcessing hands the job to the dispatcher and returns immediately.
	StartProcessing(ctx context.Context, event []byte) Response
	// RunPipeline transcribes, summarizes and stores the recap for one job.
	RunPipeline(ctx context.Context, event []byte) Response
}
