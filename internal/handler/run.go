package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/summarizer"
)

const markdownContentType = "text/markdown"
const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type runResponse struct {
	Message        string            `json:"message"`
	Transcriptions map[string]string `json:"transcriptions"`
	Analysis       string            `json:"analysis"`
	AnalysisSource string            `json:"analysisSource"`
}

func (h *implHandler) RunPipeline(ctx context.Context, event []byte) Response {
	var req runRequest
	if err := decodeEvent(event, &req); err != nil {
		h.logger.Warn(ctx, "Invalid run request: %v", err)
		return message(http.StatusBadRequest, "The 'summaryId' field is required.")
	}
	if !validSummaryID(req.SummaryID) {
		return message(http.StatusBadRequest, "The 'summaryId' field is required.")
	}
	if req.Bucket == "" {
		req.Bucket = h.cfg.Storage.Bucket
	}

	ctx = logger.ContextWithJobID(ctx, req.SummaryID)
	startTime := time.Now()

	h.logger.Info(ctx, "========================================")
	h.logger.Info(ctx, "Starting pipeline: bucket=%s prefix=%s%s/", req.Bucket, h.cfg.Storage.UploadsPrefix, req.SummaryID)
	h.logger.Info(ctx, "========================================")

	resp, err := h.run(ctx, req)
	if err != nil {
		h.logger.Error(ctx, "Transcription failure (%s): %v", apperr.KindOf(err), err)
		if errors.Is(err, apperr.Validation) {
			return message(http.StatusBadRequest, "The 'summaryId' field is required.")
		}
		return message(http.StatusInternalServerError, "Transcription failure.")
	}
	if resp == nil {
		return message(http.StatusOK, "No MP3 files found to process.")
	}

	h.logger.Info(ctx, "Pipeline completed in %s", time.Since(startTime).Round(time.Millisecond))
	return jsonResponse(http.StatusOK, resp)
}

// run returns a nil response when the job has no audio.
func (h *implHandler) run(ctx context.Context, req runRequest) (*runResponse, error) {
	if h.deps.Processor == nil || h.deps.Summarizer == nil || h.deps.Store == nil {
		return nil, apperr.WithDetail(apperr.KindInternal, "run", "pipeline collaborators not configured", nil)
	}

	result, err := h.deps.Processor.Process(ctx, req.SummaryID, req.Bucket)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	if result.Empty {
		return nil, nil
	}

	h.logger.Info(ctx, "Combined transcription for summary generation (%d files)", len(result.Transcripts))

	summary, err := h.deps.Summarizer.Summarize(ctx, result.Combined())
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if summary.Source == summarizer.SourceRawFallback {
		h.logger.Warn(ctx, "Summary kept as raw response body")
	}

	key := h.cfg.Storage.ResultsPrefix + req.SummaryID + ".md"
	if err := h.deps.Store.Put(ctx, req.Bucket, key, []byte(summary.Text), markdownContentType); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	h.logger.Info(ctx, "Summary saved to %s", key)

	if h.cfg.Summary.ExportDocx {
		h.exportDocx(ctx, req, summary.Text)
	}

	return &runResponse{
		Message:        "Transcription and analysis completed successfully.",
		Transcriptions: result.ByKey(),
		Analysis:       summary.Text,
		AnalysisSource: summary.Source.String(),
	}, nil
}

// exportDocx writes results/<summaryId>.docx. The markdown result is already
// stored, so failures here are only logged.
func (h *implHandler) exportDocx(ctx context.Context, req runRequest, markdown string) {
	data, err := summarizer.MarkdownToDocx(req.SummaryID, markdown)
	if err != nil {
		h.logger.Warn(ctx, "Failed to render docx: %v", err)
		return
	}

	key := h.cfg.Storage.ResultsPrefix + req.SummaryID + ".docx"
	if err := h.deps.Store.Put(ctx, req.Bucket, key, data, docxContentType); err != nil {
		h.logger.Warn(ctx, "Failed to save docx %s: %v", key, err)
		return
	}
	h.logger.Info(ctx, "Docx export saved to %s", key)
}
