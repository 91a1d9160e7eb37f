package handler

import (
	"context"
	"net/http"

	"github.com/russross/blackfriday"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/records"
)

const formatHTML = "html"

type fetchRequest struct {
	SummaryID string `json:"summaryId"`
	Format    string `json:"format"`
}

type fetchResponse struct {
	Content string `json:"content"`
}

// FetchResult does not tell a job that is still running from one that never
// existed: both answer 500 until results/<summaryId>.md is written.
func (h *implHandler) FetchResult(ctx context.Context, event []byte) Response {
	var req fetchRequest
	if err := decodeEvent(event, &req); err != nil {
		h.logger.Warn(ctx, "Invalid fetch request: %v", err)
		return errorMessage(http.StatusBadRequest, "summaryId is required")
	}
	if !validSummaryID(req.SummaryID) {
		h.logger.Warn(ctx, "Missing or invalid summaryId %q", req.SummaryID)
		return errorMessage(http.StatusBadRequest, "summaryId is required")
	}

	ctx = logger.ContextWithJobID(ctx, req.SummaryID)
	content, err := h.fetch(ctx, req)
	if err != nil {
		h.logger.Error(ctx, "Failed to fetch summary or record (%s): %v", apperr.KindOf(err), err)
		return errorMessage(http.StatusInternalServerError, "Failed to fetch summary or record data")
	}

	return jsonResponse(http.StatusOK, fetchResponse{Content: content})
}

func (h *implHandler) fetch(ctx context.Context, req fetchRequest) (string, error) {
	if h.deps.Store == nil || h.deps.Records == nil {
		return "", apperr.WithDetail(apperr.KindInternal, "fetch", "object store or record store not configured", nil)
	}

	key := h.cfg.Storage.ResultsPrefix + req.SummaryID + ".md"
	h.logger.Info(ctx, "Fetching summary: %s", key)

	body, err := h.deps.Store.Get(ctx, h.cfg.Storage.Bucket, key)
	if err != nil {
		return "", err
	}

	rec := records.NewRecord(req.SummaryID, h.now())
	if err := h.deps.Records.Put(ctx, rec); err != nil {
		return "", err
	}
	h.logger.Info(ctx, "Record created: summaryId=%s, documentName=%s", rec.SummaryID, rec.DocumentName)

	if req.Format == formatHTML {
		return string(blackfriday.MarkdownCommon(body)), nil
	}
	return string(body), nil
}
