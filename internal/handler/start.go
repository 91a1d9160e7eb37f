package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

type runRequest struct {
	SummaryID string `json:"summaryId"`
	Bucket    string `json:"bucket,omitempty"`
}

func (h *implHandler) StartProcessing(ctx context.Context, event []byte) Response {
	var req runRequest
	if err := decodeEvent(event, &req); err != nil {
		h.logger.Warn(ctx, "Invalid start request: %v", err)
		return message(http.StatusBadRequest, "Invalid JSON in 'body' field.")
	}
	if !validSummaryID(req.SummaryID) {
		return message(http.StatusBadRequest, "The 'summaryId' field is missing in the payload.")
	}

	ctx = logger.ContextWithJobID(ctx, req.SummaryID)
	if req.Bucket == "" {
		req.Bucket = h.cfg.Storage.Bucket
	}

	if h.deps.Dispatcher == nil {
		h.logger.Error(ctx, "Start requested but no dispatcher is configured")
		return message(http.StatusInternalServerError, "Internal server error.")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		h.logger.Error(ctx, "Failed to encode run payload: %v", err)
		return message(http.StatusInternalServerError, "Internal server error.")
	}

	if err := h.deps.Dispatcher.Dispatch(ctx, payload); err != nil {
		h.logger.Error(ctx, "Failed to dispatch run: %v", err)
		return message(http.StatusInternalServerError, "Internal server error.")
	}

	h.logger.Info(ctx, "Processing started for bucket %s", req.Bucket)
	return message(http.StatusOK, "Processing started successfully.")
}
