package handler

import (
	"context"
	"net/http"

	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

type uploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadURL"`
	SummaryID string `json:"summaryId"`
}

func (h *implHandler) IssueUploadTarget(ctx context.Context, event []byte) Response {
	var req uploadRequest
	if err := decodeEvent(event, &req); err != nil {
		h.logger.Warn(ctx, "Invalid upload request: %v", err)
		return message(http.StatusBadRequest, "fileName and fileType are mandatory.")
	}
	if !validFileName(req.FileName) || req.FileType == "" {
		return message(http.StatusBadRequest, "fileName and fileType are mandatory.")
	}
	if h.deps.Store == nil {
		h.logger.Error(ctx, "Upload target requested but no object store is configured")
		return message(http.StatusInternalServerError, "Internal server error.")
	}

	summaryID := h.newID()
	ctx = logger.ContextWithJobID(ctx, summaryID)
	key := h.cfg.Storage.UploadsPrefix + summaryID + "/" + req.FileName

	url, err := h.deps.Store.PresignPut(ctx, h.cfg.Storage.Bucket, key, req.FileType, h.cfg.Storage.UploadURLTTL)
	if err != nil {
		h.logger.Error(ctx, "Failed to presign upload for %s: %v", key, err)
		return message(http.StatusInternalServerError, "Internal server error.")
	}

	h.logger.Info(ctx, "Issued upload URL for %s (expires in %s)", key, h.cfg.Storage.UploadURLTTL)
	return jsonResponse(http.StatusOK, uploadResponse{UploadURL: url, SummaryID: summaryID})
}
