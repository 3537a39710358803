package handlers

import (
	"log/slog"

	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type batchHandler struct {
	batchService portssvc.BatchProcessorSvc
}

func registerBatchRoutes(rg *gin.RouterGroup, bs portssvc.BatchProcessorSvc, mutating ...gin.HandlerFunc) {
	h := &batchHandler{batchService: bs}

	batch := rg.Group("/requests/batch", mutating...)
	{
		batch.POST("/approve", h.batchApprove)
		batch.POST("/reject", h.batchReject)
	}
}

// batchApprove godoc
// @Summary Approve several requests at once
// @Description All requests must share one current status. Each item is applied independently; the result lists applied ids and per-item errors.
// @Tags batch
// @Accept json
// @Produce json
// @Param request body dto.BatchApproveRequest true "Request ids"
// @Success 200 {object} domain.BatchResult "Every item applied"
// @Success 207 {object} domain.BatchResult "Some items failed"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} domain.BatchResult "Requests span more than one status"
// @Security BearerAuth
// @Router /requests/batch/approve [post]
func (h *batchHandler) batchApprove(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BatchApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	result, err := h.batchService.BatchApprove(c.Request.Context(), req.RequestIDs, actorID, req.Comment)
	if err != nil {
		respondError(c, logger, err, "Failed to approve batch")
		return
	}
	logger.Info("Batch approve finished", slog.Int("applied", len(result.Applied)), slog.Int("failed", len(result.Errors)))
	c.JSON(dto.BatchStatusCode(result), result)
}

// batchReject godoc
// @Summary Reject several requests at once
// @Tags batch
// @Accept json
// @Produce json
// @Param request body dto.BatchRejectRequest true "Request ids and reason"
// @Success 200 {object} domain.BatchResult
// @Success 207 {object} domain.BatchResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} domain.BatchResult
// @Security BearerAuth
// @Router /requests/batch/reject [post]
func (h *batchHandler) batchReject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BatchRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	result, err := h.batchService.BatchReject(c.Request.Context(), req.RequestIDs, actorID, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to reject batch")
		return
	}
	logger.Info("Batch reject finished", slog.Int("applied", len(result.Applied)), slog.Int("failed", len(result.Errors)))
	c.JSON(dto.BatchStatusCode(result), result)
}
