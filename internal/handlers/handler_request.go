package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestHandler handles HTTP requests for drafting and deciding approval requests.
type requestHandler struct {
	workflowService portssvc.WorkflowSvcFacade
	ledgerService   portssvc.ApprovalLedgerSvc
}

func newRequestHandler(ws portssvc.WorkflowSvcFacade, ls portssvc.ApprovalLedgerSvc) *requestHandler {
	return &requestHandler{workflowService: ws, ledgerService: ls}
}

// registerRequestRoutes registers routes related to approval requests.
func registerRequestRoutes(rg *gin.RouterGroup, ws portssvc.WorkflowSvcFacade, ls portssvc.ApprovalLedgerSvc, mutating ...gin.HandlerFunc) {
	h := newRequestHandler(ws, ls)

	requests := rg.Group("/requests")
	{
		requests.GET("/:requestID", h.getRequest)
		requests.GET("/:requestID/history", h.listHistory)
	}
	writes := rg.Group("/requests", mutating...)
	{
		writes.POST("", h.createRequest)
		writes.PATCH("/:requestID", h.updateRequest)
		writes.POST("/:requestID/submit", h.submitRequest)
		writes.POST("/:requestID/approve", h.approveRequest)
		writes.POST("/:requestID/reject", h.rejectRequest)
		writes.POST("/:requestID/cancel", h.cancelRequest)
	}
}

// createRequest godoc
// @Summary Create a draft request
// @Description Creates a new request in draft status owned by the caller
// @Tags requests
// @Accept json
// @Produce json
// @Param request body dto.CreateRequestRequest true "Request details"
// @Success 201 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests [post]
func (h *requestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	created, err := h.workflowService.CreateDraft(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create request")
		return
	}
	logger.Info("Draft request created", slog.String("request_id", created.RequestID))
	c.JSON(http.StatusCreated, dto.ToRequestResponse(created))
}

// getRequest godoc
// @Summary Get a request
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID} [get]
func (h *requestHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	request, err := h.workflowService.GetRequest(c.Request.Context(), c.Param("requestID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(request))
}

// updateRequest godoc
// @Summary Edit a draft request
// @Description Changes amount or org unit while the request is still a draft. Only the applicant may edit.
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param request body dto.UpdateRequestRequest true "Fields to change"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Request is no longer a draft"
// @Security BearerAuth
// @Router /requests/{requestID} [patch]
func (h *requestHandler) updateRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	updated, err := h.workflowService.UpdateDraft(c.Request.Context(), c.Param("requestID"), actorID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated))
}

// submitRequest godoc
// @Summary Submit a draft
// @Description Moves a draft into the first stage of its branch. The branch is fixed from the amount at this point.
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/submit [post]
func (h *requestHandler) submitRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	updated, err := h.workflowService.Submit(c.Request.Context(), c.Param("requestID"), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to submit request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated))
}

// approveRequest godoc
// @Summary Approve the current stage
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param request body dto.ApproveRequest false "Optional comment"
// @Success 200 {object} dto.RequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Invalid or stale state"
// @Failure 504 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/approve [post]
func (h *requestHandler) approveRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApproveRequest
	// The comment is optional, so an empty body (io.EOF) is not an error.
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBindError(c, logger, err)
			return
		}
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	updated, err := h.workflowService.Approve(c.Request.Context(), c.Param("requestID"), actorID, req.Comment)
	if err != nil {
		respondError(c, logger, err, "Failed to approve request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated))
}

// rejectRequest godoc
// @Summary Reject the request
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param request body dto.RejectRequest true "Rejection reason"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/reject [post]
func (h *requestHandler) rejectRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	updated, err := h.workflowService.Reject(c.Request.Context(), c.Param("requestID"), actorID, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to reject request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated))
}

// cancelRequest godoc
// @Summary Cancel a draft
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/cancel [post]
func (h *requestHandler) cancelRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	updated, err := h.workflowService.Cancel(c.Request.Context(), c.Param("requestID"), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated))
}

// listHistory godoc
// @Summary List the approval history of a request
// @Description Ledger records in sequence order, paged with an opaque token
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Param limit query int false "Page size (max 100)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /requests/{requestID}/history [get]
func (h *requestHandler) listHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	page, err := h.ledgerService.ListHistory(c.Request.Context(), c.Param("requestID"), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list request history")
		return
	}
	c.JSON(http.StatusOK, page)
}
