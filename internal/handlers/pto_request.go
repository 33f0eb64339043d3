package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pto-approval-api/internal/dto"
	apierrors "github.com/yukikurage/pto-approval-api/internal/errors"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/middleware"
	"github.com/yukikurage/pto-approval-api/internal/services"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// PTORequestHandler serves the employee-facing request endpoints and the
// decision endpoint shared by managers, approvers and admins.
type PTORequestHandler struct {
	ptoService *services.PTOService
	aiService  *services.AIService
}

// NewPTORequestHandler creates a new PTORequestHandler. aiService may be nil,
// which disables drafting.
func NewPTORequestHandler(ptoService *services.PTOService, aiService *services.AIService) *PTORequestHandler {
	return &PTORequestHandler{
		ptoService: ptoService,
		aiService:  aiService,
	}
}

// ListRequests returns the current user's own history, newest first
func (h *PTORequestHandler) ListRequests(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}
	params := utils.PageFromQuery(c)

	requests, total, err := h.ptoService.ListOwnRequests(c.Request.Context(), actor.ID, services.ListRequestsInput{
		Status:   status,
		Page:     params.Number,
		PageSize: params.Size,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestListResponse(requests, params, total))
}

// CreateRequest submits a new PTO request for the current user
func (h *PTORequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CreatePTORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	request, err := h.ptoService.CreateRequest(c.Request.Context(), services.CreateRequestInput{
		UserID:    actor.ID,
		StartDate: start,
		EndDate:   end,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPTORequestDTO(*request))
}

// QuoteRequest prices ?start_date=&end_date= against the current balance
func (h *PTORequestHandler) QuoteRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	start, err := utils.ParseDate(c.Query("start_date"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	end, err := utils.ParseDate(c.Query("end_date"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	quote, err := h.ptoService.QuoteRequest(c.Request.Context(), actor.ID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteDTO(*quote))
}

// DraftRequests turns free text into suggested requests. Nothing is stored.
func (h *PTORequestHandler) DraftRequests(c *gin.Context) {
	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI drafting is not configured")
		return
	}

	var req dto.DraftPTORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	drafts, err := h.aiService.DraftFromText(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDraftTextEmpty), errors.Is(err, services.ErrDraftTextTooLong):
			respondServiceError(c, err)
		default:
			logging.FromContext(c.Request.Context(), nil).WithError(err).Error("Failed to draft PTO requests")
			apierrors.ServiceUnavailable(c, "Failed to draft requests")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"drafts": dto.ToDraftDTOs(drafts),
	})
}

// GetRequest returns a request visible to the current user
func (h *PTORequestHandler) GetRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.ptoService.GetRequest(c.Request.Context(), requestID, actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestDTO(*request))
}

// CancelRequest withdraws the current user's pending request
func (h *PTORequestHandler) CancelRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.ptoService.CancelRequest(c.Request.Context(), requestID, actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestDTO(*request))
}

// DecideRequest approves or denies a pending request
func (h *PTORequestHandler) DecideRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.DecidePTORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	request, err := h.ptoService.DecideRequest(c.Request.Context(), requestID, actor.ID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestDTO(*request))
}
