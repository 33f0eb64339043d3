package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pto-approval-api/internal/dto"
	apierrors "github.com/yukikurage/pto-approval-api/internal/errors"
	"github.com/yukikurage/pto-approval-api/internal/middleware"
	"github.com/yukikurage/pto-approval-api/internal/services"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// TeamHandler serves the manager and approver dashboards
type TeamHandler struct {
	ptoService       *services.PTOService
	directoryService *services.DirectoryService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(ptoService *services.PTOService, directoryService *services.DirectoryService) *TeamHandler {
	return &TeamHandler{
		ptoService:       ptoService,
		directoryService: directoryService,
	}
}

// ListTeam returns the manager's direct reports with their balances
func (h *TeamHandler) ListTeam(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.directoryService.TeamBalances(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// ListTeamRequests returns requests of the manager's reports
func (h *TeamHandler) ListTeamRequests(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	input, params, ok := listInputFromQuery(c)
	if !ok {
		return
	}

	requests, total, err := h.ptoService.ListTeamRequests(c.Request.Context(), actor.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestListResponse(requests, params, total))
}

// ListDepartments returns the departments the approver handles, with members
func (h *TeamHandler) ListDepartments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	departments, err := h.directoryService.DepartmentOverview(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": dto.ToDepartmentDTOs(departments),
	})
}

// ListDepartmentRequests returns requests from the approver's departments
func (h *TeamHandler) ListDepartmentRequests(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	input, params, ok := listInputFromQuery(c)
	if !ok {
		return
	}

	requests, total, err := h.ptoService.ListDepartmentRequests(c.Request.Context(), actor.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestListResponse(requests, params, total))
}

// listInputFromQuery reads status, user_id, department_id and pagination
func listInputFromQuery(c *gin.Context) (services.ListRequestsInput, utils.Page, bool) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return services.ListRequestsInput{}, utils.Page{}, false
	}
	userID, ok := parseOptionalIDQuery(c, "user_id")
	if !ok {
		return services.ListRequestsInput{}, utils.Page{}, false
	}
	departmentID, ok := parseOptionalIDQuery(c, "department_id")
	if !ok {
		return services.ListRequestsInput{}, utils.Page{}, false
	}

	params := utils.PageFromQuery(c)

	return services.ListRequestsInput{
		Status:       status,
		UserID:       userID,
		DepartmentID: departmentID,
		Page:         params.Number,
		PageSize:     params.Size,
	}, params, true
}
