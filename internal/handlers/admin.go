package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/pto-approval-api/internal/dto"
	apierrors "github.com/yukikurage/pto-approval-api/internal/errors"
	"github.com/yukikurage/pto-approval-api/internal/export"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/middleware"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/repository"
	"github.com/yukikurage/pto-approval-api/internal/services"
)

// AdminHandler serves /api/admin: directory management and the global
// request view.
type AdminHandler struct {
	directoryService *services.DirectoryService
	ptoService       *services.PTOService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(directoryService *services.DirectoryService, ptoService *services.PTOService) *AdminHandler {
	return &AdminHandler{
		directoryService: directoryService,
		ptoService:       ptoService,
	}
}

// ListUsers lists users, optionally filtered by ?role=, ?status= and ?department_id=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter repository.UserFilter

	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		if !role.Valid() {
			apierrors.BadRequest(c, "Invalid role filter")
			return
		}
		filter.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status := models.UserStatus(raw)
		if status != models.UserStatusPending && status != models.UserStatusActive {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	departmentID, ok := parseOptionalIDQuery(c, "department_id")
	if !ok {
		return
	}
	if departmentID != nil {
		filter.DepartmentIDs = []uint64{*departmentID}
	}

	users, err := h.directoryService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// CreateUser creates an active account
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	balance := decimal.Zero
	if req.PTOBalance != nil {
		balance = *req.PTOBalance
	}

	result, err := h.directoryService.CreateUser(c.Request.Context(), services.CreateUserInput{
		Email:        req.Email,
		Name:         req.Name,
		Password:     req.Password,
		Role:         req.Role,
		PTOBalance:   balance,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatedUserDTO{
		UserDTO:           dto.ToUserDTO(*result.User),
		TemporaryPassword: result.TemporaryPassword,
	})
}

// ActivateUser approves a pending account
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.directoryService.ActivateUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateRole changes a user's role
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.directoryService.SetRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// AssignDepartment moves a user into a department
func (h *AdminHandler) AssignDepartment(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.directoryService.AssignDepartment(c.Request.Context(), userID, req.DepartmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// SetManager sets a user's direct manager
func (h *AdminHandler) SetManager(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.directoryService.SetManager(c.Request.Context(), userID, req.ManagerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateBalance overwrites a user's PTO balance
func (h *AdminHandler) UpdateBalance(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.directoryService.UpdateBalance(c.Request.Context(), userID, *req.PTOBalance)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser deletes a user and their requests
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.directoryService.DeleteUser(c.Request.Context(), userID, actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDepartments lists all departments
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	departments, err := h.directoryService.ListDepartments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": dto.ToDepartmentDTOs(departments),
	})
}

// CreateDepartment creates a department
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	department, err := h.directoryService.CreateDepartment(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDepartmentDTO(*department))
}

// DeleteDepartment deletes a department
func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	departmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.directoryService.DeleteDepartment(c.Request.Context(), departmentID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignDepartmentManager sets or clears the department manager
func (h *AdminHandler) AssignDepartmentManager(c *gin.Context) {
	departmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignDepartmentUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	department, err := h.directoryService.AssignDepartmentManager(c.Request.Context(), departmentID, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDepartmentDTO(*department))
}

// AssignDepartmentApprover sets or clears the department approver
func (h *AdminHandler) AssignDepartmentApprover(c *gin.Context) {
	departmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignDepartmentUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	department, err := h.directoryService.AssignDepartmentApprover(c.Request.Context(), departmentID, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDepartmentDTO(*department))
}

// ListRequests lists every request with optional filters
func (h *AdminHandler) ListRequests(c *gin.Context) {
	input, params, ok := listInputFromQuery(c)
	if !ok {
		return
	}

	requests, total, err := h.ptoService.ListAllRequests(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPTORequestListResponse(requests, params, total))
}

// ExportRequests downloads the filtered requests as an xlsx workbook.
// Pagination is ignored; every matching request is exported.
func (h *AdminHandler) ExportRequests(c *gin.Context) {
	input, _, ok := listInputFromQuery(c)
	if !ok {
		return
	}
	input.Page, input.PageSize = 0, 0

	requests, _, err := h.ptoService.ListAllRequests(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRequests(&buf, requests); err != nil {
		logging.FromContext(c.Request.Context(), nil).WithError(err).Error("Failed to export PTO requests")
		apierrors.InternalError(c, "Failed to export requests")
		return
	}

	filename := fmt.Sprintf("pto-requests-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
