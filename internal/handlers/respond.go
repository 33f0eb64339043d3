package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/pto-approval-api/internal/errors"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/services"
)

// respondServiceError maps service sentinel errors to API errors
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrActorNotFound),
		errors.Is(err, services.ErrDepartmentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		apierrors.InvalidState(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAccountPending):
		apierrors.AccountPending(c)
	case errors.Is(err, services.ErrInsufficientBalance):
		apierrors.InsufficientBalance(c, err.Error())
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrPastStartDate):
		apierrors.InvalidRange(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDepartmentNameTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrCannotDeleteSelf):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNotesTooLong),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrManagerRoleRequired),
		errors.Is(err, services.ErrApproverRoleRequired),
		errors.Is(err, services.ErrSelfManager),
		errors.Is(err, services.ErrNegativeBalance),
		errors.Is(err, services.ErrDepartmentNameEmpty),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrDraftTextEmpty),
		errors.Is(err, services.ErrDraftTextTooLong):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOperationFailed):
		// Cause already logged by the service
		apierrors.OperationFailed(c)
	default:
		logging.FromContext(c.Request.Context(), nil).WithError(err).Error("Unhandled service error")
		apierrors.InternalError(c, "")
	}
}

// respondBindingError reports a rejected request body. Validation failures
// carry the failed rule per field in details.
func respondBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	details := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", details)
}

// parseIDParam reads a numeric path parameter, responding 400 when invalid
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseOptionalIDQuery reads an optional numeric query parameter
func parseOptionalIDQuery(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// parseStatusQuery reads the optional ?status= filter
func parseStatusQuery(c *gin.Context) (*models.RequestStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}

	status := models.RequestStatus(raw)
	switch status {
	case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusDenied:
		return &status, true
	default:
		apierrors.BadRequest(c, "Invalid status filter")
		return nil, false
	}
}
