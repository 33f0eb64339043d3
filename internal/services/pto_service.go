package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/pto-approval-api/internal/constants"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/notify"
	"github.com/yukikurage/pto-approval-api/internal/repository"
	"github.com/yukikurage/pto-approval-api/internal/utils"
	"gorm.io/gorm"
)

// PTOService runs the PTO request lifecycle: creation, decisions by
// admins/managers/approvers, cancellation by the owner, and scoped listings.
type PTOService struct {
	userRepo        repository.UserRepository
	requestRepo     repository.PTORequestRepository
	ledger          *Ledger
	gate            Gate
	dispatcher      notify.Dispatcher
	logger          *logrus.Logger
	reserveOnCreate bool
	now             func() time.Time
}

// PTOServiceOptions tunes PTOService behaviour
type PTOServiceOptions struct {
	// ReserveOnCreate counts pending requests against the balance at creation
	ReserveOnCreate bool
	// Now overrides the clock
	Now func() time.Time
}

// NewPTOService creates a new PTOService
func NewPTOService(
	userRepo repository.UserRepository,
	requestRepo repository.PTORequestRepository,
	ledger *Ledger,
	gate Gate,
	dispatcher notify.Dispatcher,
	logger *logrus.Logger,
	opts PTOServiceOptions,
) *PTOService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &PTOService{
		userRepo:        userRepo,
		requestRepo:     requestRepo,
		ledger:          ledger,
		gate:            gate,
		dispatcher:      dispatcher,
		logger:          logger,
		reserveOnCreate: opts.ReserveOnCreate,
		now:             now,
	}
}

// CreateRequestInput represents input for creating a PTO request
type CreateRequestInput struct {
	UserID    uint64
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

// ListRequestsInput represents filters for listing requests
type ListRequestsInput struct {
	Status       *models.RequestStatus
	UserID       *uint64
	DepartmentID *uint64
	Page         int
	PageSize     int
}

// CreateRequest validates and stores a new PENDING request
func (s *PTOService) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.PTORequest, error) {
	start := utils.NormalizeDate(input.StartDate)
	end := utils.NormalizeDate(input.EndDate)

	if start.After(end) {
		return nil, ErrInvalidRange
	}
	if start.Before(utils.NormalizeDate(s.now())) {
		return nil, ErrPastStartDate
	}

	notes := strings.TrimSpace(input.Notes)
	if len(notes) > constants.MaxNotesLength {
		return nil, ErrNotesTooLong
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.failed(ctx, err, "find requesting user")
	}
	if !user.IsActive() {
		return nil, ErrAccountPending
	}

	cost := s.ledger.Cost(start, end)
	available, err := s.available(ctx, user)
	if err != nil {
		return nil, err
	}

	if cost.GreaterThan(available) {
		return nil, fmt.Errorf("%w: request needs %s hours, but only %s hours available",
			ErrInsufficientBalance, cost.String(), decimal.Max(available, decimal.Zero).String())
	}

	request := &models.PTORequest{
		UserID:    user.ID,
		StartDate: start,
		EndDate:   end,
		Status:    models.RequestStatusPending,
		Notes:     notes,
		Hours:     cost,
	}

	if err := s.requestRepo.Create(request); err != nil {
		return nil, s.failed(ctx, err, "create request")
	}
	request.User = *user

	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"pto_request_id": request.ID,
		"user_id":        user.ID,
		"hours":          cost.String(),
	}).Info("PTO request created")

	s.notify(ctx, request, "Your PTO request has been submitted for review.")

	return request, nil
}

// DecideRequest approves or denies a pending request on behalf of actorID.
// Approval debits the owner's balance in the same transaction as the status change.
func (s *PTOService) DecideRequest(ctx context.Context, requestID, actorID uint64, status models.RequestStatus) (*models.PTORequest, error) {
	if status != models.RequestStatusApproved && status != models.RequestStatusDenied {
		return nil, ErrInvalidStatus
	}

	actor, err := s.userRepo.FindByID(actorID, "ApprovedDepartments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, s.failed(ctx, err, "find acting user")
	}
	if !actor.IsActive() {
		return nil, ErrAccountPending
	}

	request, err := s.findRequest(ctx, requestID, "User")
	if err != nil {
		return nil, err
	}

	if request.Status.Terminal() {
		return nil, ErrInvalidState
	}
	if !s.gate.CanAct(actor, request, ActionDecide) {
		return nil, ErrForbidden
	}

	// Charge what the request showed at creation
	debit := decimal.Zero
	if status == models.RequestStatusApproved {
		debit = request.Hours
	}

	decidedAt := s.now().UTC()
	err = s.requestRepo.Transition(repository.Transition{
		RequestID:   request.ID,
		To:          status,
		DecidedByID: &actor.ID,
		DecidedAt:   decidedAt,
		UserID:      request.UserID,
		Debit:       debit,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, ErrInvalidState
		case errors.Is(err, repository.ErrBalanceTooLow):
			return nil, fmt.Errorf("%w: approval needs %s hours, more than the remaining balance",
				ErrInsufficientBalance, debit.String())
		default:
			return nil, s.failed(ctx, err, "apply decision")
		}
	}

	request.Status = status
	request.DecidedByID = &actor.ID
	request.DecidedAt = &decidedAt
	if debit.IsPositive() {
		if owner, err := s.userRepo.FindByID(request.UserID); err == nil {
			request.User.PTOBalance = owner.PTOBalance
		}
	}

	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"pto_request_id": request.ID,
		"actor_id":       actor.ID,
		"actor_role":     actor.Role,
		"status":         status,
		"debit":          debit.String(),
	}).Info("PTO request decided")

	s.notify(ctx, request, decisionMessage(actor.Role, status))

	return request, nil
}

// CancelRequest lets the owner withdraw a pending request. It ends in DENIED
// with no balance effect.
func (s *PTOService) CancelRequest(ctx context.Context, requestID, userID uint64) (*models.PTORequest, error) {
	request, err := s.findRequest(ctx, requestID, "User")
	if err != nil {
		return nil, err
	}

	if !s.gate.CanAct(&models.User{ID: userID}, request, ActionCancel) {
		return nil, ErrForbidden
	}
	if request.Status.Terminal() {
		return nil, ErrInvalidState
	}

	decidedAt := s.now().UTC()
	err = s.requestRepo.Transition(repository.Transition{
		RequestID:   request.ID,
		To:          models.RequestStatusDenied,
		DecidedByID: &userID,
		DecidedAt:   decidedAt,
		UserID:      request.UserID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidState
		}
		return nil, s.failed(ctx, err, "cancel request")
	}

	request.Status = models.RequestStatusDenied
	request.DecidedByID = &userID
	request.DecidedAt = &decidedAt

	logging.FromContext(ctx, s.logger).WithField("pto_request_id", request.ID).Info("PTO request cancelled")

	s.notify(ctx, request, "Your PTO request has been cancelled.")

	return request, nil
}

// GetRequest returns a request visible to actorID: the owner, or anyone who
// may decide it. Invisible requests are reported as not found.
func (s *PTOService) GetRequest(ctx context.Context, requestID, actorID uint64) (*models.PTORequest, error) {
	request, err := s.findRequest(ctx, requestID, "User", "User.Department", "DecidedBy")
	if err != nil {
		return nil, err
	}
	if request.UserID == actorID {
		return request, nil
	}

	actor, err := s.userRepo.FindByID(actorID, "ApprovedDepartments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, s.failed(ctx, err, "find acting user")
	}
	if !s.gate.CanAct(actor, request, ActionDecide) {
		return nil, ErrRequestNotFound
	}

	return request, nil
}

// ListOwnRequests returns the user's own history, newest first
func (s *PTOService) ListOwnRequests(ctx context.Context, userID uint64, input ListRequestsInput) ([]models.PTORequest, int64, error) {
	return s.list(ctx, repository.PTORequestFilter{
		UserID:   &userID,
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
}

// ListTeamRequests returns requests of the manager's direct reports
func (s *PTOService) ListTeamRequests(ctx context.Context, managerID uint64, input ListRequestsInput) ([]models.PTORequest, int64, error) {
	return s.list(ctx, repository.PTORequestFilter{
		ManagerID: &managerID,
		UserID:    input.UserID,
		Status:    input.Status,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
}

// ListDepartmentRequests returns requests from departments the approver handles
func (s *PTOService) ListDepartmentRequests(ctx context.Context, approverID uint64, input ListRequestsInput) ([]models.PTORequest, int64, error) {
	return s.list(ctx, repository.PTORequestFilter{
		ApproverID:   &approverID,
		UserID:       input.UserID,
		DepartmentID: input.DepartmentID,
		Status:       input.Status,
		Page:         input.Page,
		PageSize:     input.PageSize,
	})
}

// ListAllRequests returns every request (admin view)
func (s *PTOService) ListAllRequests(ctx context.Context, input ListRequestsInput) ([]models.PTORequest, int64, error) {
	return s.list(ctx, repository.PTORequestFilter{
		UserID:       input.UserID,
		DepartmentID: input.DepartmentID,
		Status:       input.Status,
		Page:         input.Page,
		PageSize:     input.PageSize,
	})
}

// Quote is the price of a prospective request
type Quote struct {
	StartDate    time.Time
	EndDate      time.Time
	BusinessDays int
	HoursPerDay  decimal.Decimal
	Hours        decimal.Decimal
	Available    decimal.Decimal
}

// QuoteRequest prices [start, end] for userID without storing anything
func (s *PTOService) QuoteRequest(ctx context.Context, userID uint64, start, end time.Time) (*Quote, error) {
	start = utils.NormalizeDate(start)
	end = utils.NormalizeDate(end)
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.failed(ctx, err, "find requesting user")
	}

	available, err := s.available(ctx, user)
	if err != nil {
		return nil, err
	}

	return &Quote{
		StartDate:    start,
		EndDate:      end,
		BusinessDays: BusinessDays(start, end),
		HoursPerDay:  s.ledger.HoursPerDay(),
		Hours:        s.ledger.Cost(start, end),
		Available:    decimal.Max(available, decimal.Zero),
	}, nil
}

// available is the spendable balance, less pending requests in reserve mode
func (s *PTOService) available(ctx context.Context, user *models.User) (decimal.Decimal, error) {
	available := s.ledger.Available(user)
	if !s.reserveOnCreate {
		return available, nil
	}

	pending, _, err := s.requestRepo.List(repository.PTORequestFilter{
		UserID: &user.ID,
		Status: statusPtr(models.RequestStatusPending),
	})
	if err != nil {
		return decimal.Zero, s.failed(ctx, err, "list pending requests")
	}
	return available.Sub(s.ledger.Reserved(pending)), nil
}

func (s *PTOService) list(ctx context.Context, filter repository.PTORequestFilter) ([]models.PTORequest, int64, error) {
	requests, total, err := s.requestRepo.List(filter)
	if err != nil {
		return nil, 0, s.failed(ctx, err, "list requests")
	}
	return requests, total, nil
}

func (s *PTOService) findRequest(ctx context.Context, id uint64, preload ...string) (*models.PTORequest, error) {
	request, err := s.requestRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, s.failed(ctx, err, "find request")
	}
	return request, nil
}

// notify sends the status message after the change is committed. Failures are
// logged and never undo the change.
func (s *PTOService) notify(ctx context.Context, request *models.PTORequest, message string) {
	if s.dispatcher == nil {
		return
	}

	err := s.dispatcher.Send(ctx, notify.Notification{
		To:        request.User.Email,
		UserName:  request.User.Name,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    request.Status,
		Message:   message,
		Notes:     request.Notes,
	})
	if err != nil {
		logging.FromContext(ctx, s.logger).WithError(err).WithFields(logrus.Fields{
			"pto_request_id": request.ID,
			"status":         request.Status,
		}).Warn("Failed to send PTO notification")
	}
}

func (s *PTOService) failed(ctx context.Context, err error, op string) error {
	logging.FromContext(ctx, s.logger).WithError(err).WithField("operation", op).Error("PTO operation failed")
	return ErrOperationFailed
}

func decisionMessage(role models.UserRole, status models.RequestStatus) string {
	verb := strings.ToLower(string(status))

	switch role {
	case models.RoleAdmin:
		return fmt.Sprintf("Your PTO request has been %s by the admin.", verb)
	case models.RoleManager:
		return fmt.Sprintf("Your PTO request has been %s by your manager.", verb)
	case models.RoleApprover:
		return fmt.Sprintf("Your PTO request has been %s by the department approver.", verb)
	default:
		return fmt.Sprintf("Your PTO request has been %s.", verb)
	}
}

func statusPtr(status models.RequestStatus) *models.RequestStatus {
	return &status
}
