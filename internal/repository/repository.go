package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/pto-approval-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users matching the filter, ordered by name
	List(filter UserFilter) ([]models.User, error)

	// UpdateFields updates the given columns of a user
	UpdateFields(id uint64, fields map[string]interface{}) error

	// UpdateRole changes a user's role and drops department links the new role
	// no longer qualifies for
	UpdateRole(id uint64, role models.UserRole) error

	// Delete removes a user, their requests, and every reference to them
	Delete(id uint64) error
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	ManagerID     *uint64
	DepartmentIDs []uint64
	Role          *models.UserRole
	Status        *models.UserStatus
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	// Create creates a new department
	Create(department *models.Department) error

	// FindByID finds a department by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Department, error)

	// FindByName finds a department by its unique name
	FindByName(name string) (*models.Department, error)

	// List lists all departments with manager and approver preloaded
	List() ([]models.Department, error)

	// ListByApprover lists departments approved by the user, members preloaded
	ListByApprover(approverID uint64) ([]models.Department, error)

	// Delete detaches members and removes the department
	Delete(id uint64) error

	// AssignManager sets the department manager, clearing any other department
	// the same manager was assigned to
	AssignManager(departmentID uint64, managerID *uint64) error

	// AssignApprover sets the department approver
	AssignApprover(departmentID uint64, approverID *uint64) error
}

// PTORequestRepository defines the interface for PTO request data access
type PTORequestRepository interface {
	// Create creates a new request
	Create(request *models.PTORequest) error

	// FindByID finds a request by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.PTORequest, error)

	// List retrieves requests with filtering and pagination, newest first
	List(filter PTORequestFilter) ([]models.PTORequest, int64, error)

	// Transition moves a PENDING request to a terminal status and applies the
	// balance debit, atomically
	Transition(transition Transition) error
}

// PTORequestFilter holds filtering options for listing requests
type PTORequestFilter struct {
	UserID       *uint64
	ManagerID    *uint64
	ApproverID   *uint64
	DepartmentID *uint64
	Status       *models.RequestStatus
	Page         int
	PageSize     int
}

// Transition describes a status change of a pending request
type Transition struct {
	RequestID   uint64
	To          models.RequestStatus
	DecidedByID *uint64
	DecidedAt   time.Time

	// Debit is charged to UserID when positive
	UserID uint64
	Debit  decimal.Decimal
}
