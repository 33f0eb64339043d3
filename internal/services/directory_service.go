package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/pto-approval-api/internal/constants"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/repository"
	"github.com/yukikurage/pto-approval-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentNameTaken  = errors.New("department name already exists")
	ErrDepartmentNameEmpty  = errors.New("department name is required")
	ErrInvalidRole          = errors.New("invalid role")
	ErrManagerRoleRequired  = errors.New("user must have the MANAGER role")
	ErrApproverRoleRequired = errors.New("user must have the APPROVER role")
	ErrSelfManager          = errors.New("user cannot be their own manager")
	ErrNegativeBalance      = errors.New("PTO balance cannot be negative")
	ErrCannotDeleteSelf     = errors.New("cannot delete your own account")
)

// DirectoryService holds the administrative operations over users and
// departments.
type DirectoryService struct {
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
	logger         *logrus.Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(userRepo repository.UserRepository, departmentRepo repository.DepartmentRepository, logger *logrus.Logger) *DirectoryService {
	return &DirectoryService{
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

// CreateUserInput represents input for creating an account as an admin
type CreateUserInput struct {
	Email        string
	Name         string
	Password     string
	Role         models.UserRole
	PTOBalance   decimal.Decimal
	DepartmentID *uint64
}

// CreateUserResult carries the new user and, when one was generated, the
// temporary password to hand over
type CreateUserResult struct {
	User              *models.User
	TemporaryPassword string
}

// CreateUser creates an ACTIVE account
func (s *DirectoryService) CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserResult, error) {
	email, name, err := normalizeIdentity(input.Email, input.Name)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if input.PTOBalance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	password := input.Password
	temporary := ""
	if password == "" {
		temporary, err = utils.GenerateTemporaryPassword(constants.TemporaryPasswordLength)
		if err != nil {
			return nil, s.failed(ctx, err, "generate temporary password")
		}
		password = temporary
	} else if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if input.DepartmentID != nil {
		if _, err := s.findDepartment(ctx, *input.DepartmentID); err != nil {
			return nil, err
		}
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.failed(ctx, err, "check email")
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         role,
		Status:       models.UserStatusActive,
		PTOBalance:   input.PTOBalance,
		DepartmentID: input.DepartmentID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, s.failed(ctx, err, "create user")
	}

	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User created by admin")

	return &CreateUserResult{User: user, TemporaryPassword: temporary}, nil
}

// ActivateUser moves a PENDING account to ACTIVE
func (s *DirectoryService) ActivateUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive() {
		return user, nil
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"status": models.UserStatusActive}); err != nil {
		return nil, s.failed(ctx, err, "activate user")
	}

	logging.FromContext(ctx, s.logger).WithField("user_id", userID).Info("User activated")

	return s.findUser(ctx, userID)
}

// SetRole changes a user's role. Department manager/approver links the new
// role does not qualify for are dropped.
func (s *DirectoryService) SetRole(ctx context.Context, userID uint64, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return nil, s.failed(ctx, err, "update role")
	}

	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"user_id": userID,
		"role":    role,
	}).Info("User role changed")

	return s.findUser(ctx, userID)
}

// AssignDepartment moves a user into a department, or out of any when
// departmentID is nil
func (s *DirectoryService) AssignDepartment(ctx context.Context, userID uint64, departmentID *uint64) (*models.User, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	if departmentID != nil {
		if _, err := s.findDepartment(ctx, *departmentID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"department_id": departmentID}); err != nil {
		return nil, s.failed(ctx, err, "assign department")
	}

	return s.findUser(ctx, userID)
}

// SetManager sets a user's direct manager, or clears it when managerID is nil
func (s *DirectoryService) SetManager(ctx context.Context, userID uint64, managerID *uint64) (*models.User, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	if managerID != nil {
		if *managerID == userID {
			return nil, ErrSelfManager
		}
		manager, err := s.findUser(ctx, *managerID)
		if err != nil {
			return nil, err
		}
		if manager.Role != models.RoleManager {
			return nil, ErrManagerRoleRequired
		}
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"manager_id": managerID}); err != nil {
		return nil, s.failed(ctx, err, "set manager")
	}

	return s.findUser(ctx, userID)
}

// UpdateBalance overwrites a user's PTO balance (hours)
func (s *DirectoryService) UpdateBalance(ctx context.Context, userID uint64, balance decimal.Decimal) (*models.User, error) {
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"pto_balance": balance}); err != nil {
		return nil, s.failed(ctx, err, "update balance")
	}

	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"user_id": userID,
		"balance": balance.String(),
	}).Info("PTO balance updated")

	return s.findUser(ctx, userID)
}

// DeleteUser removes a user together with their requests
func (s *DirectoryService) DeleteUser(ctx context.Context, userID, actorID uint64) error {
	if userID == actorID {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return s.failed(ctx, err, "delete user")
	}

	logging.FromContext(ctx, s.logger).WithField("user_id", userID).Info("User deleted")
	return nil
}

// ListUsers lists users, optionally filtered
func (s *DirectoryService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	users, err := s.userRepo.List(filter)
	if err != nil {
		return nil, s.failed(ctx, err, "list users")
	}
	return users, nil
}

// CreateDepartment creates a department with a unique name
func (s *DirectoryService) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrDepartmentNameEmpty
	}

	if _, err := s.departmentRepo.FindByName(name); err == nil {
		return nil, ErrDepartmentNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.failed(ctx, err, "check department name")
	}

	department := &models.Department{Name: name}
	if err := s.departmentRepo.Create(department); err != nil {
		return nil, s.failed(ctx, err, "create department")
	}

	logging.FromContext(ctx, s.logger).WithField("department_id", department.ID).Info("Department created")

	return department, nil
}

// DeleteDepartment deletes a department; its members become unassigned
func (s *DirectoryService) DeleteDepartment(ctx context.Context, departmentID uint64) error {
	if err := s.departmentRepo.Delete(departmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return s.failed(ctx, err, "delete department")
	}

	logging.FromContext(ctx, s.logger).WithField("department_id", departmentID).Info("Department deleted")
	return nil
}

// AssignDepartmentManager sets the department manager. A manager runs at most
// one department, so any previous assignment is cleared.
func (s *DirectoryService) AssignDepartmentManager(ctx context.Context, departmentID uint64, managerID *uint64) (*models.Department, error) {
	if _, err := s.findDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	if managerID != nil {
		manager, err := s.findUser(ctx, *managerID)
		if err != nil {
			return nil, err
		}
		if manager.Role != models.RoleManager {
			return nil, ErrManagerRoleRequired
		}
	}

	if err := s.departmentRepo.AssignManager(departmentID, managerID); err != nil {
		return nil, s.failed(ctx, err, "assign department manager")
	}

	return s.findDepartment(ctx, departmentID, "Manager", "Approver")
}

// AssignDepartmentApprover sets the department approver
func (s *DirectoryService) AssignDepartmentApprover(ctx context.Context, departmentID uint64, approverID *uint64) (*models.Department, error) {
	if _, err := s.findDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	if approverID != nil {
		approver, err := s.findUser(ctx, *approverID)
		if err != nil {
			return nil, err
		}
		if approver.Role != models.RoleApprover {
			return nil, ErrApproverRoleRequired
		}
	}

	if err := s.departmentRepo.AssignApprover(departmentID, approverID); err != nil {
		return nil, s.failed(ctx, err, "assign department approver")
	}

	return s.findDepartment(ctx, departmentID, "Manager", "Approver")
}

// ListDepartments lists all departments
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departmentRepo.List()
	if err != nil {
		return nil, s.failed(ctx, err, "list departments")
	}
	return departments, nil
}

// TeamBalances lists a manager's direct reports with their balances
func (s *DirectoryService) TeamBalances(ctx context.Context, managerID uint64) ([]models.User, error) {
	return s.ListUsers(ctx, repository.UserFilter{ManagerID: &managerID})
}

// DepartmentOverview lists the departments an approver handles, with members
func (s *DirectoryService) DepartmentOverview(ctx context.Context, approverID uint64) ([]models.Department, error) {
	departments, err := s.departmentRepo.ListByApprover(approverID)
	if err != nil {
		return nil, s.failed(ctx, err, "list approver departments")
	}
	return departments, nil
}

func (s *DirectoryService) findUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, "Department", "Manager")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.failed(ctx, err, "find user")
	}
	return user, nil
}

func (s *DirectoryService) findDepartment(ctx context.Context, id uint64, preload ...string) (*models.Department, error) {
	department, err := s.departmentRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, s.failed(ctx, err, "find department")
	}
	return department, nil
}

func (s *DirectoryService) failed(ctx context.Context, err error, op string) error {
	logging.FromContext(ctx, s.logger).WithError(err).WithField("operation", op).Error("Directory operation failed")
	return ErrOperationFailed
}
