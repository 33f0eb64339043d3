package dto

import (
	"github.com/shopspring/decimal"
	"github.com/yukikurage/pto-approval-api/internal/models"
)

// CreateUserRequest is the body of POST /api/admin/users
type CreateUserRequest struct {
	Email        string           `json:"email" binding:"required,email"`
	Name         string           `json:"name" binding:"required"`
	Password     string           `json:"password"`
	Role         models.UserRole  `json:"role"`
	PTOBalance   *decimal.Decimal `json:"pto_balance"`
	DepartmentID *uint64          `json:"department_id"`
}

// UpdateRoleRequest is the body of PUT /api/admin/users/:id/role
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

// UpdateBalanceRequest is the body of PUT /api/admin/users/:id/balance
type UpdateBalanceRequest struct {
	PTOBalance *decimal.Decimal `json:"pto_balance" binding:"required"`
}

// AssignDepartmentRequest sets or clears (null) a user's department
type AssignDepartmentRequest struct {
	DepartmentID *uint64 `json:"department_id"`
}

// SetManagerRequest sets or clears (null) a user's manager
type SetManagerRequest struct {
	ManagerID *uint64 `json:"manager_id"`
}

// CreateDepartmentRequest is the body of POST /api/admin/departments
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// AssignDepartmentUserRequest sets or clears (null) a department manager or approver
type AssignDepartmentUserRequest struct {
	UserID *uint64 `json:"user_id"`
}
