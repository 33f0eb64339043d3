package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser     UserRole = "USER"
	RoleManager  UserRole = "MANAGER"
	RoleApprover UserRole = "APPROVER"
	RoleAdmin    UserRole = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleApprover, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
)

type User struct {
	ID           uint64          `gorm:"primarykey" json:"id"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string          `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole        `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Status       UserStatus      `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PTOBalance   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"pto_balance"`
	DepartmentID *uint64         `gorm:"index" json:"department_id"`
	ManagerID    *uint64         `gorm:"index" json:"manager_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Department          *Department  `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Manager             *User        `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	ApprovedDepartments []Department `gorm:"foreignKey:ApproverID" json:"-"`
	Requests            []PTORequest `gorm:"foreignKey:UserID" json:"-"`
}

// IsActive reports whether the account has been approved by an admin
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
