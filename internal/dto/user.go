package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/pto-approval-api/internal/models"
)

// UserSummaryDTO is the short form of a user embedded in other responses
type UserSummaryDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           uint64            `json:"id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Role         models.UserRole   `json:"role"`
	Status       models.UserStatus `json:"status"`
	PTOBalance   decimal.Decimal   `json:"pto_balance"`
	DepartmentID *uint64           `json:"department_id"`
	ManagerID    *uint64           `json:"manager_id"`
	Department   *DepartmentRefDTO `json:"department,omitempty"`
	Manager      *UserSummaryDTO   `json:"manager,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// CreatedUserDTO is returned when an admin creates an account
type CreatedUserDTO struct {
	UserDTO
	TemporaryPassword string `json:"temporary_password,omitempty"`
}

// DepartmentRefDTO is the short form of a department
type DepartmentRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// DepartmentDTO represents a department in API responses
type DepartmentDTO struct {
	ID         uint64          `json:"id"`
	Name       string          `json:"name"`
	ManagerID  *uint64         `json:"manager_id"`
	ApproverID *uint64         `json:"approver_id"`
	Manager    *UserSummaryDTO `json:"manager,omitempty"`
	Approver   *UserSummaryDTO `json:"approver,omitempty"`
	Members    []UserDTO       `json:"members,omitempty"`
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Status:       user.Status,
		PTOBalance:   user.PTOBalance,
		DepartmentID: user.DepartmentID,
		ManagerID:    user.ManagerID,
		CreatedAt:    user.CreatedAt,
	}

	// Include department if preloaded
	if user.Department != nil {
		dto.Department = &DepartmentRefDTO{ID: user.Department.ID, Name: user.Department.Name}
	}

	// Include manager if preloaded
	if user.Manager != nil {
		manager := ToUserSummaryDTO(*user.Manager)
		dto.Manager = &manager
	}

	return dto
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}

// ToDepartmentDTO converts a Department model to DepartmentDTO
func ToDepartmentDTO(department models.Department) DepartmentDTO {
	dto := DepartmentDTO{
		ID:         department.ID,
		Name:       department.Name,
		ManagerID:  department.ManagerUserID,
		ApproverID: department.ApproverID,
	}

	if department.Manager != nil {
		manager := ToUserSummaryDTO(*department.Manager)
		dto.Manager = &manager
	}
	if department.Approver != nil {
		approver := ToUserSummaryDTO(*department.Approver)
		dto.Approver = &approver
	}
	if len(department.Users) > 0 {
		dto.Members = ToUserDTOs(department.Users)
	}

	return dto
}

// ToDepartmentDTOs converts a slice of departments
func ToDepartmentDTOs(departments []models.Department) []DepartmentDTO {
	items := make([]DepartmentDTO, len(departments))
	for i, department := range departments {
		items[i] = ToDepartmentDTO(department)
	}
	return items
}
