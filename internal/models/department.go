package models

import (
	"time"

	"gorm.io/gorm"
)

type Department struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	// Named apart from User.ManagerID so gorm resolves Manager as belongs-to
	ManagerUserID *uint64        `gorm:"column:manager_id;index" json:"manager_id"`
	ApproverID    *uint64        `gorm:"index" json:"approver_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Manager  *User  `gorm:"foreignKey:ManagerUserID" json:"manager,omitempty"`
	Approver *User  `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Users    []User `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`
}
