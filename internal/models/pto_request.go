package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusDenied   RequestStatus = "DENIED"
)

// Terminal reports whether no further transitions are allowed
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusDenied
}

type PTORequest struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	UserID      uint64          `gorm:"not null;index" json:"user_id"`
	StartDate   time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time       `gorm:"type:date;not null" json:"end_date"`
	Status      RequestStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes       string          `gorm:"type:text" json:"notes"`
	Hours       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"hours"`
	DecidedByID *uint64         `json:"decided_by_id"`
	DecidedAt   *time.Time      `json:"decided_at"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	User      User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DecidedBy *User `gorm:"foreignKey:DecidedByID" json:"decided_by,omitempty"`
}

// TableName pins the table name used by raw queries and indexes
func (PTORequest) TableName() string {
	return "pto_requests"
}
