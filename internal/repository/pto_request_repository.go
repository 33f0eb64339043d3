package repository

import (
	"errors"

	"github.com/yukikurage/pto-approval-api/internal/database"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrStatusConflict is returned when the request was no longer PENDING at update time.
	ErrStatusConflict = errors.New("pto request repository: request is no longer pending")
	// ErrBalanceTooLow is returned when the owner's balance cannot cover the debit.
	ErrBalanceTooLow = errors.New("pto request repository: balance too low for debit")
)

// GormPTORequestRepository is a GORM implementation of PTORequestRepository
type GormPTORequestRepository struct {
	db *gorm.DB
}

// NewPTORequestRepository creates a new PTORequestRepository
func NewPTORequestRepository(db *gorm.DB) PTORequestRepository {
	return &GormPTORequestRepository{db: db}
}

// Create creates a new request
func (r *GormPTORequestRepository) Create(request *models.PTORequest) error {
	return r.db.Create(request).Error
}

// FindByID finds a request by ID with optional preloading
func (r *GormPTORequestRepository) FindByID(id uint64, preload ...string) (*models.PTORequest, error) {
	var request models.PTORequest
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// List retrieves requests with filtering and pagination
func (r *GormPTORequestRepository) List(filter PTORequestFilter) ([]models.PTORequest, int64, error) {
	query := r.db.Model(&models.PTORequest{})

	if filter.ManagerID != nil || filter.ApproverID != nil || filter.DepartmentID != nil {
		query = query.Joins("JOIN users ON users.id = pto_requests.user_id")
	}

	if filter.UserID != nil {
		query = query.Where("pto_requests.user_id = ?", *filter.UserID)
	}
	if filter.ManagerID != nil {
		query = query.Where("users.manager_id = ?", *filter.ManagerID)
	}
	if filter.ApproverID != nil {
		approvedDepartments := r.db.Model(&models.Department{}).
			Select("id").
			Where("approver_id = ?", *filter.ApproverID)
		query = query.Where("users.department_id IN (?)", approvedDepartments)
	}
	if filter.DepartmentID != nil {
		query = query.Where("users.department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != nil {
		query = query.Where("pto_requests.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("pto_requests.created_at DESC").Order("pto_requests.id DESC")

	listQuery = listQuery.Scopes(database.Paginate(utils.Page{Number: filter.Page, Size: filter.PageSize}))

	var requests []models.PTORequest
	if err := listQuery.Preload("User").
		Preload("User.Department").
		Preload("DecidedBy").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Transition applies a status change guarded by "status is still PENDING".
// The debit, when present, is applied in the same transaction and only if the
// balance covers it, so two racing approvals cannot both succeed or overdraw.
func (r *GormPTORequestRepository) Transition(t Transition) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PTORequest{}).
			Where("id = ? AND status = ?", t.RequestID, models.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":        t.To,
				"decided_by_id": t.DecidedByID,
				"decided_at":    t.DecidedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if !t.Debit.IsPositive() {
			return nil
		}

		result = tx.Model(&models.User{}).
			Where("id = ? AND pto_balance >= ?", t.UserID, t.Debit).
			Update("pto_balance", gorm.Expr("pto_balance - ?", t.Debit))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBalanceTooLow
		}

		return nil
	})
}
