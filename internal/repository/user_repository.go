package repository

import (
	"github.com/yukikurage/pto-approval-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID with optional preloading
func (r *GormUserRepository) FindByID(id uint64, preload ...string) (*models.User, error) {
	var user models.User
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users matching the filter
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, error) {
	query := r.db.Model(&models.User{})

	if filter.ManagerID != nil {
		query = query.Where("manager_id = ?", *filter.ManagerID)
	}
	if len(filter.DepartmentIDs) > 0 {
		query = query.Where("department_id IN ?", filter.DepartmentIDs)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var users []models.User
	if err := query.Preload("Department").Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields updates the given columns of a user
func (r *GormUserRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateRole changes the role and clears manager/approver links that would
// otherwise point at a user without the matching role
func (r *GormUserRepository) UpdateRole(id uint64, role models.UserRole) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", id).Update("role", role).Error; err != nil {
			return err
		}

		if role != models.RoleManager {
			if err := tx.Model(&models.Department{}).Where("manager_id = ?", id).
				Update("manager_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("manager_id = ?", id).
				Update("manager_id", nil).Error; err != nil {
				return err
			}
		}

		if role != models.RoleApprover {
			if err := tx.Model(&models.Department{}).Where("approver_id = ?", id).
				Update("approver_id", nil).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a user and all related data in a transaction
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Delete the user's requests
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&models.PTORequest{}).Error; err != nil {
			return err
		}

		// Keep decisions made by the user but forget who made them
		if err := tx.Model(&models.PTORequest{}).Where("decided_by_id = ?", id).
			Update("decided_by_id", nil).Error; err != nil {
			return err
		}

		// Detach reports
		if err := tx.Model(&models.User{}).Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}

		// Detach departments
		if err := tx.Model(&models.Department{}).Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Department{}).Where("approver_id = ?", id).
			Update("approver_id", nil).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
