package repository

import (
	"github.com/yukikurage/pto-approval-api/internal/models"
	"gorm.io/gorm"
)

// GormDepartmentRepository is a GORM implementation of DepartmentRepository
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// Create creates a new department
func (r *GormDepartmentRepository) Create(department *models.Department) error {
	return r.db.Create(department).Error
}

// FindByID finds a department by ID with optional preloading
func (r *GormDepartmentRepository) FindByID(id uint64, preload ...string) (*models.Department, error) {
	var department models.Department
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

// FindByName finds a department by name
func (r *GormDepartmentRepository) FindByName(name string) (*models.Department, error) {
	var department models.Department
	if err := r.db.Where("name = ?", name).First(&department).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

// List lists all departments
func (r *GormDepartmentRepository) List() ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.Preload("Manager").
		Preload("Approver").
		Order("name ASC").
		Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// ListByApprover lists the departments a user approves for, with their members
func (r *GormDepartmentRepository) ListByApprover(approverID uint64) ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.Preload("Users", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).
		Preload("Manager").
		Where("approver_id = ?", approverID).
		Order("name ASC").
		Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// Delete detaches all members and deletes the department in a transaction
func (r *GormDepartmentRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&models.Department{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AssignManager clears the manager's previous department, then assigns the new one
func (r *GormDepartmentRepository) AssignManager(departmentID uint64, managerID *uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if managerID != nil {
			if err := tx.Model(&models.Department{}).
				Where("manager_id = ? AND id <> ?", *managerID, departmentID).
				Update("manager_id", nil).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Department{}).Where("id = ?", departmentID).
			Update("manager_id", managerID).Error
	})
}

// AssignApprover sets the department approver
func (r *GormDepartmentRepository) AssignApprover(departmentID uint64, approverID *uint64) error {
	return r.db.Model(&models.Department{}).Where("id = ?", departmentID).
		Update("approver_id", approverID).Error
}
