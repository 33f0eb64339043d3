package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// Paginate limits a query to page. A disabled page leaves the query untouched.
func Paginate(page utils.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !page.Enabled() {
			return db
		}
		return db.Offset(page.Offset()).Limit(page.Size)
	}
}
