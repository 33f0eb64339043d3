package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pto-approval-api/internal/constants"
)

// Page is a 1-based page window. The zero value means "everything".
type Page struct {
	Number int
	Size   int
}

// PageFromQuery reads ?page= and ?limit=, falling back to the defaults on
// missing or out-of-range values
func PageFromQuery(c *gin.Context) Page {
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil || number < 1 {
		number = 1
	}

	size, err := strconv.Atoi(c.Query("limit"))
	if err != nil || size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return Page{Number: number, Size: size}
}

// Enabled reports whether the window restricts the result set
func (p Page) Enabled() bool {
	return p.Number > 0 && p.Size > 0
}

// Offset is the number of rows skipped before this page
func (p Page) Offset() int {
	if !p.Enabled() {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Pages returns how many pages of this size hold total rows
func (p Page) Pages(total int64) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
