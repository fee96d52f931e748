package postgres

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// SharedHelpers contains query helpers used by every repository
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// allowedSortColumns is the sort whitelist shared by list endpoints
var allowedSortColumns = map[string]bool{
	"created_at":        true,
	"updated_at":        true,
	"id":                true,
	"title":             true,
	"status":            true,
	"start_date":        true,
	"enrollment_date":   true,
	"completion_status": true,
	"rating":            true,
	"name":              true,
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if strings.EqualFold(sortOrder, "asc") {
		sortOrder = "ASC"
	} else {
		sortOrder = "DESC"
	}

	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	return h.ApplyPagination(query, limit, offset)
}

// ApplyPagination caps the page size at 100 and defaults it to 10
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// translateError maps gorm errors onto repository errors
func translateError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", action, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", action, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

// roundTo rounds v to the given number of decimals
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
