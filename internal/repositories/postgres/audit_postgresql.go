package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type AuditPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AuditPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AuditPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AdminAuditLog) error {
	return translateError(a.getDB(tx).WithContext(ctx).Create(entry).Error, "create audit log")
}

func (a *AuditPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AuditFilters) ([]*models.AdminAuditLog, int64, error) {
	query := a.getDB(tx).WithContext(ctx).Model(&models.AdminAuditLog{})
	if filters.AdminUserID != nil {
		query = query.Where("admin_user_id = ?", *filters.AdminUserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var entries []*models.AdminAuditLog
	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, total, nil
}
