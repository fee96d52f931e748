package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type auditService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAuditService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AuditService {
	return &auditService{repo: repo, db: db, logger: logger}
}

func (s *auditService) Record(ctx context.Context, entry *models.AdminAuditLog) error {
	if entry.AdminUserID == "" {
		return NewValidationError("admin_user_id", "admin user is required", entry.AdminUserID)
	}
	if err := s.repo.Audit().Create(ctx, s.db, entry); err != nil {
		return fmt.Errorf("failed to record admin action: %w", err)
	}
	s.logger.Debug("Admin action recorded", "admin_id", entry.AdminUserID, "action", entry.Action, "status", entry.StatusCode)
	return nil
}

func (s *auditService) List(ctx context.Context, filters repositories.AuditFilters) (*AuditListResponse, error) {
	entries, total, err := s.repo.Audit().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return &AuditListResponse{Entries: entries, Total: total}, nil
}
