package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type universityService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUniversityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) UniversityService {
	return &universityService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *universityService) Create(ctx context.Context, actor *models.User, req *CreateUniversityRequest) (*models.University, error) {
	if err := authorizeAdmin(actor, 0, "university", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	university := &models.University{
		Name:    strings.TrimSpace(req.Name),
		Region:  req.Region,
		Country: req.Country,
		Website: req.Website,
	}
	if err := s.repo.University().Create(ctx, s.db, university); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrUniversityExists
		}
		return nil, fmt.Errorf("failed to create university: %w", err)
	}

	s.logger.Info("University created", "university_id", university.ID, "name", university.Name)
	return university, nil
}

func (s *universityService) GetByID(ctx context.Context, id uint) (*models.University, error) {
	university, err := s.repo.University().GetByID(ctx, s.db, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUniversityNotFound, "get university")
	}
	return university, nil
}

func (s *universityService) List(ctx context.Context, filters repositories.UniversityFilters) (*UniversityListResponse, error) {
	universities, total, err := s.repo.University().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list universities: %w", err)
	}

	page, size := pageOf(filters.Limit, filters.Offset)
	return &UniversityListResponse{Universities: universities, Total: total, Page: page, Size: size}, nil
}

func (s *universityService) Update(ctx context.Context, actor *models.User, id uint, req *UpdateUniversityRequest) (*models.University, error) {
	if err := authorizeAdmin(actor, id, "university", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	university, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		university.Name = strings.TrimSpace(*req.Name)
	}
	if req.Region != nil {
		university.Region = *req.Region
	}
	if req.Country != nil {
		university.Country = *req.Country
	}
	if req.Website != nil {
		university.Website = req.Website
	}

	if err := s.repo.University().Update(ctx, s.db, university); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrUniversityExists
		}
		return nil, fmt.Errorf("failed to update university: %w", err)
	}

	s.logger.Info("University updated", "university_id", id)
	return university, nil
}

func (s *universityService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := authorizeAdmin(actor, id, "university", "delete"); err != nil {
		return err
	}

	if err := s.repo.University().Delete(ctx, s.db, id); err != nil {
		return notFoundAs(err, ErrUniversityNotFound, "delete university")
	}

	s.logger.Info("University deleted", "university_id", id)
	return nil
}
