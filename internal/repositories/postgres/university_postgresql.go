package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type UniversityPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUniversityPostgreSQL(db *gorm.DB) repositories.UniversityRepository {
	return &UniversityPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UniversityPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UniversityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, university *models.University) error {
	return translateError(u.getDB(tx).WithContext(ctx).Create(university).Error, "create university")
}

func (u *UniversityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.University, error) {
	var university models.University
	if err := u.getDB(tx).WithContext(ctx).First(&university, id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("get university %d", id))
	}
	return &university, nil
}

func (u *UniversityPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.University, error) {
	var university models.University
	if err := u.getDB(tx).WithContext(ctx).Where("name = ?", name).First(&university).Error; err != nil {
		return nil, translateError(err, "get university by name")
	}
	return &university, nil
}

func (u *UniversityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, university *models.University) error {
	return translateError(u.getDB(tx).WithContext(ctx).Save(university).Error, "update university")
}

func (u *UniversityPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.getDB(tx).WithContext(ctx).Delete(&models.University{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete university")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete university %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (u *UniversityPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UniversityFilters) ([]*models.University, int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.University{})
	if filters.Country != nil {
		query = query.Where("country = ?", *filters.Country)
	}
	if filters.Query != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filters.Query+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count universities: %w", err)
	}

	var universities []*models.University
	if err := u.helpers.ApplyPaginationAndSort(query, "name", "asc", filters.Limit, filters.Offset).Find(&universities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list universities: %w", err)
	}
	return universities, total, nil
}
