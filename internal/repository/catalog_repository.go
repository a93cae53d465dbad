// internal/repository/catalog_repository.go
package repository

import (
	"context"
	"errors"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository はコース構造の読み取り口です。
// 書き込み (CreateCourse) は開発用シードとテストのみで使う。
type CatalogRepository interface {
	FindCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error)
	ListCourseIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error)
	CreateCourse(ctx context.Context, db *gorm.DB, course *model.Course) error
}

type gormCatalogRepository struct{}

func NewGormCatalogRepository() CatalogRepository {
	return &gormCatalogRepository{}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *gormCatalogRepository) FindCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error) {
	var course model.Course
	result := db.WithContext(ctx).
		Preload("Modules", byPosition).
		Preload("Modules.Lessons", byPosition).
		Preload("Modules.Quiz").
		Preload("Modules.Quiz.Questions", byPosition).
		Where("id = ?", courseID).
		First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &course, nil
}

func (r *gormCatalogRepository) ListCourseIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).Model(&model.Course{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *gormCatalogRepository) CreateCourse(ctx context.Context, db *gorm.DB, course *model.Course) error {
	// Modules 以下の関連もまとめて作成される
	return db.WithContext(ctx).Create(course).Error
}
