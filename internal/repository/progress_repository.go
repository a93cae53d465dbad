// internal/repository/progress_repository.go
package repository

import (
	"context"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository は完了済みレッスン/モジュール集合を扱います。
type ProgressRepository interface {
	CompletedLessonIDs(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]uuid.UUID, error)
	AddLessonCompletions(ctx context.Context, tx *gorm.DB, completions []model.LessonCompletion) error
	CompletedModuleIDs(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]uuid.UUID, error)
	AddModuleCompletions(ctx context.Context, tx *gorm.DB, completions []model.ModuleCompletion) error
	RemoveModuleCompletions(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, moduleIDs []uuid.UUID) error
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) CompletedLessonIDs(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&model.LessonCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func (r *gormProgressRepository) AddLessonCompletions(ctx context.Context, tx *gorm.DB, completions []model.LessonCompletion) error {
	if len(completions) == 0 {
		return nil
	}
	// 主キー (enrollment_id, lesson_id) が重複した場合は何もしない
	return tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&completions).Error
}

func (r *gormProgressRepository) CompletedModuleIDs(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&model.ModuleCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Pluck("module_id", &ids).Error
	return ids, err
}

func (r *gormProgressRepository) AddModuleCompletions(ctx context.Context, tx *gorm.DB, completions []model.ModuleCompletion) error {
	if len(completions) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&completions).Error
}

func (r *gormProgressRepository) RemoveModuleCompletions(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, moduleIDs []uuid.UUID) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Where("enrollment_id = ? AND module_id IN ?", enrollmentID, moduleIDs).
		Delete(&model.ModuleCompletion{}).Error
}
