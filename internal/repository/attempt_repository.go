package repository

import (
	"context"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, db *gorm.DB, attempt *model.QuizAttempt) error
	ListByEnrollmentAndModule(ctx context.Context, db *gorm.DB, enrollmentID, moduleID uuid.UUID) ([]*model.QuizAttempt, error)
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

func (r *gormAttemptRepository) Create(ctx context.Context, db *gorm.DB, attempt *model.QuizAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	return db.WithContext(ctx).Create(attempt).Error
}

func (r *gormAttemptRepository) ListByEnrollmentAndModule(ctx context.Context, db *gorm.DB, enrollmentID, moduleID uuid.UUID) ([]*model.QuizAttempt, error) {
	var attempts []*model.QuizAttempt
	err := db.WithContext(ctx).
		Where("enrollment_id = ? AND module_id = ?", enrollmentID, moduleID).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
