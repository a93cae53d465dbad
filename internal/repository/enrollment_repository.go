// internal/repository/enrollment_repository.go
package repository

import (
	"context"
	"errors"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error
	FindByID(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.Enrollment, error)
	// FindByIDForUpdate は行ロックを取得します (トランザクション内で使用)。SQLite ではロック句は無視される。
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*model.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID uuid.UUID) (*model.Enrollment, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error
	UpdateCurrentLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uuid.UUID) error
}

type gormEnrollmentRepository struct{}

func NewGormEnrollmentRepository() EnrollmentRepository {
	return &gormEnrollmentRepository{}
}

func (r *gormEnrollmentRepository) Create(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	if err := tx.WithContext(ctx).Create(enrollment).Error; err != nil {
		if isUniqueViolation(err) {
			return model.ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormEnrollmentRepository) FindByID(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	return r.first(db.WithContext(ctx).Where("id = ?", enrollmentID))
}

func (r *gormEnrollmentRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	return r.first(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", enrollmentID))
}

func (r *gormEnrollmentRepository) FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	return r.first(db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *gormEnrollmentRepository) first(q *gorm.DB) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := q.First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *gormEnrollmentRepository) UpdateProgress(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error {
	// ゼロ値 (percentage=0 など) も更新対象にするため Select で列を限定する
	result := tx.WithContext(ctx).Model(enrollment).
		Select("Percentage", "CompletedAt", "LastActivityAt", "UpdatedAt").
		Updates(enrollment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormEnrollmentRepository) UpdateCurrentLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uuid.UUID) error {
	result := tx.WithContext(ctx).Model(&model.Enrollment{}).
		Where("id = ?", enrollmentID).
		Update("current_lesson_id", lessonID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
