//go:generate mockery --name AnalyticsRepository --output ./mocks --outpkg mocks --case=underscore
// internal/repository/analytics_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsRepository は集計専用の読み取りクエリです。
// いずれもロックを取らない単純な SELECT で、トランザクション外から呼ぶ想定。
type AnalyticsRepository interface {
	CountEnrollments(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int64, error)
	CountCompletedEnrollments(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int64, error)
	AverageRating(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (float64, error)
	CompletionSpans(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from, to time.Time) ([]model.CompletionSpan, error)
	ModuleCompletionCounts(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]model.ModuleCompletionCount, error)
	QuizScores(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from, to time.Time) ([]int, error)
	DemographicCounts(ctx context.Context, db *gorm.DB, courseID uuid.UUID, field string) ([]model.CategoryValue, error)
	ActivityEvents(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from, to time.Time) ([]model.ActivityEvent, error)
}

const (
	DemographicAgeGroup = "age_group"
	DemographicRegion   = "region"
)

type gormAnalyticsRepository struct{}

func NewGormAnalyticsRepository() AnalyticsRepository {
	return &gormAnalyticsRepository{}
}

func (r *gormAnalyticsRepository) CountEnrollments(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

func (r *gormAnalyticsRepository) CountCompletedEnrollments(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND percentage >= ?", courseID, 100).
		Count(&n).Error
	return n, err
}

func (r *gormAnalyticsRepository) AverageRating(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (float64, error) {
	var avg sql.NullFloat64
	err := db.WithContext(ctx).Model(&model.Review{}).
		Select("AVG(rating)").
		Where("course_id = ?", courseID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (r *gormAnalyticsRepository) CompletionSpans(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from, to time.Time) ([]model.CompletionSpan, error) {
	var spans []model.CompletionSpan
	err := db.WithContext(ctx).Table("certificates").
		Select("enrollments.created_at AS enrolled_at, certificates.issued_at AS issued_at").
		Joins("JOIN enrollments ON enrollments.id = certificates.enrollment_id").
		Where("certificates.course_id = ? AND certificates.issued_at >= ? AND certificates.issued_at < ?", courseID, from, to).
		Scan(&spans).Error
	return spans, err
}

func (r *gormAnalyticsRepository) ModuleCompletionCounts(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]model.ModuleCompletionCount, error) {
	var rows []model.ModuleCompletionCount
	err := db.WithContext(ctx).Table("module_completions").
		Select("module_completions.module_id AS module_id, COUNT(*) AS count").
		Joins("JOIN enrollments ON enrollments.id = module_completions.enrollment_id").
		Where("enrollments.course_id = ?", courseID).
		Group("module_completions.module_id").
		Scan(&rows).Error
	return rows, err
}

func (r *gormAnalyticsRepository) QuizScores(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from, to time.Time) ([]int, error) {
	var scores []int
	err := db.WithContext(ctx).Table("quiz_attempts").
		Joins("JOIN enrollments ON enrollments.id = quiz_attempts.enrollment_id").
		Where("enrollments.course_id = ? AND quiz_attempts.created_at >= ? AND quiz_attempts.created_at < ?", courseID, from, to).
		Pluck("quiz_attempts.score", &scores).Error
	return scores, err
}

func (r *gormAnalyticsRepository) DemographicCounts(ctx context.Context, db *gorm.DB, courseID uuid.UUID, field string) ([]model.CategoryValue, error) {
	// 列名はプレースホルダにできないためホワイトリストで固定する
	switch field {
	case DemographicAgeGroup, DemographicRegion:
	default:
		return nil, fmt.Errorf("unknown demographic field %q: %w", field, model.ErrInvalidInput)
	}

	var rows []model.CategoryValue
	err := db.WithContext(ctx).Model(&model.Enrollment{}).
		Select(field+" AS name, COUNT(*) AS value").
		Where("course_id = ?", courseID).
		Group(field).
		Order("value DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *gormAnalyticsRepository) ActivityEvents(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from, to time.Time) ([]model.ActivityEvent, error) {
	var lessonEvents []model.ActivityEvent
	err := db.WithContext(ctx).Table("lesson_completions").
		Select("lesson_completions.enrollment_id AS enrollment_id, lesson_completions.completed_at AS occurred_at").
		Joins("JOIN enrollments ON enrollments.id = lesson_completions.enrollment_id").
		Where("enrollments.course_id = ? AND lesson_completions.completed_at >= ? AND lesson_completions.completed_at < ?", courseID, from, to).
		Scan(&lessonEvents).Error
	if err != nil {
		return nil, err
	}

	var quizEvents []model.ActivityEvent
	err = db.WithContext(ctx).Table("quiz_attempts").
		Select("quiz_attempts.enrollment_id AS enrollment_id, quiz_attempts.created_at AS occurred_at").
		Joins("JOIN enrollments ON enrollments.id = quiz_attempts.enrollment_id").
		Where("enrollments.course_id = ? AND quiz_attempts.created_at >= ? AND quiz_attempts.created_at < ?", courseID, from, to).
		Scan(&quizEvents).Error
	if err != nil {
		return nil, err
	}

	return append(lessonEvents, quizEvents...), nil
}
