package repository

import (
	"context"
	"errors"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, db *gorm.DB, review *model.Review) error
	FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID uuid.UUID) (*model.Review, error)
}

type gormReviewRepository struct{}

func NewGormReviewRepository() ReviewRepository {
	return &gormReviewRepository{}
}

func (r *gormReviewRepository) Create(ctx context.Context, db *gorm.DB, review *model.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return model.ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormReviewRepository) FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID uuid.UUID) (*model.Review, error) {
	var review model.Review
	result := db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&review)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &review, nil
}
