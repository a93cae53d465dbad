// internal/service/review_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_reviewService_SubmitReview(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	course := buildCourse(1)
	seedCourse(t, db, course)
	svc := NewReviewService(db, repository.NewGormReviewRepository(), repository.NewGormCatalogRepository())

	userID := uuid.New()

	t.Run("正常系: 初回投稿", func(t *testing.T) {
		review, err := svc.SubmitReview(ctx, userID, course.ID, &model.SubmitReviewRequest{Rating: 4, Comment: "わかりやすい"})
		require.NoError(t, err)
		assert.Equal(t, 4, review.Rating)
		assert.Equal(t, course.ID, review.CourseID)
	})

	t.Run("異常系: 2回目の投稿は拒否し、既存を上書きしない", func(t *testing.T) {
		review, err := svc.SubmitReview(ctx, userID, course.ID, &model.SubmitReviewRequest{Rating: 1, Comment: "変更"})
		require.Error(t, err)
		assert.Nil(t, review)
		assert.ErrorIs(t, err, model.ErrAlreadyReviewed)
		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "ALREADY_REVIEWED", appErr.Detail.Code)

		stored, err := svc.GetReview(ctx, userID, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.Rating)
		assert.Equal(t, "わかりやすい", stored.Comment)
	})

	t.Run("正常系: 別ユーザーは投稿できる", func(t *testing.T) {
		_, err := svc.SubmitReview(ctx, uuid.New(), course.ID, &model.SubmitReviewRequest{Rating: 5})
		require.NoError(t, err)
	})

	tests := []struct {
		name     string
		courseID uuid.UUID
		rating   int
		wantErr  error
	}{
		{"異常系: 評価が0", course.ID, 0, model.ErrInvalidInput},
		{"異常系: 評価が6", course.ID, 6, model.ErrInvalidInput},
		{"異常系: 存在しないコース", uuid.New(), 3, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitReview(ctx, uuid.New(), tt.courseID, &model.SubmitReviewRequest{Rating: tt.rating})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, int64(2), countRows(t, db, &model.Review{}))
}

func Test_reviewService_GetReview_NotFound(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewReviewService(db, repository.NewGormReviewRepository(), repository.NewGormCatalogRepository())

	review, err := svc.GetReview(ctx, uuid.New(), uuid.New())
	assert.Nil(t, review)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
