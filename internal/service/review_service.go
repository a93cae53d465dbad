package service

import (
	"context"
	"errors"

	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, userID, courseID uuid.UUID, req *model.SubmitReviewRequest) (*model.Review, error)
	GetReview(ctx context.Context, userID, courseID uuid.UUID) (*model.Review, error)
}

type reviewService struct {
	db          *gorm.DB
	reviewRepo  repository.ReviewRepository
	catalogRepo repository.CatalogRepository
}

func NewReviewService(db *gorm.DB, reviewRepo repository.ReviewRepository, catalogRepo repository.CatalogRepository) ReviewService {
	return &reviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		catalogRepo: catalogRepo,
	}
}

func alreadyReviewed(err error) error {
	if err == nil {
		err = model.ErrAlreadyReviewed
	} else {
		err = errors.Join(model.ErrAlreadyReviewed, err)
	}
	return model.NewAppError("ALREADY_REVIEWED", "このコースには既にレビューを投稿済みです。レビューは1コースにつき1件までです。", "", err)
}

// SubmitReview はレビューを新規作成します。既存のレビューは上書きしない。
func (s *reviewService) SubmitReview(ctx context.Context, userID, courseID uuid.UUID, req *model.SubmitReviewRequest) (*model.Review, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "course_id", courseID)

	if req.Rating < model.MinRating || req.Rating > model.MaxRating {
		return nil, model.NewAppError("VALIDATION_ERROR", "評価は1から5の範囲で指定してください。", "rating", model.ErrInvalidInput)
	}

	if _, err := s.catalogRepo.FindCourse(ctx, s.db, courseID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません: "+courseID.String(), "courseId", err)
		}
		logger.Error("Failed to load course for review", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コース情報の取得に失敗しました。", "", model.Internal(err))
	}

	existing, err := s.reviewRepo.FindByUserAndCourse(ctx, s.db, userID, courseID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to check existing review", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "レビューの確認に失敗しました。", "", model.Internal(err))
	}
	if existing != nil {
		logger.Info("Review already submitted", "review_id", existing.ID)
		return nil, alreadyReviewed(nil)
	}

	review := &model.Review{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, s.db, review); err != nil {
		// 確認から作成までの間に別リクエストが作成した場合
		if errors.Is(err, model.ErrConflict) {
			logger.Info("Review created concurrently by another request")
			return nil, alreadyReviewed(err)
		}
		logger.Error("Failed to create review", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "レビューの投稿に失敗しました。", "", model.Internal(err))
	}

	logger.Info("Review submitted", "review_id", review.ID, "rating", review.Rating)
	return review, nil
}

func (s *reviewService) GetReview(ctx context.Context, userID, courseID uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.FindByUserAndCourse(ctx, s.db, userID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("REVIEW_NOT_FOUND", "レビューが見つかりません。", "courseId", err)
		}
		middleware.GetLogger(ctx).Error("Failed to load review", "user_id", userID, "course_id", courseID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "レビューの取得に失敗しました。", "", model.Internal(err))
	}
	return review, nil
}
