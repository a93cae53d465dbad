package model

import (
	"time"

	"github.com/google/uuid"
)

// Review はコースレビューです。(ユーザー, コース) ごとに1件のみ。
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_review_user_course,unique"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_review_user_course,unique;index"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time
}

const (
	MinRating = 1
	MaxRating = 5
)

// SubmitReviewRequest はレビュー投稿のリクエストDTO
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewResponse はレビューのレスポンスDTO
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"courseId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		CourseID:  r.CourseID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
