package mocks

import (
	context "context"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
)

// ReviewService is a mock type for the ReviewService type
type ReviewService struct {
	mock.Mock
}

func (_m *ReviewService) SubmitReview(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, req *model.SubmitReviewRequest) (*model.Review, error) {
	ret := _m.Called(ctx, userID, courseID, req)
	var r0 *model.Review
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Review)
	}
	return r0, ret.Error(1)
}

func (_m *ReviewService) GetReview(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Review, error) {
	ret := _m.Called(ctx, userID, courseID)
	var r0 *model.Review
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Review)
	}
	return r0, ret.Error(1)
}

// NewReviewService creates a new instance of ReviewService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewReviewService(t testingT) *ReviewService {
	m := &ReviewService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
