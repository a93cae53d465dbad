package mocks

import (
	context "context"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
)

// QuizService is a mock type for the QuizService type
type QuizService struct {
	mock.Mock
}

func (_m *QuizService) RecordAttempt(ctx context.Context, enrollmentID uuid.UUID, moduleID uuid.UUID, answers []int) (*model.QuizAttempt, error) {
	ret := _m.Called(ctx, enrollmentID, moduleID, answers)
	var r0 *model.QuizAttempt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.QuizAttempt)
	}
	return r0, ret.Error(1)
}

func (_m *QuizService) ListAttempts(ctx context.Context, enrollmentID uuid.UUID, moduleID uuid.UUID) ([]*model.QuizAttempt, error) {
	ret := _m.Called(ctx, enrollmentID, moduleID)
	var r0 []*model.QuizAttempt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*model.QuizAttempt)
	}
	return r0, ret.Error(1)
}

// NewQuizService creates a new instance of QuizService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewQuizService(t testingT) *QuizService {
	m := &QuizService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
