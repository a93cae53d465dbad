package mocks

import (
	context "context"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
)

// ProgressService is a mock type for the ProgressService type
type ProgressService struct {
	mock.Mock
}

func (_m *ProgressService) MarkLessonComplete(ctx context.Context, enrollmentID uuid.UUID, lessonID uuid.UUID) (*model.ProgressUpdate, error) {
	ret := _m.Called(ctx, enrollmentID, lessonID)
	var r0 *model.ProgressUpdate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ProgressUpdate)
	}
	return r0, ret.Error(1)
}

func (_m *ProgressService) MarkModuleComplete(ctx context.Context, enrollmentID uuid.UUID, moduleID uuid.UUID) (*model.ProgressUpdate, error) {
	ret := _m.Called(ctx, enrollmentID, moduleID)
	var r0 *model.ProgressUpdate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ProgressUpdate)
	}
	return r0, ret.Error(1)
}

func (_m *ProgressService) GetProgress(ctx context.Context, enrollmentID uuid.UUID) (*model.Progress, error) {
	ret := _m.Called(ctx, enrollmentID)
	var r0 *model.Progress
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Progress)
	}
	return r0, ret.Error(1)
}

func (_m *ProgressService) SetCurrentLesson(ctx context.Context, enrollmentID uuid.UUID, lessonID uuid.UUID) (*model.Progress, error) {
	ret := _m.Called(ctx, enrollmentID, lessonID)
	var r0 *model.Progress
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Progress)
	}
	return r0, ret.Error(1)
}

func (_m *ProgressService) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	ret := _m.Called(ctx, enrollmentID)
	var r0 *model.Enrollment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Enrollment)
	}
	return r0, ret.Error(1)
}

func (_m *ProgressService) FindEnrollment(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error) {
	ret := _m.Called(ctx, userID, courseID)
	var r0 *model.Enrollment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Enrollment)
	}
	return r0, ret.Error(1)
}

// NewProgressService creates a new instance of ProgressService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProgressService(t testingT) *ProgressService {
	m := &ProgressService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
