package mocks

import (
	context "context"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
)

// AnalyticsService is a mock type for the AnalyticsService type
type AnalyticsService struct {
	mock.Mock
}

func (_m *AnalyticsService) GetCourseAnalytics(ctx context.Context, courseID uuid.UUID, timeframe model.Timeframe, fresh bool) (*model.CourseAnalytics, error) {
	ret := _m.Called(ctx, courseID, timeframe, fresh)
	var r0 *model.CourseAnalytics
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.CourseAnalytics)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsService) RefreshAll(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// NewAnalyticsService creates a new instance of AnalyticsService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewAnalyticsService(t testingT) *AnalyticsService {
	m := &AnalyticsService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
