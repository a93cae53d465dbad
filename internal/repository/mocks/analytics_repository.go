package mocks

import (
	context "context"
	time "time"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
	gorm "gorm.io/gorm"
)

// AnalyticsRepository is a mock type for the AnalyticsRepository type
type AnalyticsRepository struct {
	mock.Mock
}

func (_m *AnalyticsRepository) CountEnrollments(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, db, courseID)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *AnalyticsRepository) CountCompletedEnrollments(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, db, courseID)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *AnalyticsRepository) AverageRating(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (float64, error) {
	ret := _m.Called(ctx, db, courseID)
	return ret.Get(0).(float64), ret.Error(1)
}

func (_m *AnalyticsRepository) CompletionSpans(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from time.Time, to time.Time) ([]model.CompletionSpan, error) {
	ret := _m.Called(ctx, db, courseID, from, to)
	var r0 []model.CompletionSpan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.CompletionSpan)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsRepository) ModuleCompletionCounts(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]model.ModuleCompletionCount, error) {
	ret := _m.Called(ctx, db, courseID)
	var r0 []model.ModuleCompletionCount
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ModuleCompletionCount)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsRepository) QuizScores(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from time.Time, to time.Time) ([]int, error) {
	ret := _m.Called(ctx, db, courseID, from, to)
	var r0 []int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsRepository) DemographicCounts(ctx context.Context, db *gorm.DB, courseID uuid.UUID, field string) ([]model.CategoryValue, error) {
	ret := _m.Called(ctx, db, courseID, field)
	var r0 []model.CategoryValue
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.CategoryValue)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsRepository) ActivityEvents(ctx context.Context, db *gorm.DB, courseID uuid.UUID, from time.Time, to time.Time) ([]model.ActivityEvent, error) {
	ret := _m.Called(ctx, db, courseID, from, to)
	var r0 []model.ActivityEvent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ActivityEvent)
	}
	return r0, ret.Error(1)
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewAnalyticsRepository(t testingT) *AnalyticsRepository {
	m := &AnalyticsRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
