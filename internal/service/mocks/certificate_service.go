package mocks

import (
	context "context"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
)

// CertificateService is a mock type for the CertificateService type
type CertificateService struct {
	mock.Mock
}

func (_m *CertificateService) Generate(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Certificate, model.IssueOutcome, error) {
	ret := _m.Called(ctx, userID, courseID)
	var r0 *model.Certificate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Certificate)
	}
	return r0, ret.Get(1).(model.IssueOutcome), ret.Error(2)
}

func (_m *CertificateService) GetStatus(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.CertificateStatusResponse, error) {
	ret := _m.Called(ctx, userID, courseID)
	var r0 *model.CertificateStatusResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.CertificateStatusResponse)
	}
	return r0, ret.Error(1)
}

// NewCertificateService creates a new instance of CertificateService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCertificateService(t testingT) *CertificateService {
	m := &CertificateService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
