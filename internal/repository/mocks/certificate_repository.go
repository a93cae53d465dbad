package mocks

import (
	context "context"

	model "go_course_progress/internal/model"

	uuid "github.com/google/uuid"
	mock "github.com/stretchr/testify/mock"
	gorm "gorm.io/gorm"
)

// CertificateRepository is a mock type for the CertificateRepository type
type CertificateRepository struct {
	mock.Mock
}

func (_m *CertificateRepository) Create(ctx context.Context, db *gorm.DB, cert *model.Certificate) error {
	ret := _m.Called(ctx, db, cert)
	return ret.Error(0)
}

func (_m *CertificateRepository) FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID uuid.UUID, courseID uuid.UUID) (*model.Certificate, error) {
	ret := _m.Called(ctx, db, userID, courseID)
	var r0 *model.Certificate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Certificate)
	}
	return r0, ret.Error(1)
}

// NewCertificateRepository creates a new instance of CertificateRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCertificateRepository(t testingT) *CertificateRepository {
	m := &CertificateRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
