//go:generate mockery --name CertificateRepository --output ./mocks --outpkg mocks --case=underscore
// internal/repository/certificate_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_course_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateRepository interface {
	// Create は (user_id, course_id) の一意制約に違反した場合 model.ErrConflict を返します。
	Create(ctx context.Context, db *gorm.DB, cert *model.Certificate) error
	FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID uuid.UUID) (*model.Certificate, error)
}

type gormCertificateRepository struct{}

func NewGormCertificateRepository() CertificateRepository {
	return &gormCertificateRepository{}
}

func (r *gormCertificateRepository) Create(ctx context.Context, db *gorm.DB, cert *model.Certificate) error {
	if err := db.WithContext(ctx).Create(cert).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("certificate for user %s course %s: %w", cert.UserID, cert.CourseID, model.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *gormCertificateRepository) FindByUserAndCourse(ctx context.Context, db *gorm.DB, userID, courseID uuid.UUID) (*model.Certificate, error) {
	var cert model.Certificate
	result := db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &cert, nil
}
