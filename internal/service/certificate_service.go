// internal/service/certificate_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go_course_progress/internal/config"
	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 一時的な競合を吸収するため、作成失敗時は1回だけ再試行する
const maxIssueAttempts = 2

type CertificateService interface {
	// Generate は (ユーザー, コース) の修了証を最大1件だけ作成します。
	// 既に発行済みなら既存の修了証と IssueAlreadyIssued を返し、エラーにはしない。
	Generate(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, model.IssueOutcome, error)
	GetStatus(ctx context.Context, userID, courseID uuid.UUID) (*model.CertificateStatusResponse, error)
}

type certificateService struct {
	db             *gorm.DB
	certRepo       repository.CertificateRepository
	enrollmentRepo repository.EnrollmentRepository
	catalogRepo    repository.CatalogRepository
	mailer         Mailer
	prefix         string
	locks          *keyedMutex
	now            func() time.Time
}

func NewCertificateService(
	db *gorm.DB,
	certRepo repository.CertificateRepository,
	enrollmentRepo repository.EnrollmentRepository,
	catalogRepo repository.CatalogRepository,
	mailer Mailer,
	cfg *config.Config,
) CertificateService {
	prefix := config.DefaultCertificatePrefix
	if cfg != nil && cfg.App.CertificateNumberPrefix != "" {
		prefix = cfg.App.CertificateNumberPrefix
	}
	return &certificateService{
		db:             db,
		certRepo:       certRepo,
		enrollmentRepo: enrollmentRepo,
		catalogRepo:    catalogRepo,
		mailer:         mailer,
		prefix:         prefix,
		locks:          newKeyedMutex(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *certificateService) Generate(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, model.IssueOutcome, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "course_id", courseID)

	// プロセス内の同時呼び出しはここで直列化し、プロセス間は一意制約で守る
	unlock := s.locks.Lock(userID.String() + ":" + courseID.String())
	defer unlock()

	existing, err := s.findExisting(ctx, userID, courseID)
	if err != nil {
		logger.Error("Failed to look up existing certificate", "error", err)
		return nil, model.IssueFailed, model.NewAppError("INTERNAL_SERVER_ERROR", "修了証の確認に失敗しました。", "", model.Internal(err))
	}
	if existing != nil {
		logger.Info("Certificate already issued", "certificate_id", existing.ID)
		return existing, model.IssueAlreadyIssued, nil
	}

	enrollment, err := s.enrollmentRepo.FindByUserAndCourse(ctx, s.db, userID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.IssueFailed, model.NewAppError("ENROLLMENT_NOT_FOUND", "このコースの受講登録が見つかりません: "+courseID.String(), "courseId", err)
		}
		logger.Error("Failed to load enrollment", "error", err)
		return nil, model.IssueFailed, model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
	}
	if enrollment.Percentage < 100 {
		logger.Info("Certificate requested before completion", "percentage", enrollment.Percentage)
		return nil, model.IssueNotEligible, model.NewAppError(
			"NOT_ELIGIBLE",
			fmt.Sprintf("コースを修了していないため修了証を発行できません (現在 %d%%)。", enrollment.Percentage),
			"courseId",
			model.ErrNotEligible,
		)
	}

	var lastErr error
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		cert := s.newCertificate(enrollment)
		err := s.certRepo.Create(ctx, s.db, cert)
		if err == nil {
			logger.Info("Certificate issued", "certificate_id", cert.ID, "certificate_number", cert.CertificateNumber)
			s.notify(ctx, logger, enrollment, cert)
			return cert, model.IssueCreated, nil
		}

		// 別プロセスとの競合に負けた場合は既存の修了証が見えるはず
		if winner, findErr := s.findExisting(ctx, userID, courseID); findErr == nil && winner != nil {
			logger.Info("Lost certificate creation race, returning existing certificate", "certificate_id", winner.ID, "insert_error", err)
			return winner, model.IssueAlreadyIssued, nil
		}

		lastErr = err
		logger.Warn("Certificate insert failed", "attempt", attempt, "error", err)
	}

	logger.Error("Certificate issuance failed after retry", "error", lastErr)
	return nil, model.IssueFailed, model.NewAppError("CERTIFICATE_ISSUE_FAILED", "修了証の発行に失敗しました。", "", model.Internal(lastErr))
}

func (s *certificateService) GetStatus(ctx context.Context, userID, courseID uuid.UUID) (*model.CertificateStatusResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "course_id", courseID)

	enrollment, err := s.enrollmentRepo.FindByUserAndCourse(ctx, s.db, userID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("ENROLLMENT_NOT_FOUND", "このコースの受講登録が見つかりません: "+courseID.String(), "courseId", err)
		}
		logger.Error("Failed to load enrollment", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
	}

	cert, err := s.findExisting(ctx, userID, courseID)
	if err != nil {
		logger.Error("Failed to look up certificate", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "修了証の確認に失敗しました。", "", model.Internal(err))
	}

	resp := &model.CertificateStatusResponse{Percentage: enrollment.Percentage}
	switch {
	case cert != nil:
		resp.State = model.StateIssued
		resp.Certificate = model.NewCertificateResponse(cert)
	case enrollment.Percentage >= 100:
		resp.State = model.StateEligible
	default:
		resp.State = model.StateNotEligible
	}
	return resp, nil
}

// findExisting は発行済みの修了証を返します。未発行なら (nil, nil)。
func (s *certificateService) findExisting(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, error) {
	cert, err := s.certRepo.FindByUserAndCourse(ctx, s.db, userID, courseID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	return cert, err
}

func (s *certificateService) newCertificate(enrollment *model.Enrollment) *model.Certificate {
	id := uuid.New()
	return &model.Certificate{
		ID:                id,
		UserID:            enrollment.UserID,
		CourseID:          enrollment.CourseID,
		EnrollmentID:      enrollment.ID,
		CertificateNumber: s.prefix + "-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:16]),
		IssuedAt:          s.now(),
	}
}

// notify は発行通知を送ります。失敗しても発行結果には影響させない。
func (s *certificateService) notify(ctx context.Context, logger *slog.Logger, enrollment *model.Enrollment, cert *model.Certificate) {
	if s.mailer == nil || enrollment.LearnerEmail == "" {
		return
	}

	courseTitle := enrollment.CourseID.String()
	if course, err := s.catalogRepo.FindCourse(ctx, s.db, enrollment.CourseID); err == nil {
		courseTitle = course.Title
	}

	subject := fmt.Sprintf("[%s] 修了証が発行されました", courseTitle)
	body := fmt.Sprintf("「%s」の全レッスンを修了しました。\n修了証番号: %s\n発行日時: %s",
		courseTitle, cert.CertificateNumber, cert.IssuedAt.Format(time.RFC3339))

	if err := s.mailer.Send(ctx, enrollment.LearnerEmail, subject, body); err != nil {
		logger.Warn("Failed to send certificate notification", "certificate_id", cert.ID, "error", err)
	}
}
