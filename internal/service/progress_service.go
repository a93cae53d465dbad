// internal/service/progress_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressService interface {
	MarkLessonComplete(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.ProgressUpdate, error)
	MarkModuleComplete(ctx context.Context, enrollmentID, moduleID uuid.UUID) (*model.ProgressUpdate, error)
	GetProgress(ctx context.Context, enrollmentID uuid.UUID) (*model.Progress, error)
	SetCurrentLesson(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.Progress, error)
	GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*model.Enrollment, error)
	FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
}

// certificateGenerator は進捗が100%に達したときに呼び出す発行処理です。
type certificateGenerator interface {
	Generate(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, model.IssueOutcome, error)
}

type progressService struct {
	db             *gorm.DB
	catalogRepo    repository.CatalogRepository
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	issuer         certificateGenerator
	locks          *keyedMutex
	now            func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	catalogRepo repository.CatalogRepository,
	enrollmentRepo repository.EnrollmentRepository,
	progressRepo repository.ProgressRepository,
	issuer certificateGenerator,
) ProgressService {
	return &progressService{
		db:             db,
		catalogRepo:    catalogRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		issuer:         issuer,
		locks:          newKeyedMutex(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func enrollmentNotFound(enrollmentID uuid.UUID, err error) error {
	return model.NewAppError("ENROLLMENT_NOT_FOUND", "受講登録が見つかりません: "+enrollmentID.String(), "enrollmentId", err)
}

func (s *progressService) MarkLessonComplete(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.ProgressUpdate, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "lesson_id", lessonID)

	return s.complete(ctx, logger, enrollmentID, func(course *model.Course) ([]uuid.UUID, error) {
		if _, _, ok := course.FindLesson(lessonID); !ok {
			return nil, model.NewAppError("LESSON_NOT_FOUND", "このコースにレッスンが見つかりません: "+lessonID.String(), "lessonId", model.ErrNotFound)
		}
		return []uuid.UUID{lessonID}, nil
	})
}

func (s *progressService) MarkModuleComplete(ctx context.Context, enrollmentID, moduleID uuid.UUID) (*model.ProgressUpdate, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "module_id", moduleID)

	return s.complete(ctx, logger, enrollmentID, func(course *model.Course) ([]uuid.UUID, error) {
		module, ok := course.FindModule(moduleID)
		if !ok {
			return nil, model.NewAppError("MODULE_NOT_FOUND", "このコースにモジュールが見つかりません: "+moduleID.String(), "moduleId", model.ErrNotFound)
		}
		ids := make([]uuid.UUID, 0, len(module.Lessons))
		for _, l := range module.Lessons {
			ids = append(ids, l.ID)
		}
		return ids, nil
	})
}

// complete はレッスン集合への追加、モジュール完了の再導出、進捗率の再計算を1トランザクションで行います。
// 同一受講登録への更新はプロセス内ロックと行ロックで直列化する。
func (s *progressService) complete(
	ctx context.Context,
	logger *slog.Logger,
	enrollmentID uuid.UUID,
	resolve func(course *model.Course) ([]uuid.UUID, error),
) (*model.ProgressUpdate, error) {
	unlock := s.locks.Lock(enrollmentID.String())
	defer unlock()

	var (
		enrollment *model.Enrollment
		course     *model.Course
		completed  map[uuid.UUID]bool
		previous   int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = s.enrollmentRepo.FindByIDForUpdate(ctx, tx, enrollmentID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return enrollmentNotFound(enrollmentID, err)
			}
			logger.Error("Failed to load enrollment", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
		}
		previous = enrollment.Percentage

		course, err = s.loadCourse(ctx, tx, logger, enrollment.CourseID)
		if err != nil {
			return err
		}

		lessonIDs, err := resolve(course)
		if err != nil {
			return err
		}

		done, err := s.progressRepo.CompletedLessonIDs(ctx, tx, enrollment.ID)
		if err != nil {
			logger.Error("Failed to load completed lessons", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "完了済みレッスンの取得に失敗しました。", "", model.Internal(err))
		}
		completed = toSet(done)

		now := s.now()
		var added []model.LessonCompletion
		for _, id := range lessonIDs {
			if completed[id] {
				continue
			}
			completed[id] = true
			added = append(added, model.LessonCompletion{EnrollmentID: enrollment.ID, LessonID: id, CompletedAt: now})
		}
		if len(added) == 0 {
			logger.Debug("Lessons already completed, nothing to do")
			return nil
		}

		if err := s.progressRepo.AddLessonCompletions(ctx, tx, added); err != nil {
			logger.Error("Failed to add lesson completions", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "レッスン完了の記録に失敗しました。", "", model.Internal(err))
		}

		if err := s.syncModuleCompletions(ctx, tx, enrollment.ID, course, completed, now); err != nil {
			logger.Error("Failed to sync module completions", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "モジュール完了の更新に失敗しました。", "", model.Internal(err))
		}

		enrollment.Percentage = coursePercentage(course, completed)
		enrollment.LastActivityAt = &now
		if enrollment.Percentage == 100 && enrollment.CompletedAt == nil {
			enrollment.CompletedAt = &now
		}
		if err := s.enrollmentRepo.UpdateProgress(ctx, tx, enrollment); err != nil {
			logger.Error("Failed to update enrollment progress", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の更新に失敗しました。", "", model.Internal(err))
		}

		logger.Info("Progress updated",
			"added_lessons", len(added),
			"previous_percentage", previous,
			"percentage", enrollment.Percentage,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &model.ProgressUpdate{
		Percentage:    enrollment.Percentage,
		Progress:      moduleBreakdown(course, completed),
		CurrentLesson: enrollment.CurrentLessonID,
	}

	// 100% への初回到達時のみ発行を試みる。結果は完了レスポンスを失敗させない。
	if previous < 100 && enrollment.Percentage == 100 {
		resp.Certificate = s.triggerCertificate(ctx, logger, enrollment)
	}
	return resp, nil
}

func (s *progressService) triggerCertificate(ctx context.Context, logger *slog.Logger, enrollment *model.Enrollment) *model.CertificateIssue {
	if s.issuer == nil {
		return nil
	}
	cert, outcome, err := s.issuer.Generate(ctx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		logger.Error("Certificate generation after completion failed", "error", err)
		status := model.IssueFailed
		if errors.Is(err, model.ErrNotEligible) {
			status = model.IssueNotEligible
		}
		return &model.CertificateIssue{Status: status, Message: "修了証の発行に失敗しました。後ほど再度お試しください。"}
	}
	return &model.CertificateIssue{Status: outcome, Certificate: model.NewCertificateResponse(cert)}
}

// syncModuleCompletions はレッスン集合からモジュール完了集合を導出し、差分のみ書き込みます。
func (s *progressService) syncModuleCompletions(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID, course *model.Course, completed map[uuid.UUID]bool, now time.Time) error {
	stored, err := s.progressRepo.CompletedModuleIDs(ctx, tx, enrollmentID)
	if err != nil {
		return err
	}
	storedSet := toSet(stored)

	var toAdd []model.ModuleCompletion
	var toRemove []uuid.UUID
	derived := make(map[uuid.UUID]bool, len(course.Modules))
	for _, m := range course.Modules {
		if moduleComplete(&m, completed) {
			derived[m.ID] = true
			if !storedSet[m.ID] {
				toAdd = append(toAdd, model.ModuleCompletion{EnrollmentID: enrollmentID, ModuleID: m.ID, CompletedAt: now})
			}
		}
	}
	for id := range storedSet {
		if !derived[id] {
			toRemove = append(toRemove, id)
		}
	}

	if err := s.progressRepo.RemoveModuleCompletions(ctx, tx, enrollmentID, toRemove); err != nil {
		return err
	}
	return s.progressRepo.AddModuleCompletions(ctx, tx, toAdd)
}

func (s *progressService) GetProgress(ctx context.Context, enrollmentID uuid.UUID) (*model.Progress, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID)

	enrollment, err := s.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	return s.buildProgress(ctx, s.db, logger, enrollment)
}

func (s *progressService) SetCurrentLesson(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.Progress, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "lesson_id", lessonID)

	unlock := s.locks.Lock(enrollmentID.String())
	defer unlock()

	var progress *model.Progress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.enrollmentRepo.FindByIDForUpdate(ctx, tx, enrollmentID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return enrollmentNotFound(enrollmentID, err)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
		}

		course, err := s.loadCourse(ctx, tx, logger, enrollment.CourseID)
		if err != nil {
			return err
		}
		// モジュールをまたいだ指定も許可する
		if _, _, ok := course.FindLesson(lessonID); !ok {
			return model.NewAppError("LESSON_NOT_FOUND", "このコースにレッスンが見つかりません: "+lessonID.String(), "lessonId", model.ErrNotFound)
		}

		if err := s.enrollmentRepo.UpdateCurrentLesson(ctx, tx, enrollment.ID, lessonID); err != nil {
			logger.Error("Failed to update current lesson", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "現在のレッスンの更新に失敗しました。", "", model.Internal(err))
		}
		enrollment.CurrentLessonID = &lessonID

		done, err := s.progressRepo.CompletedLessonIDs(ctx, tx, enrollment.ID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "完了済みレッスンの取得に失敗しました。", "", model.Internal(err))
		}
		progress = newProgress(enrollment, course, toSet(done))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Current lesson updated")
	return progress, nil
}

func (s *progressService) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, s.db, enrollmentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, enrollmentNotFound(enrollmentID, err)
		}
		middleware.GetLogger(ctx).Error("Failed to load enrollment", "enrollment_id", enrollmentID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
	}
	return enrollment, nil
}

func (s *progressService) FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByUserAndCourse(ctx, s.db, userID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("ENROLLMENT_NOT_FOUND", "このコースの受講登録が見つかりません: "+courseID.String(), "courseId", err)
		}
		middleware.GetLogger(ctx).Error("Failed to find enrollment", "user_id", userID, "course_id", courseID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
	}
	return enrollment, nil
}

func (s *progressService) buildProgress(ctx context.Context, db *gorm.DB, logger *slog.Logger, enrollment *model.Enrollment) (*model.Progress, error) {
	course, err := s.loadCourse(ctx, db, logger, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	done, err := s.progressRepo.CompletedLessonIDs(ctx, db, enrollment.ID)
	if err != nil {
		logger.Error("Failed to load completed lessons", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "完了済みレッスンの取得に失敗しました。", "", model.Internal(err))
	}
	return newProgress(enrollment, course, toSet(done)), nil
}

func (s *progressService) loadCourse(ctx context.Context, db *gorm.DB, logger *slog.Logger, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.catalogRepo.FindCourse(ctx, db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません: "+courseID.String(), "courseId", err)
		}
		logger.Error("Failed to load course structure", "course_id", courseID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コース情報の取得に失敗しました。", "", model.Internal(err))
	}
	return course, nil
}

func newProgress(enrollment *model.Enrollment, course *model.Course, completed map[uuid.UUID]bool) *model.Progress {
	return &model.Progress{
		EnrollmentID:    enrollment.ID,
		CourseID:        enrollment.CourseID,
		Percentage:      coursePercentage(course, completed),
		ProgressDetails: moduleBreakdown(course, completed),
		CurrentLesson:   enrollment.CurrentLessonID,
		CompletedAt:     enrollment.CompletedAt,
	}
}

// coursePercentage はコースに属するレッスンのみを数えて進捗率を計算します。
func coursePercentage(course *model.Course, completed map[uuid.UUID]bool) int {
	done := 0
	for _, m := range course.Modules {
		for _, l := range m.Lessons {
			if completed[l.ID] {
				done++
			}
		}
	}
	return roundedPercent(done, course.TotalLessons())
}

// moduleComplete はモジュールの全レッスンが完了集合に含まれるときのみ true。レッスン0件のモジュールは完了しない。
func moduleComplete(m *model.Module, completed map[uuid.UUID]bool) bool {
	if len(m.Lessons) == 0 {
		return false
	}
	for _, l := range m.Lessons {
		if !completed[l.ID] {
			return false
		}
	}
	return true
}

func moduleBreakdown(course *model.Course, completed map[uuid.UUID]bool) []model.ModuleProgress {
	out := make([]model.ModuleProgress, 0, len(course.Modules))
	for i := range course.Modules {
		m := &course.Modules[i]
		done := 0
		for _, l := range m.Lessons {
			if completed[l.ID] {
				done++
			}
		}
		out = append(out, model.ModuleProgress{
			ModuleID:         m.ID,
			Title:            m.Title,
			Completed:        moduleComplete(m, completed),
			CompletedLessons: done,
			TotalLessons:     len(m.Lessons),
		})
	}
	return out
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
