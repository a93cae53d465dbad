package service

import (
	"context"
	"encoding/json"
	"errors"

	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreAttempt は回答キーと回答を突き合わせて採点します。副作用はありません。
// 未回答・範囲外のインデックスは不正解として数える。設問0件なら 0 点で EmptyQuiz を立てる。
func ScoreAttempt(quiz *model.Quiz, answers []int) model.Score {
	if quiz == nil || len(quiz.Questions) == 0 {
		return model.Score{EmptyQuiz: true}
	}

	correct := 0
	for i, q := range quiz.Questions {
		if i >= len(answers) {
			break
		}
		if answers[i] >= 0 && answers[i] == q.CorrectIndex {
			correct++
		}
	}
	total := len(quiz.Questions)
	return model.Score{
		Percentage:    roundedPercent(correct, total),
		CorrectCount:  correct,
		QuestionCount: total,
	}
}

type QuizService interface {
	RecordAttempt(ctx context.Context, enrollmentID, moduleID uuid.UUID, answers []int) (*model.QuizAttempt, error)
	ListAttempts(ctx context.Context, enrollmentID, moduleID uuid.UUID) ([]*model.QuizAttempt, error)
}

type quizService struct {
	db             *gorm.DB
	catalogRepo    repository.CatalogRepository
	enrollmentRepo repository.EnrollmentRepository
	attemptRepo    repository.AttemptRepository
}

func NewQuizService(
	db *gorm.DB,
	catalogRepo repository.CatalogRepository,
	enrollmentRepo repository.EnrollmentRepository,
	attemptRepo repository.AttemptRepository,
) QuizService {
	return &quizService{
		db:             db,
		catalogRepo:    catalogRepo,
		enrollmentRepo: enrollmentRepo,
		attemptRepo:    attemptRepo,
	}
}

// RecordAttempt は採点結果を不変の QuizAttempt として保存します。モジュール完了には影響しない。
func (s *quizService) RecordAttempt(ctx context.Context, enrollmentID, moduleID uuid.UUID, answers []int) (*model.QuizAttempt, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "module_id", moduleID)

	module, err := s.findModule(ctx, enrollmentID, moduleID)
	if err != nil {
		return nil, err
	}
	if module.Quiz == nil {
		return nil, model.NewAppError("QUIZ_NOT_FOUND", "このモジュールにはクイズがありません: "+moduleID.String(), "moduleId", model.ErrNotFound)
	}

	score := ScoreAttempt(module.Quiz, answers)
	if score.EmptyQuiz {
		logger.Warn("Quiz has no questions, scoring attempt as 0", "quiz_id", module.Quiz.ID)
	}

	if answers == nil {
		answers = []int{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "回答の保存に失敗しました。", "", model.Internal(err))
	}

	attempt := &model.QuizAttempt{
		ID:            uuid.New(),
		EnrollmentID:  enrollmentID,
		ModuleID:      moduleID,
		Answers:       datatypes.JSON(raw),
		Score:         score.Percentage,
		CorrectCount:  score.CorrectCount,
		QuestionCount: score.QuestionCount,
	}
	if err := s.attemptRepo.Create(ctx, s.db, attempt); err != nil {
		logger.Error("Failed to persist quiz attempt", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "回答の保存に失敗しました。", "", model.Internal(err))
	}

	logger.Info("Quiz attempt recorded",
		"attempt_id", attempt.ID,
		"score", attempt.Score,
		"correct", attempt.CorrectCount,
		"total", attempt.QuestionCount,
	)
	return attempt, nil
}

func (s *quizService) ListAttempts(ctx context.Context, enrollmentID, moduleID uuid.UUID) ([]*model.QuizAttempt, error) {
	if _, err := s.findModule(ctx, enrollmentID, moduleID); err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.ListByEnrollmentAndModule(ctx, s.db, enrollmentID, moduleID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list quiz attempts", "enrollment_id", enrollmentID, "module_id", moduleID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "回答履歴の取得に失敗しました。", "", model.Internal(err))
	}
	return attempts, nil
}

// findModule は受講登録のコースに属するモジュールを返します。
func (s *quizService) findModule(ctx context.Context, enrollmentID, moduleID uuid.UUID) (*model.Module, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, s.db, enrollmentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, enrollmentNotFound(enrollmentID, err)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録の取得に失敗しました。", "", model.Internal(err))
	}

	course, err := s.catalogRepo.FindCourse(ctx, s.db, enrollment.CourseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません: "+enrollment.CourseID.String(), "courseId", err)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コース情報の取得に失敗しました。", "", model.Internal(err))
	}

	module, ok := course.FindModule(moduleID)
	if !ok {
		return nil, model.NewAppError("MODULE_NOT_FOUND", "このコースにモジュールが見つかりません: "+moduleID.String(), "moduleId", model.ErrNotFound)
	}
	return module, nil
}
