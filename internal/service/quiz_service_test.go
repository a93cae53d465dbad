// internal/service/quiz_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreAttempt(t *testing.T) {
	quiz := &model.Quiz{}
	for _, c := range []int{0, 1, 2, 3} {
		quiz.Questions = append(quiz.Questions, model.Question{CorrectIndex: c})
	}

	tests := []struct {
		name        string
		quiz        *model.Quiz
		answers     []int
		wantPct     int
		wantCorrect int
		wantEmpty   bool
	}{
		{"正常系: 全問正解", quiz, []int{0, 1, 2, 3}, 100, 4, false},
		{"正常系: 3/4 正解", quiz, []int{0, 1, 0, 3}, 75, 3, false},
		{"正常系: 回答が足りない", quiz, []int{0}, 25, 1, false},
		{"正常系: 回答が多すぎる分は無視", quiz, []int{0, 1, 2, 3, 0, 0}, 100, 4, false},
		{"正常系: 未回答(-1)と範囲外は不正解", quiz, []int{-1, 9, 2, -5}, 50, 2, false},
		{"正常系: 回答なし", quiz, nil, 0, 0, false},
		{"境界値: 設問0件", &model.Quiz{}, []int{0}, 0, 0, true},
		{"境界値: クイズ nil", nil, []int{0}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreAttempt(tt.quiz, tt.answers)
			assert.Equal(t, tt.wantPct, score.Percentage)
			assert.Equal(t, tt.wantCorrect, score.CorrectCount)
			assert.Equal(t, tt.wantEmpty, score.EmptyQuiz)
		})
	}
}

func TestScoreAttempt_Rounding(t *testing.T) {
	quiz := &model.Quiz{}
	for i := 0; i < 3; i++ {
		quiz.Questions = append(quiz.Questions, model.Question{CorrectIndex: 0})
	}
	assert.Equal(t, 33, ScoreAttempt(quiz, []int{0, 1, 1}).Percentage)
	assert.Equal(t, 67, ScoreAttempt(quiz, []int{0, 0, 1}).Percentage)
}

func Test_quizService_RecordAttempt(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	course := buildCourse(1, 1, 1)
	withQuiz(&course.Modules[0], 0, 1, 2, 3)
	withQuiz(&course.Modules[2])
	seedCourse(t, db, course)
	enrollment := seedEnrollment(t, db, uuid.New(), course.ID)

	svc := NewQuizService(db, repository.NewGormCatalogRepository(), repository.NewGormEnrollmentRepository(), repository.NewGormAttemptRepository())

	t.Run("正常系: 採点して保存する", func(t *testing.T) {
		attempt, err := svc.RecordAttempt(ctx, enrollment.ID, course.Modules[0].ID, []int{0, 1, 0, 3})
		require.NoError(t, err)
		assert.Equal(t, 75, attempt.Score)
		assert.Equal(t, 3, attempt.CorrectCount)
		assert.Equal(t, 4, attempt.QuestionCount)
		assert.Equal(t, []int{0, 1, 0, 3}, attempt.AnswerIndexes())

		resp := model.NewAttemptResponse(attempt)
		assert.Equal(t, 75, resp.Score)
		assert.False(t, resp.EmptyQuiz)
	})

	t.Run("正常系: 回答なしは全問未回答で0点", func(t *testing.T) {
		attempt, err := svc.RecordAttempt(ctx, enrollment.ID, course.Modules[0].ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, attempt.Score)
		assert.Equal(t, 0, attempt.CorrectCount)
		assert.Equal(t, 4, attempt.QuestionCount)
		assert.JSONEq(t, `[]`, string(attempt.Answers))
	})

	t.Run("正常系: 設問0件のクイズは0点", func(t *testing.T) {
		attempt, err := svc.RecordAttempt(ctx, enrollment.ID, course.Modules[2].ID, []int{1})
		require.NoError(t, err)
		assert.Equal(t, 0, attempt.Score)
		assert.Equal(t, 0, attempt.QuestionCount)
		assert.True(t, model.NewAttemptResponse(attempt).EmptyQuiz)
	})

	t.Run("異常系: クイズのないモジュール", func(t *testing.T) {
		_, err := svc.RecordAttempt(ctx, enrollment.ID, course.Modules[1].ID, []int{0})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: コース外のモジュール", func(t *testing.T) {
		_, err := svc.RecordAttempt(ctx, enrollment.ID, uuid.New(), []int{0})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: 受講登録が存在しない", func(t *testing.T) {
		_, err := svc.RecordAttempt(ctx, uuid.New(), course.Modules[0].ID, []int{0})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("正常系: クイズ回答はモジュール完了に影響しない", func(t *testing.T) {
		done, err := repository.NewGormProgressRepository().CompletedModuleIDs(ctx, db, enrollment.ID)
		require.NoError(t, err)
		assert.Empty(t, done)
	})
}

func Test_quizService_ListAttempts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	course := buildCourse(1)
	withQuiz(&course.Modules[0], 0, 0)
	seedCourse(t, db, course)
	enrollment := seedEnrollment(t, db, uuid.New(), course.ID)
	moduleID := course.Modules[0].ID

	svc := NewQuizService(db, repository.NewGormCatalogRepository(), repository.NewGormEnrollmentRepository(), repository.NewGormAttemptRepository())

	attempts, err := svc.ListAttempts(ctx, enrollment.ID, moduleID)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	first, err := svc.RecordAttempt(ctx, enrollment.ID, moduleID, []int{1, 1})
	require.NoError(t, err)
	// created_at の順序を確定させる
	require.NoError(t, db.Model(first).Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	second, err := svc.RecordAttempt(ctx, enrollment.ID, moduleID, []int{0, 0})
	require.NoError(t, err)

	attempts, err = svc.ListAttempts(ctx, enrollment.ID, moduleID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, second.ID, attempts[0].ID)
	assert.Equal(t, 100, attempts[0].Score)
	assert.Equal(t, first.ID, attempts[1].ID)
	assert.Equal(t, 0, attempts[1].Score)
}
