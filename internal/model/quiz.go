package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Unanswered は未回答の設問を表すインデックスです。
const Unanswered = -1

// QuizAttempt はクイズ回答の1回分です。作成後は更新も削除もしません。
type QuizAttempt struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_enrollment_module"`
	ModuleID     uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_enrollment_module"`
	// Answers は設問順の選択肢インデックス (未回答は -1) の JSON 配列
	Answers       datatypes.JSON `gorm:"not null"`
	Score         int            `gorm:"not null"`
	CorrectCount  int            `gorm:"not null"`
	QuestionCount int            `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"index"`
}

// AnswerIndexes は Answers をデコードします。
func (a QuizAttempt) AnswerIndexes() []int {
	var answers []int
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil
	}
	return answers
}

// Score は採点結果です。EmptyQuiz は設問が0件だったことを示す警告で、エラーではありません。
type Score struct {
	Percentage    int
	CorrectCount  int
	QuestionCount int
	EmptyQuiz     bool
}

// SubmitAttemptRequest はクイズ回答送信のリクエストDTO
// null は未回答として扱います。answers 自体の省略や null は全問未回答。
type SubmitAttemptRequest struct {
	Answers []*int `json:"answers" validate:"max=1000"`
}

// Indexes は null を Unanswered に置き換えたインデックス列を返します。
func (r SubmitAttemptRequest) Indexes() []int {
	out := make([]int, len(r.Answers))
	for i, a := range r.Answers {
		if a == nil {
			out[i] = Unanswered
			continue
		}
		out[i] = *a
	}
	return out
}

// AttemptResponse はクイズ回答のレスポンスDTO
type AttemptResponse struct {
	AttemptID uuid.UUID `json:"attemptId"`
	ModuleID  uuid.UUID `json:"moduleId"`
	Score     int       `json:"score"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	EmptyQuiz bool      `json:"emptyQuiz"`
	Answers   []int     `json:"answers,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewAttemptResponse(a *QuizAttempt) AttemptResponse {
	return AttemptResponse{
		AttemptID: a.ID,
		ModuleID:  a.ModuleID,
		Score:     a.Score,
		Correct:   a.CorrectCount,
		Total:     a.QuestionCount,
		EmptyQuiz: a.QuestionCount == 0,
		Answers:   a.AnswerIndexes(),
		CreatedAt: a.CreatedAt,
	}
}
