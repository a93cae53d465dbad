package model

import (
	"time"

	"github.com/google/uuid"
)

// Timeframe は集計対象期間です。
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

var Timeframes = []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeYear}

func ParseTimeframe(s string) (Timeframe, bool) {
	switch Timeframe(s) {
	case TimeframeWeek, TimeframeMonth, TimeframeYear:
		return Timeframe(s), true
	case "":
		return TimeframeMonth, true
	}
	return "", false
}

// CategoryValue は円グラフ表示向けの名前/値ペアです。
type CategoryValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type ModuleStat struct {
	ModuleID       uuid.UUID `json:"moduleId"`
	Title          string    `json:"title"`
	CompletedCount int64     `json:"completedCount"`
	CompletionRate float64   `json:"completionRate"`
}

type EngagementBucket struct {
	Label          string    `json:"label"`
	Start          time.Time `json:"start"`
	ActiveStudents int       `json:"activeStudents"`
}

type Demographics struct {
	AgeGroups []CategoryValue `json:"ageGroups"`
	Regions   []CategoryValue `json:"regions"`
}

// CourseAnalytics は集計結果です。派生ビューであり、進捗や修了証の正とはしません。
type CourseAnalytics struct {
	CourseID              uuid.UUID          `json:"courseId"`
	Timeframe             Timeframe          `json:"timeframe"`
	WindowStart           time.Time          `json:"windowStart"`
	WindowEnd             time.Time          `json:"windowEnd"`
	TotalEnrollments      int64              `json:"totalEnrollments"`
	CompletionRate        float64            `json:"completionRate"`
	AverageRating         float64            `json:"averageRating"`
	AverageCompletionDays float64            `json:"averageCompletionDays"`
	ProgressStats         []ModuleStat       `json:"progressStats"`
	QuizStats             []CategoryValue    `json:"quizStats"`
	Demographics          Demographics       `json:"demographics"`
	StudentEngagement     []EngagementBucket `json:"studentEngagement"`
	GeneratedAt           time.Time          `json:"generatedAt"`
}

// CompletionSpan は受講登録から修了証発行までの期間です。
type CompletionSpan struct {
	EnrolledAt time.Time
	IssuedAt   time.Time
}

// ActivityEvent はレッスン完了またはクイズ回答の記録です。
type ActivityEvent struct {
	EnrollmentID uuid.UUID
	OccurredAt   time.Time
}

// ModuleCompletionCount はモジュールごとの完了受講者数です。
type ModuleCompletionCount struct {
	ModuleID uuid.UUID
	Count    int64
}
