package model

import (
	"time"

	"github.com/google/uuid"
)

// ModuleProgress はモジュールごとの完了状況です。
type ModuleProgress struct {
	ModuleID         uuid.UUID `json:"moduleId"`
	Title            string    `json:"title"`
	Completed        bool      `json:"completed"`
	CompletedLessons int       `json:"completedLessons"`
	TotalLessons     int       `json:"totalLessons"`
}

// Progress は getProgress のレスポンスDTO
type Progress struct {
	EnrollmentID    uuid.UUID        `json:"enrollmentId"`
	CourseID        uuid.UUID        `json:"courseId"`
	Percentage      int              `json:"percentage"`
	ProgressDetails []ModuleProgress `json:"progressDetails"`
	CurrentLesson   *uuid.UUID       `json:"currentLesson"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
}

// ProgressUpdate はレッスン/モジュール完了操作のレスポンスDTO
type ProgressUpdate struct {
	Percentage    int               `json:"percentage"`
	Progress      []ModuleProgress  `json:"progress"`
	CurrentLesson *uuid.UUID        `json:"currentLesson"`
	Certificate   *CertificateIssue `json:"certificate,omitempty"`
}

// SetCurrentLessonRequest は現在レッスン更新のリクエストDTO
type SetCurrentLessonRequest struct {
	LessonID string `json:"lessonId" validate:"required,uuid"`
}
