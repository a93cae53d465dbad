package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment は (ユーザー, コース) の受講登録です。
// 作成は外部の受講申込フローが行い、進捗の更新は ProgressService 経由でのみ行います。
type Enrollment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_user_course,unique"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_user_course,unique;index"`

	Percentage      int        `gorm:"not null;default:0"`
	CurrentLessonID *uuid.UUID `gorm:"type:uuid"`
	CompletedAt     *time.Time
	LastActivityAt  *time.Time

	// 申込フローから渡される任意の属性
	LearnerEmail string
	AgeGroup     string
	Region       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LessonCompletion は完了済みレッスン集合の1要素です。
type LessonCompletion struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	LessonID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompletedAt  time.Time `gorm:"not null;index"`
}

// ModuleCompletion は完了済みモジュール集合の1要素です。
// レッスン集合から導出され、直接は設定しません。
type ModuleCompletion struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ModuleID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CompletedAt  time.Time `gorm:"not null"`
}
