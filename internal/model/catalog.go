package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Course 以下のテーブルは外部のコースカタログが管理します。
// このサービスからは読み取り専用です。
type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"createdAt"`

	Modules []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

type Module struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"courseId"`
	Title    string    `gorm:"not null" json:"title"`
	Position int       `gorm:"not null" json:"position"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
	Quiz    *Quiz    `gorm:"foreignKey:ModuleID" json:"quiz,omitempty"`
}

type Lesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID        uuid.UUID `gorm:"type:uuid;not null;index" json:"moduleId"`
	Title           string    `gorm:"not null" json:"title"`
	Position        int       `gorm:"not null" json:"position"`
	DurationMinutes int       `json:"durationMinutes"`
}

type Quiz struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"moduleId"`
	Title    string    `json:"title"`

	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

type Question struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID   uuid.UUID `gorm:"type:uuid;not null;index" json:"quizId"`
	Position int       `gorm:"not null" json:"position"`
	Text     string    `gorm:"not null" json:"text"`
	// Options は選択肢テキストの JSON 配列
	Options      datatypes.JSON `json:"options"`
	CorrectIndex int            `gorm:"not null" json:"-"`
}

// TotalLessons はコース内の全レッスン数を返します。
func (c *Course) TotalLessons() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// FindModule はコース内のモジュールを探します。
func (c *Course) FindModule(moduleID uuid.UUID) (*Module, bool) {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i], true
		}
	}
	return nil, false
}

// FindLesson はコース内のレッスンと、それを含むモジュールを探します。
func (c *Course) FindLesson(lessonID uuid.UUID) (*Lesson, *Module, bool) {
	for i := range c.Modules {
		m := &c.Modules[i]
		for j := range m.Lessons {
			if m.Lessons[j].ID == lessonID {
				return &m.Lessons[j], m, true
			}
		}
	}
	return nil, nil, false
}
