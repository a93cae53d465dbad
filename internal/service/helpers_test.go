// internal/service/helpers_test.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB はテストごとに独立したインメモリ SQLite を用意します。
// トランザクション中に別コネクションを取らないよう接続数は1に固定する。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), repository.NewGormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// buildCourse は modules 個のモジュールにそれぞれ lessons 個のレッスンを持つコースを作ります。
// lessons に 0 を含めると空モジュールになる。
func buildCourse(lessons ...int) *model.Course {
	course := &model.Course{ID: uuid.New(), Title: "テストコース"}
	for i, n := range lessons {
		m := model.Module{ID: uuid.New(), CourseID: course.ID, Title: fmt.Sprintf("Module %d", i+1), Position: i + 1}
		for j := 0; j < n; j++ {
			m.Lessons = append(m.Lessons, model.Lesson{
				ID:       uuid.New(),
				ModuleID: m.ID,
				Title:    fmt.Sprintf("Lesson %d-%d", i+1, j+1),
				Position: j + 1,
			})
		}
		course.Modules = append(course.Modules, m)
	}
	return course
}

// withQuiz は module に correct を正解とする設問を付けます。各設問の選択肢は4つ。
func withQuiz(m *model.Module, correct ...int) *model.Quiz {
	quiz := &model.Quiz{ID: uuid.New(), ModuleID: m.ID, Title: m.Title + " quiz"}
	opts, _ := json.Marshal([]string{"A", "B", "C", "D"})
	for i, c := range correct {
		quiz.Questions = append(quiz.Questions, model.Question{
			ID:           uuid.New(),
			QuizID:       quiz.ID,
			Position:     i + 1,
			Text:         fmt.Sprintf("Q%d", i+1),
			Options:      datatypes.JSON(opts),
			CorrectIndex: c,
		})
	}
	m.Quiz = quiz
	return quiz
}

func seedCourse(t *testing.T, db *gorm.DB, course *model.Course) {
	t.Helper()
	require.NoError(t, repository.NewGormCatalogRepository().CreateCourse(context.Background(), db, course))
}

func seedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID}
	require.NoError(t, repository.NewGormEnrollmentRepository().Create(context.Background(), db, e))
	return e
}

func allLessonIDs(course *model.Course) []uuid.UUID {
	var ids []uuid.UUID
	for _, m := range course.Modules {
		for _, l := range m.Lessons {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// recordingMailer は送信内容を保持するテスト用 Mailer です。
type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
