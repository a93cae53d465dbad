// cmd/seed/main.go
// 開発用: デモコースと受講登録を1件投入します。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go_course_progress/internal/config"
	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"
)

func main() {
	configPath := flag.String("config", "../../configs", "directory containing config.yaml")
	userFlag := flag.String("user", "", "learner user id (uuid); random when empty")
	email := flag.String("email", "learner@example.com", "learner email for certificate notification")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect database using GORM: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	userID := uuid.New()
	if *userFlag != "" {
		if userID, err = uuid.Parse(*userFlag); err != nil {
			log.Fatalf("Invalid -user value: %v", err)
		}
	}

	course := demoCourse()
	enrollment := &model.Enrollment{
		ID:           uuid.New(),
		UserID:       userID,
		CourseID:     course.ID,
		LearnerEmail: *email,
		AgeGroup:     "25-34",
		Region:       "JP",
	}

	ctx := context.Background()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormCatalogRepository().CreateCourse(ctx, tx, course); err != nil {
			return err
		}
		return repository.NewGormEnrollmentRepository().Create(ctx, tx, enrollment)
	})
	if err != nil && !errors.Is(err, model.ErrConflict) {
		log.Fatalf("Failed to seed: %v", err)
	}

	fmt.Println("Seed completed.")
	fmt.Printf("  course_id:     %s\n", course.ID)
	fmt.Printf("  user_id:       %s\n", userID)
	fmt.Printf("  enrollment_id: %s\n", enrollment.ID)
	for _, m := range course.Modules {
		fmt.Printf("  module %d %s\n", m.Position, m.ID)
		for _, l := range m.Lessons {
			fmt.Printf("    lesson %d %s\n", l.Position, l.ID)
		}
	}
}

// demoCourse は 3 モジュール x 2 レッスン、最初のモジュールに 4 問のクイズを持つコースです。
func demoCourse() *model.Course {
	course := &model.Course{ID: uuid.New(), Title: "Go 入門"}
	titles := []string{"基本文法", "並行処理", "テスト"}
	for i, title := range titles {
		m := model.Module{ID: uuid.New(), CourseID: course.ID, Title: title, Position: i + 1}
		for j := 1; j <= 2; j++ {
			m.Lessons = append(m.Lessons, model.Lesson{
				ID:              uuid.New(),
				ModuleID:        m.ID,
				Title:           fmt.Sprintf("%s %d", title, j),
				Position:        j,
				DurationMinutes: 15,
			})
		}
		course.Modules = append(course.Modules, m)
	}

	first := &course.Modules[0]
	quiz := &model.Quiz{ID: uuid.New(), ModuleID: first.ID, Title: "基本文法チェック"}
	questions := []struct {
		text    string
		options []string
		correct int
	}{
		{"変数宣言の短縮形は?", []string{":=", "=", "==", "=>"}, 0},
		{"スライスに要素を追加する組み込み関数は?", []string{"push", "append", "add", "insert"}, 1},
		{"エラーを表すインターフェースは?", []string{"Exception", "Err", "error", "Throwable"}, 2},
		{"パッケージ外に公開される識別子は?", []string{"小文字始まり", "_ 始まり", "export 付き", "大文字始まり"}, 3},
	}
	for i, q := range questions {
		opts, _ := json.Marshal(q.options)
		quiz.Questions = append(quiz.Questions, model.Question{
			ID:           uuid.New(),
			QuizID:       quiz.ID,
			Position:     i + 1,
			Text:         q.text,
			Options:      datatypes.JSON(opts),
			CorrectIndex: q.correct,
		})
	}
	first.Quiz = quiz
	return course
}
