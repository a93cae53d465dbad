// internal/repository/postgres_integration_test.go
package repository_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"
	"go_course_progress/internal/service"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// INTEGRATION_TEST=1 のときだけ PostgreSQL コンテナを起動する
var (
	testDB  *gorm.DB
	testDSN string
)

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		os.Exit(m.Run())
	}

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=course_progress",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL resource: %s", err)
	}
	resource.Expire(300)

	testDSN = fmt.Sprintf("postgres://user:secret@%s/course_progress?sslmode=disable", resource.GetHostPort("5432/tcp"))
	testLogger.Info("PostgreSQL container started", slog.String("container_id_short", resource.Container.ID[:12]))

	if err = pool.Retry(func() error {
		db, errRetry := gorm.Open(postgres.Open(testDSN), repository.NewGormConfig(gormlogger.Default.LogMode(gormlogger.Silent)))
		if errRetry != nil {
			return errRetry
		}
		sqlDB, errRetry := db.DB()
		if errRetry != nil {
			return errRetry
		}
		if errRetry = sqlDB.Ping(); errRetry != nil {
			return errRetry
		}
		testDB = db
		return nil
	}); err != nil {
		pool.Purge(resource)
		log.Fatalf("Could not connect to database: %s", err)
	}

	if err := repository.AutoMigrate(testDB); err != nil {
		pool.Purge(resource)
		log.Fatalf("Could not migrate database: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("INTEGRATION_TEST=1 が設定されていないためスキップ")
	}
	return testDB
}

func seedCourse(t *testing.T, db *gorm.DB, modules, lessons int) *model.Course {
	t.Helper()
	course := &model.Course{ID: uuid.New(), Title: "統合テストコース"}
	for i := 0; i < modules; i++ {
		m := model.Module{ID: uuid.New(), CourseID: course.ID, Title: fmt.Sprintf("Module %d", i+1), Position: i + 1}
		for j := 0; j < lessons; j++ {
			m.Lessons = append(m.Lessons, model.Lesson{ID: uuid.New(), ModuleID: m.ID, Title: fmt.Sprintf("Lesson %d", j+1), Position: j + 1})
		}
		course.Modules = append(course.Modules, m)
	}
	require.NoError(t, repository.NewGormCatalogRepository().CreateCourse(context.Background(), db, course))
	return course
}

func seedEnrollment(t *testing.T, db *gorm.DB, courseID uuid.UUID, mutate func(e *model.Enrollment)) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{ID: uuid.New(), UserID: uuid.New(), CourseID: courseID}
	if mutate != nil {
		mutate(e)
	}
	require.NoError(t, repository.NewGormEnrollmentRepository().Create(context.Background(), db, e))
	return e
}

func TestCertificateRepository_UniqueViolation(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	course := seedCourse(t, db, 1, 1)
	enrollment := seedEnrollment(t, db, course.ID, nil)
	repo := repository.NewGormCertificateRepository()

	newCert := func() *model.Certificate {
		return &model.Certificate{
			ID: uuid.New(), UserID: enrollment.UserID, CourseID: course.ID, EnrollmentID: enrollment.ID,
			CertificateNumber: "CERT-" + uuid.NewString(), IssuedAt: time.Now().UTC(),
		}
	}

	require.NoError(t, repo.Create(ctx, db, newCert()))

	t.Run("TranslateError 有効", func(t *testing.T) {
		err := repo.Create(ctx, db, newCert())
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("TranslateError 無効でも pgconn のエラーコードで判定する", func(t *testing.T) {
		raw, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		require.NoError(t, err)
		sqlDB, _ := raw.DB()
		defer sqlDB.Close()

		err = repo.Create(ctx, raw, newCert())
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	found, err := repo.FindByUserAndCourse(ctx, db, enrollment.UserID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, found.EnrollmentID)
}

func TestEnrollmentRepository_FindByIDForUpdate(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	course := seedCourse(t, db, 1, 1)
	enrollment := seedEnrollment(t, db, course.ID, nil)
	repo := repository.NewGormEnrollmentRepository()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- db.Transaction(func(tx *gorm.DB) error {
			if _, err := repo.FindByIDForUpdate(ctx, tx, enrollment.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	// 行ロック中は別トランザクションの FOR UPDATE が待たされる
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET LOCAL lock_timeout = '200ms'").Error; err != nil {
			return err
		}
		_, err := repo.FindByIDForUpdate(ctx, tx, enrollment.ID)
		return err
	})
	assert.Error(t, err)

	close(release)
	require.NoError(t, <-done)

	err = db.Transaction(func(tx *gorm.DB) error {
		got, err := repo.FindByIDForUpdate(ctx, tx, enrollment.ID)
		if err != nil {
			return err
		}
		got.Percentage = 40
		return repo.UpdateProgress(ctx, tx, got)
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Percentage)

	_, err = repo.FindByID(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAnalyticsRepository_Queries(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	course := seedCourse(t, db, 2, 1)
	now := time.Now().UTC()
	from, to := now.Add(-24*time.Hour), now.Add(time.Hour)

	e1 := seedEnrollment(t, db, course.ID, func(e *model.Enrollment) { e.AgeGroup, e.Region, e.Percentage = "25-34", "JP", 100 })
	e2 := seedEnrollment(t, db, course.ID, func(e *model.Enrollment) { e.AgeGroup, e.Region = "25-34", "US" })
	seedEnrollment(t, db, course.ID, func(e *model.Enrollment) { e.AgeGroup, e.Region = "35-44", "JP" })

	require.NoError(t, db.Create(&[]model.Review{
		{ID: uuid.New(), UserID: e1.UserID, CourseID: course.ID, Rating: 5},
		{ID: uuid.New(), UserID: e2.UserID, CourseID: course.ID, Rating: 2},
	}).Error)
	require.NoError(t, db.Create(&model.ModuleCompletion{EnrollmentID: e1.ID, ModuleID: course.Modules[0].ID, CompletedAt: now}).Error)
	require.NoError(t, db.Create(&model.LessonCompletion{EnrollmentID: e1.ID, LessonID: course.Modules[0].Lessons[0].ID, CompletedAt: now}).Error)
	require.NoError(t, db.Create(&model.QuizAttempt{
		ID: uuid.New(), EnrollmentID: e2.ID, ModuleID: course.Modules[1].ID,
		Answers: datatypes.JSON(`[0]`), Score: 80, CorrectCount: 4, QuestionCount: 5,
	}).Error)
	require.NoError(t, db.Create(&model.Certificate{
		ID: uuid.New(), UserID: e1.UserID, CourseID: course.ID, EnrollmentID: e1.ID,
		CertificateNumber: "CERT-" + uuid.NewString(), IssuedAt: now,
	}).Error)

	repo := repository.NewGormAnalyticsRepository()

	total, err := repo.CountEnrollments(ctx, db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	completed, err := repo.CountCompletedEnrollments(ctx, db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)

	avg, err := repo.AverageRating(ctx, db, course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, avg, 0.0001)

	spans, err := repo.CompletionSpans(ctx, db, course.ID, from, to)
	require.NoError(t, err)
	assert.Len(t, spans, 1)

	modules, err := repo.ModuleCompletionCounts(ctx, db, course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, course.Modules[0].ID, modules[0].ModuleID)
	assert.Equal(t, int64(1), modules[0].Count)

	scores, err := repo.QuizScores(ctx, db, course.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, []int{80}, scores)

	ages, err := repo.DemographicCounts(ctx, db, course.ID, repository.DemographicAgeGroup)
	require.NoError(t, err)
	require.Len(t, ages, 2)
	assert.Equal(t, model.CategoryValue{Name: "25-34", Value: 2}, ages[0])

	_, err = repo.DemographicCounts(ctx, db, course.ID, "email; DROP TABLE enrollments")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	events, err := repo.ActivityEvents(ctx, db, course.ID, from, to)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	empty, err := repo.AverageRating(ctx, db, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestCertificateService_ConcurrentGenerate_Postgres(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	course := seedCourse(t, db, 1, 1)
	enrollment := seedEnrollment(t, db, course.ID, func(e *model.Enrollment) { e.Percentage = 100 })

	// インスタンスごとにロックが別なので、競合は一意インデックスで解決される
	newService := func() service.CertificateService {
		return service.NewCertificateService(db, repository.NewGormCertificateRepository(), repository.NewGormEnrollmentRepository(), repository.NewGormCatalogRepository(), nil, nil)
	}
	services := []service.CertificateService{newService(), newService(), newService()}

	const callers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[model.IssueOutcome]int{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(svc service.CertificateService) {
			defer wg.Done()
			_, outcome, err := svc.Generate(ctx, enrollment.UserID, course.ID)
			assert.NoError(t, err)
			mu.Lock()
			outcomes[outcome]++
			mu.Unlock()
		}(services[i%len(services)])
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes[model.IssueCreated])
	assert.Equal(t, callers-1, outcomes[model.IssueAlreadyIssued])

	var n int64
	require.NoError(t, db.Model(&model.Certificate{}).Where("user_id = ? AND course_id = ?", enrollment.UserID, course.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
