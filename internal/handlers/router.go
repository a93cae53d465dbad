package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go_course_progress/internal/config"
	"go_course_progress/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Pinger はヘルスチェックで疎通確認できる依存先です。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers はルーターに登録するハンドラ一式です。
type Handlers struct {
	Progress    *ProgressHandler
	Quiz        *QuizHandler
	Certificate *CertificateHandler
	Analytics   *AnalyticsHandler
	Review      *ReviewHandler
}

func NewRouter(cfg *config.Config, logger *slog.Logger, db Pinger, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
		Debug:            false,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/health", healthCheck(db))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			logger.Info("Applying JWT authentication middleware")
			r.Use(middleware.JWTAuthMiddleware(cfg.JWT))
		} else {
			logger.Warn("Authentication disabled, using X-User-ID header")
			r.Use(middleware.DevUserContextMiddleware)
		}

		r.Route("/enrollments/{enrollmentId}", func(r chi.Router) {
			r.Get("/progress", h.Progress.GetProgress)
			r.Post("/lessons/{lessonId}/complete", h.Progress.CompleteLesson)
			r.Put("/current-lesson", h.Progress.SetCurrentLesson)
		})

		r.Route("/courses/{courseId}", func(r chi.Router) {
			r.Post("/modules/{moduleId}/complete", h.Progress.CompleteModule)
			r.Post("/modules/{moduleId}/quiz/attempt", h.Quiz.SubmitAttempt)
			r.Get("/modules/{moduleId}/quiz/attempts", h.Quiz.ListAttempts)
			r.Get("/analytics", h.Analytics.GetCourseAnalytics)
			r.Post("/reviews", h.Review.SubmitReview)
			r.Get("/reviews/me", h.Review.GetMyReview)
		})

		r.Route("/certificates", func(r chi.Router) {
			r.Post("/generate/{courseId}", h.Certificate.Generate)
			r.Get("/{courseId}", h.Certificate.GetStatus)
		})
	})

	return r
}

func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := db.PingContext(ctx); err != nil {
			middleware.GetLogger(ctx).Error("Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
