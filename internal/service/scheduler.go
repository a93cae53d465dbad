package service

import (
	"context"
	"log/slog"
	"time"

	"go_course_progress/internal/middleware"

	"github.com/robfig/cron/v3"
)

// refreshTimeout は1回のリフレッシュジョブの上限時間
const refreshTimeout = 5 * time.Minute

// AnalyticsScheduler は集計レポートを定期的に再計算します。
type AnalyticsScheduler struct {
	cron      *cron.Cron
	analytics AnalyticsService
	logger    *slog.Logger
}

func NewAnalyticsScheduler(analytics AnalyticsService, logger *slog.Logger) *AnalyticsScheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)
	return &AnalyticsScheduler{cron: c, analytics: analytics, logger: logger}
}

// Start はジョブを登録して開始します。spec は cron 式または "@every 10m" 形式。
func (s *AnalyticsScheduler) Start(spec string) error {
	id, err := s.cron.AddFunc(spec, s.runRefresh)
	if err != nil {
		s.logger.Error("Failed to register analytics refresh job", "spec", spec, "error", err)
		return err
	}
	s.cron.Start()
	s.logger.Info("Analytics refresh scheduler started", "spec", spec, "entry_id", id)
	return nil
}

// Stop は実行中のジョブの終了を待ってから停止します。
func (s *AnalyticsScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Analytics refresh scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Analytics refresh scheduler stop timed out", "error", ctx.Err())
	}
}

func (s *AnalyticsScheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	ctx = middleware.WithLogger(ctx, s.logger.With("job", "analytics_refresh"))

	start := time.Now()
	if err := s.analytics.RefreshAll(ctx); err != nil {
		s.logger.Error("Analytics refresh job failed", "error", err)
		return
	}
	s.logger.Debug("Analytics refresh job finished", "elapsed_ms", time.Since(start).Milliseconds())
}
