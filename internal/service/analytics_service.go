// internal/service/analytics_service.go
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go_course_progress/internal/config"
	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const unspecifiedCategory = "unspecified"

// analyticsBuildTimeout は1レポートの集計にかける上限時間
const analyticsBuildTimeout = 30 * time.Second

// quizBands は得点帯の定義です。下限昇順。
var quizBands = []struct {
	Name string
	Min  int
}{
	{"0-49", 0},
	{"50-69", 50},
	{"70-89", 70},
	{"90-100", 90},
}

type AnalyticsService interface {
	// GetCourseAnalytics は集計レポートを返します。fresh が true ならキャッシュを使わない。
	GetCourseAnalytics(ctx context.Context, courseID uuid.UUID, timeframe model.Timeframe, fresh bool) (*model.CourseAnalytics, error)
	// RefreshAll は全コース・全期間のレポートを再計算してキャッシュします。
	RefreshAll(ctx context.Context) error
}

type cachedReport struct {
	report *model.CourseAnalytics
	at     time.Time
}

type analyticsService struct {
	db            *gorm.DB
	catalogRepo   repository.CatalogRepository
	analyticsRepo repository.AnalyticsRepository
	ttl           time.Duration
	now           func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cachedReport
}

func NewAnalyticsService(db *gorm.DB, catalogRepo repository.CatalogRepository, analyticsRepo repository.AnalyticsRepository, cfg *config.Config) AnalyticsService {
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.App.AnalyticsCacheTTL
	}
	return &analyticsService{
		db:            db,
		catalogRepo:   catalogRepo,
		analyticsRepo: analyticsRepo,
		ttl:           ttl,
		now:           func() time.Time { return time.Now().UTC() },
		cache:         make(map[string]cachedReport),
	}
}

func cacheKey(courseID uuid.UUID, tf model.Timeframe) string {
	return courseID.String() + "/" + string(tf)
}

func (s *analyticsService) GetCourseAnalytics(ctx context.Context, courseID uuid.UUID, timeframe model.Timeframe, fresh bool) (*model.CourseAnalytics, error) {
	if _, ok := model.ParseTimeframe(string(timeframe)); !ok || timeframe == "" {
		return nil, model.NewAppError("INVALID_TIMEFRAME", "timeframe は week, month, year のいずれかを指定してください。", "timeframe", model.ErrInvalidInput)
	}

	key := cacheKey(courseID, timeframe)
	if !fresh {
		if report, ok := s.cached(key); ok {
			return report, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 集計は呼び出し元のキャンセルから切り離す。待機は呼び出し元の ctx で打ち切る
	ch := s.group.DoChan(key, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), analyticsBuildTimeout)
		defer cancel()
		report, degraded, err := s.build(buildCtx, courseID, timeframe)
		if err != nil {
			return nil, err
		}
		if !degraded {
			s.store(key, report)
		}
		return report, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.CourseAnalytics), nil
	}
}

func (s *analyticsService) RefreshAll(ctx context.Context) error {
	logger := middleware.GetLogger(ctx)

	ids, err := s.catalogRepo.ListCourseIDs(ctx, s.db)
	if err != nil {
		logger.Error("Failed to list courses for analytics refresh", "error", err)
		return model.Internal(err)
	}

	refreshed, skipped := 0, 0
	for _, id := range ids {
		for _, tf := range model.Timeframes {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report, degraded, err := s.build(ctx, id, tf)
			if err != nil {
				logger.Warn("Failed to refresh course analytics", "course_id", id, "timeframe", tf, "error", err)
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// 欠けたレポートで既存のキャッシュを上書きしない
			if degraded {
				skipped++
				continue
			}
			s.store(cacheKey(id, tf), report)
			refreshed++
		}
	}
	logger.Info("Analytics refreshed", "courses", len(ids), "reports", refreshed, "degraded", skipped)
	return nil
}

func (s *analyticsService) cached(key string) (*model.CourseAnalytics, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || s.now().Sub(entry.at) >= s.ttl {
		return nil, false
	}
	return entry.report, true
}

func (s *analyticsService) store(key string, report *model.CourseAnalytics) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[key] = cachedReport{report: report, at: s.now()}
	s.mu.Unlock()
}

// build はレポートを組み立てます。個々の集計が失敗した場合はゼロ値/空で埋めて続行し、degraded を true で返す。
func (s *analyticsService) build(ctx context.Context, courseID uuid.UUID, timeframe model.Timeframe) (report *model.CourseAnalytics, degraded bool, err error) {
	logger := middleware.GetLogger(ctx).With("course_id", courseID, "timeframe", timeframe)
	degrade := func(aggregate string, err error) {
		if err != nil {
			degraded = true
			logger.Warn("Analytics sub-aggregate failed, using zero value", "aggregate", aggregate, "error", err)
		}
	}

	course, err := s.catalogRepo.FindCourse(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, false, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません: "+courseID.String(), "courseId", err)
		}
		// モジュール別統計のみ欠落させて続行する
		logger.Warn("Failed to load course structure for analytics", "error", err)
		course = &model.Course{ID: courseID}
		degraded = true
	}

	now := s.now()
	start, end, buckets := reportWindow(timeframe, now)
	report = &model.CourseAnalytics{
		CourseID:    courseID,
		Timeframe:   timeframe,
		WindowStart: start,
		WindowEnd:   end,
		GeneratedAt: now,
	}

	total, err := s.analyticsRepo.CountEnrollments(ctx, s.db, courseID)
	degrade("total_enrollments", err)
	report.TotalEnrollments = total

	completed, err := s.analyticsRepo.CountCompletedEnrollments(ctx, s.db, courseID)
	degrade("completion_rate", err)
	report.CompletionRate = ratePercent(completed, total)

	avg, err := s.analyticsRepo.AverageRating(ctx, s.db, courseID)
	degrade("average_rating", err)
	report.AverageRating = round2(avg)

	spans, err := s.analyticsRepo.CompletionSpans(ctx, s.db, courseID, start, end)
	degrade("average_completion_days", err)
	report.AverageCompletionDays = averageDays(spans)

	moduleCounts, err := s.analyticsRepo.ModuleCompletionCounts(ctx, s.db, courseID)
	degrade("progress_stats", err)
	report.ProgressStats = moduleStats(course, moduleCounts, total)

	scores, err := s.analyticsRepo.QuizScores(ctx, s.db, courseID, start, end)
	degrade("quiz_stats", err)
	report.QuizStats = scoreBands(scores)

	ages, err := s.analyticsRepo.DemographicCounts(ctx, s.db, courseID, repository.DemographicAgeGroup)
	degrade("demographics_age_group", err)
	regions, err := s.analyticsRepo.DemographicCounts(ctx, s.db, courseID, repository.DemographicRegion)
	degrade("demographics_region", err)
	report.Demographics = model.Demographics{
		AgeGroups: normalizeCategories(ages),
		Regions:   normalizeCategories(regions),
	}

	events, err := s.analyticsRepo.ActivityEvents(ctx, s.db, courseID, start, end)
	degrade("student_engagement", err)
	report.StudentEngagement = engagement(timeframe, buckets, end, events)

	logger.Debug("Course analytics built", "total_enrollments", total, "degraded", degraded)
	return report, degraded, nil
}

// reportWindow は集計期間と各バケットの開始時刻を返します (UTC)。
// week: 直近7日を日単位、month: 直近28日を週単位、year: 直近12か月を月単位。
func reportWindow(tf model.Timeframe, now time.Time) (start, end time.Time, buckets []time.Time) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch tf {
	case model.TimeframeWeek:
		end = today.AddDate(0, 0, 1)
		start = end.AddDate(0, 0, -7)
		for i := 0; i < 7; i++ {
			buckets = append(buckets, start.AddDate(0, 0, i))
		}
	case model.TimeframeYear:
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		start = end.AddDate(0, -12, 0)
		for i := 0; i < 12; i++ {
			buckets = append(buckets, start.AddDate(0, i, 0))
		}
	default:
		end = today.AddDate(0, 0, 1)
		start = end.AddDate(0, 0, -28)
		for i := 0; i < 4; i++ {
			buckets = append(buckets, start.AddDate(0, 0, 7*i))
		}
	}
	return start, end, buckets
}

func averageDays(spans []model.CompletionSpan) float64 {
	if len(spans) == 0 {
		return 0
	}
	var sum float64
	for _, sp := range spans {
		d := sp.IssuedAt.Sub(sp.EnrolledAt)
		if d < 0 {
			d = 0
		}
		sum += d.Hours() / 24
	}
	return round2(sum / float64(len(spans)))
}

func moduleStats(course *model.Course, counts []model.ModuleCompletionCount, total int64) []model.ModuleStat {
	byModule := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byModule[c.ModuleID] = c.Count
	}
	stats := make([]model.ModuleStat, 0, len(course.Modules))
	for _, m := range course.Modules {
		n := byModule[m.ID]
		stats = append(stats, model.ModuleStat{
			ModuleID:       m.ID,
			Title:          m.Title,
			CompletedCount: n,
			CompletionRate: ratePercent(n, total),
		})
	}
	return stats
}

func scoreBands(scores []int) []model.CategoryValue {
	out := make([]model.CategoryValue, len(quizBands))
	for i, b := range quizBands {
		out[i].Name = b.Name
	}
	for _, score := range scores {
		idx := 0
		for i, b := range quizBands {
			if score >= b.Min {
				idx = i
			}
		}
		out[idx].Value++
	}
	return out
}

// normalizeCategories は空の値を unspecified にまとめ、件数の多い順に並べます。
func normalizeCategories(rows []model.CategoryValue) []model.CategoryValue {
	merged := make(map[string]int64, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = unspecifiedCategory
		}
		merged[name] += r.Value
	}
	out := make([]model.CategoryValue, 0, len(merged))
	for name, v := range merged {
		out = append(out, model.CategoryValue{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// engagement はバケットごとに活動のあった受講登録数 (重複なし) を数えます。
func engagement(tf model.Timeframe, buckets []time.Time, end time.Time, events []model.ActivityEvent) []model.EngagementBucket {
	layout := "2006-01-02"
	if tf == model.TimeframeYear {
		layout = "2006-01"
	}

	active := make([]map[uuid.UUID]struct{}, len(buckets))
	for i := range active {
		active[i] = make(map[uuid.UUID]struct{})
	}
	for _, ev := range events {
		t := ev.OccurredAt.UTC()
		if len(buckets) == 0 || t.Before(buckets[0]) || !t.Before(end) {
			continue
		}
		// t 以下で最大の開始時刻を持つバケット
		idx := sort.Search(len(buckets), func(i int) bool { return buckets[i].After(t) }) - 1
		active[idx][ev.EnrollmentID] = struct{}{}
	}

	out := make([]model.EngagementBucket, len(buckets))
	for i, b := range buckets {
		out[i] = model.EngagementBucket{
			Label:          b.Format(layout),
			Start:          b,
			ActiveStudents: len(active[i]),
		}
	}
	return out
}
