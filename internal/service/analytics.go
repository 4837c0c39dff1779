package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/analytics"
	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Analytics window bounds in days
const (
	MinWindowDays     = 3
	MaxWindowDays     = 30
	DefaultWindowDays = 7
)

// DefaultInsightCacheTTL is how long a generated insight snapshot is served
const DefaultInsightCacheTTL = time.Hour

// BuildingInsightsMessage is shown while there is not enough data to describe patterns
const BuildingInsightsMessage = "We're still building your insights. Keep logging feeds, sleep and nappies to see patterns."

// AnalyticsConfig carries the knobs of the analytics service
type AnalyticsConfig struct {
	Location          *time.Location
	DefaultWindowDays int
	InsightCacheTTL   time.Duration
}

type analyticsService struct {
	activityRepo repository.ActivityRepository
	childRepo    repository.ChildRepository
	dailyRepo    repository.DailyAnalyticsRepository
	insightRepo  repository.InsightRepository

	loc         *time.Location
	defaultDays int
	cacheTTL    time.Duration
	now         func() time.Time
	newID       func() string
}

// NewAnalyticsService creates a new analytics service. dailyRepo and
// insightRepo are optional caches and may be nil.
func NewAnalyticsService(
	activityRepo repository.ActivityRepository,
	childRepo repository.ChildRepository,
	dailyRepo repository.DailyAnalyticsRepository,
	insightRepo repository.InsightRepository,
	cfg AnalyticsConfig,
) AnalyticsService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	defaultDays := cfg.DefaultWindowDays
	if defaultDays == 0 {
		defaultDays = DefaultWindowDays
	}
	ttl := cfg.InsightCacheTTL
	if ttl <= 0 {
		ttl = DefaultInsightCacheTTL
	}

	return &analyticsService{
		activityRepo: activityRepo,
		childRepo:    childRepo,
		dailyRepo:    dailyRepo,
		insightRepo:  insightRepo,
		loc:          loc,
		defaultDays:  ClampWindowDays(defaultDays, DefaultWindowDays),
		cacheTTL:     ttl,
		now:          time.Now,
	}
}

// ClampWindowDays bounds a requested window; zero or negative picks fallback
func ClampWindowDays(days, fallback int) int {
	if days <= 0 {
		days = fallback
	}
	if days < MinWindowDays {
		return MinWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// window returns the last `days` calendar days ending now
func (s *analyticsService) window(days int) (start, end time.Time) {
	end = s.now()
	today := dates.StartOfDay(end.In(s.loc))
	return dates.AddDays(today, -(days - 1)), end
}

// fetchCategories loads one window per category concurrently. The first
// failure cancels the remaining fetches and is returned as is.
func (s *analyticsService) fetchCategories(ctx context.Context, childID string, start, end time.Time, categories ...models.Category) ([][]models.Activity, error) {
	results := make([][]models.Activity, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			activities, err := s.activityRepo.ListByChildAndRange(gctx, childID, category, start, end)
			if err != nil {
				return err
			}
			results[i] = activities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *analyticsService) GetDailyAnalytics(ctx context.Context, userID, childID string, days int) ([]models.DailyAnalytics, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	days = ClampWindowDays(days, s.defaultDays)
	start, end := s.window(days)

	activities, err := s.activityRepo.ListByChildAndRange(ctx, childID, "", start, end)
	if err != nil {
		return nil, err
	}

	daily := analytics.AggregateDaily(childID, activities, start, end, s.loc)
	s.cacheDaily(ctx, childID, daily)
	return daily, nil
}

// cacheDaily stores rollups for reporting; the activity log stays the source of truth
func (s *analyticsService) cacheDaily(ctx context.Context, childID string, daily []models.DailyAnalytics) {
	if s.dailyRepo == nil || len(daily) == 0 {
		return
	}
	if err := s.dailyRepo.BulkUpsert(ctx, daily); err != nil {
		logger.Ctx(ctx).Warn("failed to cache daily analytics",
			logger.String("child_id", childID),
			logger.Int("days", len(daily)),
			logger.Err(err),
		)
	}
}

func (s *analyticsService) GetPatterns(ctx context.Context, userID, childID string, days int) (*models.PatternsResponse, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	days = ClampWindowDays(days, s.defaultDays)
	start, end := s.window(days)

	windows, err := s.fetchCategories(ctx, childID, start, end,
		models.CategorySleep, models.CategoryFeeding, models.CategoryNappy)
	if err != nil {
		return nil, err
	}

	return &models.PatternsResponse{
		ChildID:    childID,
		WindowDays: days,
		Sleep:      analytics.AnalyzeSleep(windows[0], s.loc),
		Feeding:    analytics.AnalyzeFeeding(windows[1], s.loc),
		Nappy:      analytics.AnalyzeNappy(windows[2], s.loc),
		ComputedAt: end,
	}, nil
}

func (s *analyticsService) GetTrends(ctx context.Context, userID, childID string, days int) ([]models.TrendResult, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	days = ClampWindowDays(days, s.defaultDays)
	start, end := s.window(days)

	activities, err := s.activityRepo.ListByChildAndRange(ctx, childID, "", start, end)
	if err != nil {
		return nil, err
	}

	return analytics.DetectTrends(analytics.AggregateDaily(childID, activities, start, end, s.loc)), nil
}

func (s *analyticsService) GetWeeklySummary(ctx context.Context, userID, childID string) ([]models.WeeklySummary, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	now := s.now()
	_, lastWeekStart := analytics.WeekStarts(now, s.loc)

	activities, err := s.activityRepo.ListByChildAndRange(ctx, childID, "", lastWeekStart, now)
	if err != nil {
		return nil, err
	}

	return analytics.WeeklySummary(activities, now, s.loc), nil
}

func (s *analyticsService) GetInsights(ctx context.Context, userID, childID string, days int) (*models.InsightsResponse, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	days = ClampWindowDays(days, s.defaultDays)

	if cached := s.cachedInsights(ctx, childID, days); cached != nil {
		return cached, nil
	}

	start, end := s.window(days)
	windows, err := s.fetchCategories(ctx, childID, start, end,
		models.CategorySleep, models.CategoryFeeding, models.CategoryNappy, models.CategoryTummyTime)
	if err != nil {
		return nil, err
	}

	sleepEvents, feedingEvents := windows[0], windows[1]
	sleep := analytics.AnalyzeSleep(sleepEvents, s.loc)
	feeding := analytics.AnalyzeFeeding(feedingEvents, s.loc)
	nappy := analytics.AnalyzeNappy(windows[2], s.loc)

	all := make([]models.Activity, 0, len(windows[0])+len(windows[1])+len(windows[2])+len(windows[3]))
	for _, w := range windows {
		all = append(all, w...)
	}

	var sleepTrend *models.TrendResult
	if m, ok := analytics.MetricByName(analytics.MetricSleepDuration); ok {
		daily := analytics.AggregateDaily(childID, sleepEvents, start, end, s.loc)
		trend := analytics.DetectTrend(m, analytics.Series(m, daily))
		sleepTrend = &trend
	}

	insights, alerts := analytics.GenerateInsights(analytics.InsightInput{
		Now:        end,
		Feeding:    feeding,
		Sleep:      sleep,
		SleepTrend: sleepTrend,
		Activities: all,
		WindowDays: days,
		NewID:      s.newID,
	})

	resp := &models.InsightsResponse{
		ChildID:        childID,
		WindowDays:     days,
		Insights:       insights,
		Alerts:         alerts,
		DataSufficient: sleep.Sufficient || feeding.Sufficient || nappy.Sufficient,
		ComputedAt:     end,
	}
	if !resp.DataSufficient {
		resp.UserMessage = BuildingInsightsMessage
	}

	s.saveInsights(ctx, resp, analytics.LatestActivity(all))
	return resp, nil
}

// cachedInsights returns a still-valid snapshot, or nil. Cache failures fall
// through to a fresh computation.
func (s *analyticsService) cachedInsights(ctx context.Context, childID string, days int) *models.InsightsResponse {
	if s.insightRepo == nil {
		return nil
	}

	snapshot, err := s.insightRepo.GetValid(ctx, childID, days, s.now())
	if err != nil {
		logger.Ctx(ctx).Warn("failed to read insight cache",
			logger.String("child_id", childID),
			logger.Err(err),
		)
		return nil
	}
	if snapshot == nil {
		return nil
	}

	resp := &models.InsightsResponse{
		ChildID:        snapshot.ChildID,
		WindowDays:     snapshot.WindowDays,
		Insights:       snapshot.Insights,
		Alerts:         snapshot.Alerts,
		DataSufficient: snapshot.DataSufficient,
		Cached:         true,
		ComputedAt:     snapshot.ComputedAt,
	}
	if resp.Insights == nil {
		resp.Insights = []models.Insight{}
	}
	if resp.Alerts == nil {
		resp.Alerts = []models.SmartAlert{}
	}
	if !resp.DataSufficient {
		resp.UserMessage = BuildingInsightsMessage
	}
	return resp
}

// snapshotExpiry is ComputedAt + TTL, pulled in to the moment the latest
// activity goes stale so a stale_logging alert is not hidden by the cache.
func (s *analyticsService) snapshotExpiry(computedAt, latest time.Time) time.Time {
	expiry := computedAt.Add(s.cacheTTL)
	if latest.IsZero() {
		return expiry
	}
	if staleAt := latest.Add(analytics.StaleLoggingAfter); staleAt.After(computedAt) && staleAt.Before(expiry) {
		return staleAt
	}
	return expiry
}

func (s *analyticsService) saveInsights(ctx context.Context, resp *models.InsightsResponse, latest time.Time) {
	if s.insightRepo == nil {
		return
	}

	snapshot := &models.InsightSnapshot{
		ID:             s.newID(),
		ChildID:        resp.ChildID,
		WindowDays:     resp.WindowDays,
		Insights:       resp.Insights,
		Alerts:         resp.Alerts,
		DataSufficient: resp.DataSufficient,
		ComputedAt:     resp.ComputedAt,
		ValidUntil:     s.snapshotExpiry(resp.ComputedAt, latest),
	}
	if err := s.insightRepo.Save(ctx, snapshot); err != nil {
		logger.Ctx(ctx).Warn("failed to cache insights",
			logger.String("child_id", resp.ChildID),
			logger.Err(fmt.Errorf("save snapshot: %w", err)),
		)
	}
}
