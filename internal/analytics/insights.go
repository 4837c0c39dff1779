package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cradlehq/backend/internal/models"
	"github.com/google/uuid"
)

// Rule thresholds
const (
	ClusterIntervalMinutes = 90.0
	ClusterShareThreshold  = 0.30

	RoutineMinHours       = 3
	RoutineMinOccurrences = 3

	SleepSwingPercent = 20.0

	BedtimeMinSamples    = 5
	BedtimeVarianceLimit = 2.0

	StaleLoggingAfter = 12 * time.Hour

	GrowthSpurtFeeds  = 12
	GrowthSpurtWindow = 24 * time.Hour
)

// Alert actions
const (
	ActionLogActivity = "log_activity"
	ActionLearnMore   = "learn_more"
)

// InsightInput is everything the rule engine looks at
type InsightInput struct {
	Now        time.Time
	Feeding    models.FeedingPattern
	Sleep      models.SleepPattern
	SleepTrend *models.TrendResult // sleep_duration over the window, if computed
	Activities []models.Activity   // raw window, for recency rules
	WindowDays int                 // length of the Activities window, for messages

	// NewID names alerts; uuid.NewString when nil
	NewID func() string
}

// GenerateInsights runs every rule in a fixed order. Rules are independent:
// none suppresses another and output keeps emission order.
func GenerateInsights(in InsightInput) ([]models.Insight, []models.SmartAlert) {
	insights := make([]models.Insight, 0, 4)
	alerts := make([]models.SmartAlert, 0, 2)

	newID := in.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	if ins, ok := clusterFeedingRule(in.Feeding); ok {
		insights = append(insights, ins)
	}
	if ins, ok := feedingRoutineRule(in.Feeding); ok {
		insights = append(insights, ins)
	}
	if ins, ok := sleepTrendRule(in.SleepTrend); ok {
		insights = append(insights, ins)
	}
	if ins, ok := consistentBedtimeRule(in.Sleep); ok {
		insights = append(insights, ins)
	}

	if alert, ok := staleLoggingRule(in.Activities, in.Now, in.WindowDays); ok {
		alert.ID = newID()
		alerts = append(alerts, alert)
	}
	if alert, ok := growthSpurtRule(in.Activities, in.Now); ok {
		alert.ID = newID()
		alerts = append(alerts, alert)
	}

	return insights, alerts
}

func clusterFeedingRule(p models.FeedingPattern) (models.Insight, bool) {
	if len(p.IntervalsMinutes) == 0 {
		return models.Insight{}, false
	}

	short := 0
	for _, iv := range p.IntervalsMinutes {
		if iv < ClusterIntervalMinutes {
			short++
		}
	}
	share := float64(short) / float64(len(p.IntervalsMinutes))
	if share <= ClusterShareThreshold {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:  models.InsightClusterFeeding,
		Title: "Cluster feeding",
		Description: fmt.Sprintf("%d of the last %d feeds came less than 90 minutes after the one before. "+
			"Bunched-up feeds are common, especially in the evenings.", short, len(p.IntervalsMinutes)),
		Confidence:     85,
		Actionable:     true,
		Recommendation: "Keep responding to feeding cues. Cluster feeding usually settles within a few days.",
	}, true
}

func feedingRoutineRule(p models.FeedingPattern) (models.Insight, bool) {
	var hours []int
	for h, n := range p.HourHistogram {
		if n >= RoutineMinOccurrences {
			hours = append(hours, h)
		}
	}
	if len(hours) < RoutineMinHours {
		return models.Insight{}, false
	}

	labels := make([]string, 0, len(hours))
	for _, h := range hours {
		labels = append(labels, formatHour(h))
	}

	return models.Insight{
		Type:        models.InsightFeedingRoutine,
		Title:       "A feeding routine is emerging",
		Description: fmt.Sprintf("Feeds keep landing around the same times: %s.", joinLabels(labels)),
		Confidence:  75,
		Actionable:  false,
	}, true
}

func sleepTrendRule(trend *models.TrendResult) (models.Insight, bool) {
	if trend == nil {
		return models.Insight{}, false
	}

	switch {
	case trend.ChangePercent > SleepSwingPercent:
		return models.Insight{
			Type:  models.InsightSleepImproving,
			Title: "Sleep is getting longer",
			Description: fmt.Sprintf("Average sleep sessions are %.0f%% longer than earlier in the period.",
				trend.ChangePercent),
			Confidence:     80,
			Actionable:     true,
			Recommendation: "Whatever you changed is working. Keep the wind-down routine consistent.",
		}, true
	case trend.ChangePercent < -SleepSwingPercent:
		return models.Insight{
			Type:  models.InsightSleepRegression,
			Title: "Possible sleep regression",
			Description: fmt.Sprintf("Average sleep sessions are %.0f%% shorter than earlier in the period.",
				math.Abs(trend.ChangePercent)),
			Confidence:     75,
			Actionable:     true,
			Recommendation: "Regressions often line up with developmental leaps. Try an earlier bedtime and keep naps protected.",
		}, true
	}
	return models.Insight{}, false
}

func consistentBedtimeRule(p models.SleepPattern) (models.Insight, bool) {
	if p.NightSessions < BedtimeMinSamples || p.BedtimeVariance >= BedtimeVarianceLimit {
		return models.Insight{}, false
	}
	return models.Insight{
		Type:        models.InsightConsistentBedtime,
		Title:       "Consistent bedtime",
		Description: fmt.Sprintf("Night sleep has been starting around %s most nights.", p.Bedtime),
		Confidence:  90,
		Actionable:  false,
	}, true
}

// LatestActivity is the most recent start or end time among events, or the
// zero time when events is empty.
func LatestActivity(events []models.Activity) time.Time {
	var latest time.Time
	for _, e := range events {
		if e.StartedAt.After(latest) {
			latest = e.StartedAt
		}
		if end, ok := e.EndTime(); ok && end.After(latest) {
			latest = end
		}
	}
	return latest
}

func staleLoggingRule(events []models.Activity, now time.Time, windowDays int) (models.SmartAlert, bool) {
	latest := LatestActivity(events)
	if !latest.IsZero() && now.Sub(latest) <= StaleLoggingAfter {
		return models.SmartAlert{}, false
	}

	var message string
	switch {
	case !latest.IsZero():
		message = fmt.Sprintf("Nothing has been logged for %d hours.", int(now.Sub(latest).Hours()))
	case windowDays > 0:
		// Older activity may exist outside the window
		message = fmt.Sprintf("Nothing has been logged in the last %d days. Logging feeds, sleep and nappies unlocks insights.", windowDays)
	default:
		message = "Nothing has been logged recently. Logging feeds, sleep and nappies unlocks insights."
	}
	return models.SmartAlert{
		Type:      models.AlertStaleLogging,
		Title:     "Time to log",
		Message:   message,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		Action:    &models.AlertAction{Type: ActionLogActivity, Label: "Log activity"},
	}, true
}

func growthSpurtRule(events []models.Activity, now time.Time) (models.SmartAlert, bool) {
	since := now.Add(-GrowthSpurtWindow)
	feeds := 0
	for _, e := range events {
		if e.Category != models.CategoryFeeding {
			continue
		}
		if e.StartedAt.After(since) && !e.StartedAt.After(now) {
			feeds++
		}
	}
	if feeds < GrowthSpurtFeeds {
		return models.SmartAlert{}, false
	}

	return models.SmartAlert{
		Type:      models.AlertGrowthSpurt,
		Title:     "Possible growth spurt",
		Message:   fmt.Sprintf("%d feeds in the last 24 hours. Extra hunger often signals a growth spurt.", feeds),
		Priority:  models.PriorityLow,
		CreatedAt: now,
		Action:    &models.AlertAction{Type: ActionLearnMore, Label: "Learn more"},
	}, true
}

// formatHour formats an hour (0-23) as a readable string
func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

func joinLabels(labels []string) string {
	if len(labels) < 2 {
		return strings.Join(labels, "")
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
}
