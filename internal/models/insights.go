package models

import "time"

// InsightType identifies the rule that produced an insight
type InsightType string

const (
	InsightClusterFeeding    InsightType = "cluster_feeding"
	InsightFeedingRoutine    InsightType = "feeding_routine"
	InsightSleepImproving    InsightType = "sleep_improving"
	InsightSleepRegression   InsightType = "sleep_regression"
	InsightConsistentBedtime InsightType = "consistent_bedtime"
)

// AlertType identifies the rule that produced an alert
type AlertType string

const (
	AlertStaleLogging AlertType = "stale_logging"
	AlertGrowthSpurt  AlertType = "growth_spurt"
)

// Priority is shared by alerts and checklist items
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Insight is a descriptive observation about recent patterns
type Insight struct {
	Type           InsightType `json:"type"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Confidence     int         `json:"confidence"` // 0-100
	Actionable     bool        `json:"actionable"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// AlertAction tells the client what to offer next to an alert
type AlertAction struct {
	Type  string `json:"type"` // "log_activity", "learn_more"
	Label string `json:"label"`
}

// SmartAlert is an action-oriented notice derived from the same data as insights
type SmartAlert struct {
	ID        string       `json:"id"`
	Type      AlertType    `json:"type"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Priority  Priority     `json:"priority"`
	CreatedAt time.Time    `json:"created_at"`
	Action    *AlertAction `json:"action,omitempty"`
}

// InsightsResponse is the API response of GET /children/:child_id/insights
type InsightsResponse struct {
	ChildID        string       `json:"child_id"`
	WindowDays     int          `json:"window_days"`
	Insights       []Insight    `json:"insights"`
	Alerts         []SmartAlert `json:"alerts"`
	DataSufficient bool         `json:"data_sufficient"`
	UserMessage    string       `json:"user_message,omitempty"`
	Cached         bool         `json:"cached"`
	ComputedAt     time.Time    `json:"computed_at"`
}

// InsightSnapshot is a cached InsightsResponse for one child and window
type InsightSnapshot struct {
	ID             string       `json:"id,omitempty"`
	ChildID        string       `json:"child_id"`
	WindowDays     int          `json:"window_days"`
	Insights       []Insight    `json:"insights"`
	Alerts         []SmartAlert `json:"alerts"`
	DataSufficient bool         `json:"data_sufficient"`
	ComputedAt     time.Time    `json:"computed_at"`
	ValidUntil     time.Time    `json:"valid_until"`
}
