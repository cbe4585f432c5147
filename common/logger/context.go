package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so business context (repo, PR number,
// event type, sweep run ID) is included in every log statement without
// threading it through call sites.
type LogFields struct {
	Repo        *string // "owner/repo" coordinates
	IssueNumber *int    // Issue number, when handling an issue
	PRNumber    *int    // Pull request number, when handling a PR
	EventType   *string // Webhook event type (e.g., "issue_comment")
	DeliveryID  *string // GitHub webhook delivery ID
	RunID       *int64  // Snowflake ID of the sweep run or processing task
	Job         *string // Scheduled job name (e.g., "check_stale_issues")
	Component   string  // Component name (e.g., "steward.policy")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.Repo != nil {
		result.Repo = next.Repo
	}
	if next.IssueNumber != nil {
		result.IssueNumber = next.IssueNumber
	}
	if next.PRNumber != nil {
		result.PRNumber = next.PRNumber
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.DeliveryID != nil {
		result.DeliveryID = next.DeliveryID
	}
	if next.RunID != nil {
		result.RunID = next.RunID
	}
	if next.Job != nil {
		result.Job = next.Job
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{PRNumber: logger.Ptr(n)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like comment bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
