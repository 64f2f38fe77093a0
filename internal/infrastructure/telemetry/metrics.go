package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by the service's instruments
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrEventType      = attribute.Key("event_type")
	AttrOutcome        = attribute.Key("outcome")
	AttrCourseCode     = attribute.Key("course_code")
	AttrAutomatic      = attribute.Key("automatic")
	AttrNewGroup       = attribute.Key("new_group")
	AttrHasOutliers    = attribute.Key("has_outliers")
)

// Outcome values for AttrOutcome
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// HTTPDurationBuckets are request duration boundaries in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// LLMDurationBuckets are completion latency boundaries in seconds
var LLMDurationBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 90}

// Metrics holds the service's counters and histograms. Every method is safe
// on a nil receiver so callers can run without telemetry.
type Metrics struct {
	registrations   metric.Int64Counter
	messagesPosted  metric.Int64Counter
	assistantReply  metric.Int64Counter
	analyses        metric.Int64Counter
	meetingsDone    metric.Int64Counter
	eventsHandled   metric.Int64Counter
	llmDuration     metric.Float64Histogram
	httpRequests    metric.Int64Counter
	httpDuration    metric.Float64Histogram
	activeSockets   metric.Int64UpDownCounter
	eventLagSeconds metric.Float64Histogram
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &Metrics{}
	var err error

	if m.registrations, err = meter.Int64Counter("teamhub_users_registered_total",
		metric.WithDescription("Users registered"), metric.WithUnit("{users}")); err != nil {
		return nil, err
	}
	if m.messagesPosted, err = meter.Int64Counter("teamhub_messages_posted_total",
		metric.WithDescription("Channel messages stored"), metric.WithUnit("{messages}")); err != nil {
		return nil, err
	}
	if m.assistantReply, err = meter.Int64Counter("teamhub_assistant_replies_total",
		metric.WithDescription("Assistant replies by outcome"), metric.WithUnit("{replies}")); err != nil {
		return nil, err
	}
	if m.analyses, err = meter.Int64Counter("teamhub_contribution_analyses_total",
		metric.WithDescription("Contribution analyses by outcome"), metric.WithUnit("{analyses}")); err != nil {
		return nil, err
	}
	if m.meetingsDone, err = meter.Int64Counter("teamhub_meetings_completed_total",
		metric.WithDescription("Meetings moved to completed"), metric.WithUnit("{meetings}")); err != nil {
		return nil, err
	}
	if m.eventsHandled, err = meter.Int64Counter("teamhub_events_handled_total",
		metric.WithDescription("Domain events handled by type and outcome"), metric.WithUnit("{events}")); err != nil {
		return nil, err
	}
	if m.llmDuration, err = meter.Float64Histogram("teamhub_llm_request_duration_seconds",
		metric.WithDescription("Language model completion latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(LLMDurationBuckets...)); err != nil {
		return nil, err
	}
	if m.httpRequests, err = meter.Int64Counter("teamhub_http_requests_total",
		metric.WithDescription("HTTP requests served"), metric.WithUnit("{requests}")); err != nil {
		return nil, err
	}
	if m.httpDuration, err = meter.Float64Histogram("teamhub_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(HTTPDurationBuckets...)); err != nil {
		return nil, err
	}
	if m.activeSockets, err = meter.Int64UpDownCounter("teamhub_chat_connections_active",
		metric.WithDescription("Open chat websocket connections"), metric.WithUnit("{connections}")); err != nil {
		return nil, err
	}
	if m.eventLagSeconds, err = meter.Float64Histogram("teamhub_event_delivery_lag_seconds",
		metric.WithDescription("Time from event occurrence to handling"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRegistration counts a new user
func (m *Metrics) RecordRegistration(ctx context.Context, courseCode string, newGroup bool) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(
		AttrCourseCode.String(courseCode),
		AttrNewGroup.Bool(newGroup),
	))
}

// RecordMessagePosted counts a stored channel message
func (m *Metrics) RecordMessagePosted(ctx context.Context) {
	if m == nil {
		return
	}
	m.messagesPosted.Add(ctx, 1)
}

// RecordAssistantReply counts an assistant reply and its model latency
func (m *Metrics) RecordAssistantReply(ctx context.Context, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.assistantReply.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
	if latency > 0 {
		m.llmDuration.Record(ctx, latency.Seconds(), metric.WithAttributes(AttrOutcome.String(outcome)))
	}
}

// RecordAnalysis counts a contribution analysis run
func (m *Metrics) RecordAnalysis(ctx context.Context, outcome string, hasOutliers bool, latency time.Duration) {
	if m == nil {
		return
	}
	m.analyses.Add(ctx, 1, metric.WithAttributes(
		AttrOutcome.String(outcome),
		AttrHasOutliers.Bool(hasOutliers),
	))
	if latency > 0 {
		m.llmDuration.Record(ctx, latency.Seconds(), metric.WithAttributes(AttrOutcome.String(outcome)))
	}
}

// RecordMeetingCompleted counts a meeting moved to completed
func (m *Metrics) RecordMeetingCompleted(ctx context.Context, automatic bool) {
	if m == nil {
		return
	}
	m.meetingsDone.Add(ctx, 1, metric.WithAttributes(AttrAutomatic.Bool(automatic)))
}

// RecordEventHandled counts a handled domain event and how long after it
// occurred the handler saw it
func (m *Metrics) RecordEventHandled(ctx context.Context, eventType, outcome string, occurredAt time.Time) {
	if m == nil {
		return
	}
	m.eventsHandled.Add(ctx, 1, metric.WithAttributes(
		AttrEventType.String(eventType),
		AttrOutcome.String(outcome),
	))
	if !occurredAt.IsZero() {
		m.eventLagSeconds.Record(ctx, time.Since(occurredAt).Seconds(),
			metric.WithAttributes(AttrEventType.String(eventType)))
	}
}

// RecordHTTPRequest counts a served request and its latency
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.String(strconv.Itoa(status)),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, d.Seconds(), attrs)
}

// ConnectionOpened increments the open websocket gauge
func (m *Metrics) ConnectionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSockets.Add(ctx, 1)
}

// ConnectionClosed decrements the open websocket gauge
func (m *Metrics) ConnectionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSockets.Add(ctx, -1)
}
