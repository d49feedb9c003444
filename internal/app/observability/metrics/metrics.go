package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RelayRequestsTotal   metric.Int64Counter
	RelayDuration        metric.Float64Histogram
	ActionDispatchTotal  metric.Int64Counter
	PanelUpdatesTotal    metric.Int64Counter
	HeuristicSearchTotal metric.Int64Counter
	VideoSearchDuration  metric.Float64Histogram
	PendingQueueDepth    metric.Int64Gauge
	InterceptedBodyBytes metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("voyplan")
		var err error
		m := &AppMetrics{}

		m.RelayRequestsTotal, err = meter.Int64Counter(
			"chat_relay_requests_total",
			metric.WithDescription("Total number of chat relay requests forwarded to the agent backend"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_relay_requests_total: %v", err)
		}

		m.RelayDuration, err = meter.Float64Histogram(
			"chat_relay_duration_seconds",
			metric.WithDescription("Duration of chat relay round trips in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_relay_duration_seconds: %v", err)
		}

		m.ActionDispatchTotal, err = meter.Int64Counter(
			"action_dispatch_total",
			metric.WithDescription("Total number of frontend action invocations"),
			metric.WithUnit("{action}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create action_dispatch_total: %v", err)
		}

		m.PanelUpdatesTotal, err = meter.Int64Counter(
			"panel_updates_total",
			metric.WithDescription("Total number of panel update requests"),
			metric.WithUnit("{update}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create panel_updates_total: %v", err)
		}

		m.HeuristicSearchTotal, err = meter.Int64Counter(
			"heuristic_search_total",
			metric.WithDescription("Total number of heuristic keyword searches triggered from chat responses"),
			metric.WithUnit("{search}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create heuristic_search_total: %v", err)
		}

		m.VideoSearchDuration, err = meter.Float64Histogram(
			"video_search_duration_seconds",
			metric.WithDescription("Duration of upstream video search calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create video_search_duration_seconds: %v", err)
		}

		m.PendingQueueDepth, err = meter.Int64Gauge(
			"panel_pending_queue_depth",
			metric.WithDescription("Current number of updates queued against unmounted panels"),
			metric.WithUnit("{update}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create panel_pending_queue_depth: %v", err)
		}

		m.InterceptedBodyBytes, err = meter.Int64Counter(
			"intercepted_body_bytes_total",
			metric.WithDescription("Total response body bytes buffered by the chat interceptor"),
			metric.WithUnit("By"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create intercepted_body_bytes_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, initializing it
// against the current global MeterProvider on first use.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
