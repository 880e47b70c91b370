package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItinerariesGeneratedTotal metric.Int64Counter
	StopsScheduledTotal       metric.Int64Counter
	RouteRequestsTotal        metric.Int64Counter
	RouteErrorsTotal          metric.Int64Counter
	RouteDurationSeconds      metric.Float64Histogram
	EnrichmentFailuresTotal   metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("IntelliTravel")
		var err error
		m := &AppMetrics{}

		m.ItinerariesGeneratedTotal, err = meter.Int64Counter(
			"itineraries_generated_total",
			metric.WithDescription("Total number of automatic itineraries generated"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itineraries_generated_total: %v", err)
		}

		m.StopsScheduledTotal, err = meter.Int64Counter(
			"stops_scheduled_total",
			metric.WithDescription("Total number of draft stops emitted by the scheduler"),
			metric.WithUnit("{stop}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create stops_scheduled_total: %v", err)
		}

		m.RouteRequestsTotal, err = meter.Int64Counter(
			"route_requests_total",
			metric.WithDescription("Total number of routing provider requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_requests_total: %v", err)
		}

		m.RouteErrorsTotal, err = meter.Int64Counter(
			"route_errors_total",
			metric.WithDescription("Total number of failed routing provider requests"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_errors_total: %v", err)
		}

		m.RouteDurationSeconds, err = meter.Float64Histogram(
			"route_duration_seconds",
			metric.WithDescription("Latency of routing provider requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_duration_seconds: %v", err)
		}

		m.EnrichmentFailuresTotal, err = meter.Int64Counter(
			"enrichment_failures_total",
			metric.WithDescription("Total number of ignored weather/gas-station enrichment failures"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create enrichment_failures_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. Panics if
// InitAppMetrics was not called at startup.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics.Get called before metrics.InitAppMetrics")
	}
	return appMetrics
}
