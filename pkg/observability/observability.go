package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SetupTracing initializes OpenTelemetry tracing with the stdout exporter.
func SetupTracing(serviceName string) (func(), error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }, nil
}

// SetupPrometheusMetrics initializes the Prometheus exporter and serves
// /metrics on the given port.
func SetupPrometheusMetrics(port string) (*metric.MeterProvider, error) {
	exp, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exp))
	otel.SetMeterProvider(mp)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(":"+port, mux)
	}()
	return mp, nil
}

// Metrics holds the domain counters recorded by the services.
type Metrics struct {
	characterCreations otelmetric.Int64Counter
	gameStateUpdates   otelmetric.Int64Counter
	syncOperations     otelmetric.Int64Counter
}

// NewMetrics registers the domain counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("xiantu/server")

	creations, err := meter.Int64Counter("character_creations_total",
		otelmetric.WithDescription("Characters created, by outcome"))
	if err != nil {
		return nil, err
	}
	updates, err := meter.Int64Counter("game_state_updates_total",
		otelmetric.WithDescription("Accepted game state partial updates"))
	if err != nil {
		return nil, err
	}
	syncs, err := meter.Int64Counter("sync_operations_total",
		otelmetric.WithDescription("Game state sync operations, by outcome"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		characterCreations: creations,
		gameStateUpdates:   updates,
		syncOperations:     syncs,
	}, nil
}

// record increments a counter with an outcome label.
func record(ctx context.Context, counter otelmetric.Int64Counter, outcome string) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

// CharacterCreation records a character creation attempt and its outcome.
// A nil Metrics is a no-op so services can run unmetered in tests.
func (m *Metrics) CharacterCreation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	record(ctx, m.characterCreations, outcome)
}

// GameStateUpdate records an accepted partial state update.
func (m *Metrics) GameStateUpdate(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	record(ctx, m.gameStateUpdates, outcome)
}

// SyncOperation records a sync and whether it carried changes.
func (m *Metrics) SyncOperation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	record(ctx, m.syncOperations, outcome)
}
