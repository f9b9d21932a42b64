package observability

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Gr33nOps/VTcade/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// MetricsNamespace prefixes every collector the service registers.
const MetricsNamespace = "vtcade"

// Observability bundles the telemetry handles handed to every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  ScoreMetrics
	Registry *prometheus.Registry
}

// Init builds the logger, a private Prometheus registry with runtime
// collectors, and a tracer from the global OpenTelemetry provider.
func Init(cfg config.ObservabilityConfig) (Observability, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return Observability{}, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return Observability{}, fmt.Errorf("failed to register process collector: %w", err)
	}

	metrics, err := NewPrometheusMetrics(reg, MetricsNamespace)
	if err != nil {
		return Observability{}, err
	}

	return Observability{
		Logger:   NewLogger(cfg),
		Tracer:   otel.Tracer(cfg.ServiceName),
		Metrics:  metrics,
		Registry: reg,
	}, nil
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func (o Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{Registry: o.Registry})
}
