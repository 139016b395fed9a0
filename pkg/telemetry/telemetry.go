// Package telemetry wires OpenTelemetry tracing and metrics for generation runs.
// Traces go to an OTLP collector. Metrics are exposed to Prometheus, either
// scraped while the run is alive or written to a textfile when it ends.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/verustcode/docsynth/consts"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

const (
	exporterTimeout       = 10 * time.Second
	metricsServerTimeout  = 10 * time.Second
	defaultPrometheusPort = 9090
)

// Config holds the telemetry configuration
type Config struct {
	Enabled     bool             `yaml:"enabled"`
	ServiceName string           `yaml:"service_name"`
	OTLP        OTLPConfig       `yaml:"otlp"`
	Prometheus  PrometheusConfig `yaml:"prometheus"`
}

// OTLPConfig holds the trace exporter settings
type OTLPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // e.g. "localhost:4317"
	Insecure bool   `yaml:"insecure"`
}

// PrometheusConfig holds the metrics exporter settings
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
	// TextFile, when set, receives a snapshot of all metrics on Shutdown,
	// for node_exporter's textfile collector.
	TextFile string `yaml:"textfile"`
	// Port of the /metrics endpoint. 0 means 9090, -1 serves nothing.
	Port int `yaml:"port"`
}

// Telemetry owns the providers installed for one run
type Telemetry struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metricsServer  *http.Server
}

// New installs the global tracer and meter providers. A disabled config
// returns a Telemetry whose Shutdown does nothing; the otel no-op providers stay in place.
func New(cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		logger.Debug("Telemetry is disabled")
		return &Telemetry{config: cfg}, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = consts.ServiceName
	}
	if cfg.Prometheus.Port == 0 {
		cfg.Prometheus.Port = defaultPrometheusPort
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(consts.Version),
		),
	)
	if err != nil {
		return nil, errors.ErrInternal("failed to create telemetry resource", err)
	}

	t := &Telemetry{config: cfg}
	if t.tracerProvider, err = newTracerProvider(cfg.OTLP, res); err != nil {
		return nil, err
	}
	otel.SetTracerProvider(t.tracerProvider)

	if t.meterProvider, err = newMeterProvider(cfg.Prometheus, res); err != nil {
		return nil, err
	}
	otel.SetMeterProvider(t.meterProvider)

	if cfg.Prometheus.Enabled && cfg.Prometheus.Port > 0 {
		t.metricsServer = serveMetrics(cfg.Prometheus.Port)
	}

	logger.Info("Telemetry initialized",
		zap.String("service_name", cfg.ServiceName),
		zap.Bool("otlp_enabled", cfg.OTLP.Enabled),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
		zap.String("metrics_textfile", cfg.Prometheus.TextFile),
	)
	return t, nil
}

func newTracerProvider(cfg OTLPConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Enabled && cfg.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), exporterTimeout)
		defer cancel()

		exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, errors.ErrInternal("failed to create OTLP trace exporter", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.Info("OTLP trace exporter initialized", zap.String("endpoint", cfg.Endpoint))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(cfg PrometheusConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.Enabled {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, errors.ErrInternal("failed to create Prometheus exporter", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func serveMetrics(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  metricsServerTimeout,
		WriteTimeout: metricsServerTimeout,
	}
	go func() {
		logger.Info("Serving Prometheus metrics", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Prometheus metrics server error", zap.Error(err))
		}
	}()
	return srv
}

// Shutdown flushes spans, writes the metrics snapshot and stops the
// metrics server. Every step runs; their errors are combined.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.config.Enabled {
		return nil
	}
	logger.Debug("Shutting down telemetry")

	var err error
	if t.tracerProvider != nil {
		err = multierr.Append(err, t.tracerProvider.Shutdown(ctx))
	}
	// snapshot before the meter provider drops its readers
	if t.config.Prometheus.Enabled && t.config.Prometheus.TextFile != "" {
		err = multierr.Append(err, t.WriteMetricsFile(t.config.Prometheus.TextFile))
	}
	if t.meterProvider != nil {
		err = multierr.Append(err, t.meterProvider.Shutdown(ctx))
	}
	if t.metricsServer != nil {
		err = multierr.Append(err, t.metricsServer.Shutdown(ctx))
	}
	return err
}

// WriteMetricsFile writes every metric registered with the default Prometheus
// registry to path in the text exposition format
func (t *Telemetry) WriteMetricsFile(path string) error {
	if err := promclient.WriteToTextfile(path, promclient.DefaultGatherer); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "failed to write metrics to "+path, err)
	}
	logger.Debug("Metrics snapshot written", zap.String("path", path))
	return nil
}

// IsEnabled returns whether telemetry is enabled
func (t *Telemetry) IsEnabled() bool {
	return t.config.Enabled
}
