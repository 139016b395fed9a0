// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/verustcode/docsynth/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/verustcode/docsynth"
)

// Metrics holds all application metrics
type Metrics struct {
	// Document metrics
	DocumentsTotal   metric.Int64Counter
	DocumentDuration metric.Float64Histogram

	// Section metrics
	SectionsTotal      metric.Int64Counter
	IssuesInjected     metric.Int64Counter
	IssueRetries       metric.Int64Counter
	IssuesDiscarded    metric.Int64Counter
	GenerationDuration metric.Float64Histogram
	GenerationErrors   metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			// Return empty metrics to avoid nil pointer
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// initMetrics initializes all application metrics
func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}

	var err error

	m.DocumentsTotal, err = meter.Int64Counter(
		"docsynth_documents_total",
		metric.WithDescription("Total number of documents processed, by final status"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	m.DocumentDuration, err = meter.Float64Histogram(
		"docsynth_document_duration_seconds",
		metric.WithDescription("Wall time to generate one document end to end"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(5, 15, 30, 60, 120, 300, 600, 1200),
	)
	if err != nil {
		return nil, err
	}

	m.SectionsTotal, err = meter.Int64Counter(
		"docsynth_sections_total",
		metric.WithDescription("Total number of synthesized sections"),
		metric.WithUnit("{section}"),
	)
	if err != nil {
		return nil, err
	}

	m.IssuesInjected, err = meter.Int64Counter(
		"docsynth_issues_injected_total",
		metric.WithDescription("Total number of confirmed injected issues"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, err
	}

	m.IssueRetries, err = meter.Int64Counter(
		"docsynth_issue_retries_total",
		metric.WithDescription("Generator re-queries because a planned issue was not returned"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	m.IssuesDiscarded, err = meter.Int64Counter(
		"docsynth_issues_discarded_total",
		metric.WithDescription("Unsolicited issues dropped from sections not in the plan"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram(
		"docsynth_generation_duration_seconds",
		metric.WithDescription("Duration of generator calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationErrors, err = meter.Int64Counter(
		"docsynth_generation_errors_total",
		metric.WithDescription("Total number of failed generator calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("Metrics initialized successfully")
	return m, nil
}

// RecordDocument records the final status of one document
func (m *Metrics) RecordDocument(ctx context.Context, documentType, status string, durationSeconds float64) {
	if m.DocumentsTotal != nil {
		m.DocumentsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("document_type", documentType),
				attribute.String("status", status),
			),
		)
	}
	if m.DocumentDuration != nil {
		m.DocumentDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
}

// RecordSection records one synthesized section and whether it carries an issue
func (m *Metrics) RecordSection(ctx context.Context, withIssue bool) {
	if m.SectionsTotal != nil {
		m.SectionsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.Bool("with_issue", withIssue)),
		)
	}
	if withIssue && m.IssuesInjected != nil {
		m.IssuesInjected.Add(ctx, 1)
	}
}

// RecordIssueRetry records a re-query for a planned issue
func (m *Metrics) RecordIssueRetry(ctx context.Context) {
	if m.IssueRetries != nil {
		m.IssueRetries.Add(ctx, 1)
	}
}

// RecordIssueDiscarded records an unsolicited issue that was dropped
func (m *Metrics) RecordIssueDiscarded(ctx context.Context) {
	if m.IssuesDiscarded != nil {
		m.IssuesDiscarded.Add(ctx, 1)
	}
}

// RecordGeneration records one generator call for a pipeline stage
func (m *Metrics) RecordGeneration(ctx context.Context, stage string, success bool, durationSeconds float64) {
	if m.GenerationDuration != nil {
		m.GenerationDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("stage", stage),
				attribute.Bool("success", success),
			),
		)
	}
	if !success && m.GenerationErrors != nil {
		m.GenerationErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("stage", stage)),
		)
	}
}
