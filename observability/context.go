package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/kaproxy-go/errors"
)

// Call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// OperationContext tracks one produce or consume call: its span and its
// metrics. If Metrics is nil, metric recording is skipped.
type OperationContext struct {
	Operation string
	Topic     string
	Group     string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

// NewOperationContext creates a new operation context.
func NewOperationContext(operation, topic, group string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		Operation: operation,
		Topic:     topic,
		Group:     group,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// Start starts the call span and records the active-call metric.
func (oc *OperationContext) Start(ctx context.Context, spanName string) context.Context {
	ctx, span := StartSpan(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrOperation, oc.Operation),
		attribute.String(AttrTopic, oc.Topic),
	)
	if oc.Group != "" {
		span.SetAttributes(attribute.String(AttrGroup, oc.Group))
	}
	oc.span = span

	if oc.Metrics != nil {
		oc.Metrics.RecordStart(ctx, oc.Operation)
	}
	return ctx
}

// Span returns the call span, or a non-recording span before Start.
func (oc *OperationContext) Span() trace.Span {
	if oc.span == nil {
		return trace.SpanFromContext(context.Background())
	}
	return oc.span
}

// SetStatusCode records the proxy's HTTP status on the span.
func (oc *OperationContext) SetStatusCode(code int) {
	oc.Span().SetAttributes(attribute.Int(AttrStatusCode, code))
}

// End ends the span and records the call metrics.
func (oc *OperationContext) End(ctx context.Context, outcome string, err error) {
	duration := time.Since(oc.StartTime)
	span := oc.Span()

	if err != nil {
		code := string(errors.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorCode, code))
		if oc.Metrics != nil {
			oc.Metrics.RecordError(ctx, code, oc.Operation)
		}
	}

	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if oc.Metrics != nil {
		if outcome == OutcomeEmpty {
			oc.Metrics.RecordEmpty(ctx, oc.Group, oc.Topic)
		}
		oc.Metrics.RecordEnd(ctx, oc.Operation, oc.Topic, outcome, duration)
	}
}

// Duration returns the elapsed time since the call started.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
