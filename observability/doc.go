// Package observability provides OpenTelemetry tracing and metrics for the
// kaproxy client.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("kaproxy"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("kaproxy"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("kaproxy"))
//	client, err := kaproxy.New(addr, token, kaproxy.WithMetrics(metrics))
//
// Each client call is tracked by an OperationContext, which owns the span and
// records the operation metrics when it ends.
package observability
