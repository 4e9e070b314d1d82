package txscope

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"petclinic/internal/platform/logger"
)

const (
	outcomeCommit   = "commit"
	outcomeRollback = "rollback"

	tracerName = "petclinic/txscope"
)

// Metrics son los colectores de Prometheus por scope.
type Metrics struct {
	scopes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registra los colectores en reg. Con reg nil no se registran
// (los colectores siguen funcionando, útil en tests).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		scopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petclinic",
			Subsystem: "tx",
			Name:      "scopes_total",
			Help:      "Transaction scopes opened, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "petclinic",
			Subsystem: "tx",
			Name:      "scope_duration_seconds",
			Help:      "Duration of transaction scopes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.scopes, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type instrumented struct {
	next    Manager
	log     logger.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Instrument decora un Manager con logs, métricas y spans. Las llamadas que se
// unen a un scope existente pasan directo (no abren scope nuevo).
func Instrument(next Manager, log logger.Logger, metrics *Metrics) Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &instrumented{
		next:    next,
		log:     log.With(map[string]any{"component": "txscope"}),
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

func (i *instrumented) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return i.run(ctx, ReadOnly, i.next.ReadOnly, fn)
}

func (i *instrumented) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return i.run(ctx, ReadWrite, i.next.ReadWrite, fn)
}

func (i *instrumented) run(
	ctx context.Context,
	mode Mode,
	open func(context.Context, func(context.Context) error) error,
	fn func(ctx context.Context) error,
) error {
	if _, ok := From(ctx); ok {
		return open(ctx, fn)
	}

	ctx, span := i.tracer.Start(ctx, "tx."+mode.String())
	defer span.End()

	var scopeID string
	start := time.Now()

	err := open(ctx, func(ctx context.Context) error {
		if s, ok := From(ctx); ok {
			scopeID = s.ID
			span.SetAttributes(attribute.String("tx.scope_id", s.ID))
		}
		return fn(ctx)
	})

	elapsed := time.Since(start)
	outcome := outcomeCommit
	if err != nil {
		outcome = outcomeRollback
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if i.metrics != nil {
		i.metrics.scopes.WithLabelValues(mode.String(), outcome).Inc()
		i.metrics.duration.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
	}

	fields := map[string]any{
		"scope_id":    scopeID,
		"mode":        mode.String(),
		"outcome":     outcome,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		i.log.Debug("transaction scope rolled back", fields)
		return err
	}
	i.log.Debug("transaction scope committed", fields)
	return nil
}
