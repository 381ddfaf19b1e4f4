package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles logging, tracing, metrics and events.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Events  *EventPublisher
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Events:  NewEventPublisher(cfg.Events),
		Config:  cfg,
	}, nil
}

// NewRunID returns a fresh identifier for a launch run.
func NewRunID() string {
	return uuid.New().String()
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown flushes spans and writes the metrics textfile.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.Tracer.Shutdown(ctx),
		t.Metrics.WriteTextfile(),
	)
}

// InstrumentedContext carries the span, logger and timer of an operation.
type InstrumentedContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
}

// End finishes the instrumented operation, recording success or failure.
func (ic *InstrumentedContext) End(err error) {
	if ic.Span != nil {
		if err != nil {
			RecordError(ic.Span, err)
		} else {
			RecordSuccess(ic.Span)
		}
		ic.Span.End()
	}
}

type runStateKey struct{}

type runState struct {
	id    string
	span  trace.Span
	timer *Timer
}

// WithRunContext starts the telemetry of a launch run: the run span, a
// run-scoped logger and the run.started event.
func WithRunContext(ctx context.Context, runID, domain string) context.Context {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return context.WithValue(ctx, runStateKey{}, &runState{id: runID, timer: NewTimer()})
	}

	spanCtx, span := tel.Tracer.StartRunSpan(ctx, runID, domain)

	logger := tel.Logger.WithRunID(runID).WithField("domain", domain)
	spanCtx = logger.WithContext(spanCtx)

	tel.Events.PublishRunStarted(runID, domain)

	return context.WithValue(spanCtx, runStateKey{}, &runState{id: runID, span: span, timer: NewTimer()})
}

// RunIDFromContext returns the run ID set by WithRunContext.
func RunIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(runStateKey{}).(*runState); ok {
		return s.id
	}
	return ""
}

// EndRunContext completes the run, recording its outcome.
func EndRunContext(ctx context.Context, err error) {
	tel := FromTelemetryContext(ctx)
	state, ok := ctx.Value(runStateKey{}).(*runState)
	if tel == nil || !ok {
		return
	}

	if state.span != nil {
		if err != nil {
			RecordError(state.span, err)
		} else {
			RecordSuccess(state.span)
		}
		state.span.End()
	}

	duration := state.timer.Duration()
	if err != nil {
		tel.Metrics.RecordRun("failed", duration)
		tel.Events.PublishRunFailed(state.id, err.Error())
		return
	}
	tel.Metrics.RecordRun("succeeded", duration)
	tel.Events.PublishRunCompleted(state.id, duration)
}

// StartStep begins the span of one wizard step.
func StartStep(ctx context.Context, step string) *InstrumentedContext {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return &InstrumentedContext{
			Ctx:    ctx,
			Logger: FromContext(ctx).WithStep(step),
			Timer:  NewTimer(),
		}
	}

	spanCtx, span := tel.Tracer.StartStepSpan(ctx, step)
	logger := FromContext(ctx).WithStep(step)

	return &InstrumentedContext{
		Ctx:    logger.WithContext(spanCtx),
		Span:   span,
		Logger: logger,
		Timer:  NewTimer(),
	}
}

// RecordStepTransition publishes a step status change and counts steps that
// reached a terminal status.
func RecordStepTransition(ctx context.Context, step, from, to string) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	if to == "done" || to == "failed" {
		tel.Metrics.RecordStepCompleted(step, to)
	}
	tel.Events.PublishStepStatusChanged(RunIDFromContext(ctx), step, from, to)

	span := trace.SpanFromContext(ctx)
	AddEvent(span, EventTypeStepStatusChanged,
		AttrStep.String(step),
		AttrStepStatus.String(to),
	)
}

// RecordPollRetry records a failed poll attempt that will be retried.
func RecordPollRetry(ctx context.Context, step, operation string, attempt, maxAttempts int) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	tel.Metrics.RecordPollAttempt(operation)
	tel.Events.PublishPollRetry(RunIDFromContext(ctx), step, operation, attempt, maxAttempts)
	AddEvent(trace.SpanFromContext(ctx), EventTypePollRetry, AttrPollAttempt.Int(attempt))
}

// RecordConfigResolution counts where a config value was resolved from.
func RecordConfigResolution(ctx context.Context, key, source string) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}
	tel.Metrics.RecordConfigResolution(key, source)
}

// RecordProviderOperation records a provider operation with metrics and tracing.
func RecordProviderOperation(ctx context.Context, providerName, operation string, fn func(ctx context.Context) error) error {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return fn(ctx)
	}

	ctx, span := tel.Tracer.StartProviderSpan(ctx, providerName, operation)
	defer span.End()

	timer := NewTimer()
	err := fn(ctx)

	tel.Metrics.RecordProviderCall(providerName, operation, timer.Duration())
	if err != nil {
		tel.Metrics.RecordProviderError(providerName, operation)
		RecordError(span, err)
	} else {
		RecordSuccess(span)
	}

	return err
}
