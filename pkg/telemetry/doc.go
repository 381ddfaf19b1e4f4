// Package telemetry provides observability for LaunchWolf runs.
//
// It integrates structured logging (zerolog), tracing (OpenTelemetry),
// metrics (Prometheus) and an in-process event publisher behind one
// Telemetry value that travels in the context.
//
// # Usage
//
// Initialize telemetry at startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = version
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Runs and steps
//
// A launch is one run. WithRunContext opens the run span and publishes
// run.started; EndRunContext records the outcome:
//
//	ctx = telemetry.WithRunContext(ctx, telemetry.NewRunID(), domain)
//	defer func() { telemetry.EndRunContext(ctx, err) }()
//
// Each wizard step gets its own span:
//
//	op := telemetry.StartStep(ctx, "Domain")
//	defer op.End(err)
//
// Step status changes reported through RecordStepTransition are counted in
// steps_completed_total and published as step.status_changed events.
//
// # Provider calls
//
// RecordProviderOperation wraps an API call in a provider span and records
// provider_calls_total, provider_call_duration_seconds and
// provider_errors_total:
//
//	err := telemetry.RecordProviderOperation(ctx, "gandi.net", "check_availability",
//	    func(ctx context.Context) error {
//	        return client.Do(ctx, req, &out)
//	    })
//
// # Metrics
//
// The process is short-lived, so metrics are not served. When
// metrics.textfile is set in the settings file, Shutdown writes the registry
// there in the Prometheus text format.
//
// # Events
//
// Events are delivered synchronously and in order. The publisher keeps the
// most recent events in memory:
//
//	tel.Events.Subscribe(func(e telemetry.Event) {
//	    fmt.Println(e.Message)
//	}, telemetry.FilterByType(telemetry.EventTypeStepStatusChanged))
package telemetry
