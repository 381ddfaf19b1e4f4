// Package engine provides the workflow primitives of the LaunchWolf launch wizard.
//
// # Overview
//
// Launching a site runs four sequential steps (Domain, Email, Hosting and
// Mailing list), each backed by a different provider. The engine package holds
// the pieces the orchestration needs that are independent of any provider:
//
//   - Tracker: the canonical list of steps and their status, rendered as tables
//   - StepStatus: the forward-only status machine pending -> inProgress -> done|failed
//   - Poll: bounded retry-with-delay used to wait for a remote system to converge
//   - EngineError: classified errors (transient, throttled, conflict, permanent)
//
// # Tracker
//
// The tracker is the sole owner of step records. Callers ask for a handle and
// change status through SetStatus:
//
//	tracker := engine.NewTracker(engine.DefaultSteps()...)
//	h, _ := tracker.Handle(engine.StepDomain)
//	_ = tracker.SetStatus(h, engine.StepStatusInProgress)
//	fmt.Println(tracker.RenderStatusOnly())
//
// Moving a step backwards, or out of done/failed, returns ErrInvalidTransition.
//
// # Polling
//
// Poll retries on logical non-success only. An error from the check function
// ends polling immediately:
//
//	owned, err := engine.Poll(ctx, client.IsDomainAlreadyOwned,
//	    func(owned bool) bool { return owned },
//	    errors.New("couldn't confirm domain purchase"),
//	    5*time.Second, 10,
//	    func(attempt int) { fmt.Printf("Attempt %d/10 failed, retrying...\n", attempt) })
package engine
