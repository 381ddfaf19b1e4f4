package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a structured record of something that happened during a launch.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// RunID is the associated run ID, if applicable.
	RunID string `json:"run_id,omitempty"`

	// Step is the associated wizard step, if applicable.
	Step string `json:"step,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]any `json:"data,omitempty"`
}

// Event types.
const (
	EventTypeRunStarted        = "run.started"
	EventTypeRunCompleted      = "run.completed"
	EventTypeRunFailed         = "run.failed"
	EventTypeStepStatusChanged = "step.status_changed"
	EventTypeConfigSaved       = "config.saved"
	EventTypePolicyViolation   = "policy.violation"
	EventTypePollRetry         = "poll.retry"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber handles an event.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be processed.
type EventFilter func(event Event) bool

// EventPublisher delivers events synchronously, in publish order, and keeps
// a bounded history of recent events.
type EventPublisher struct {
	config      EventsConfig
	subscribers []subscriberEntry
	filters     []EventFilter
	history     []Event
	mu          sync.RWMutex
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) *EventPublisher {
	ep := &EventPublisher{config: cfg}
	if cfg.MinLevel != "" {
		ep.AddFilter(FilterByLevel(cfg.MinLevel))
	}
	return ep
}

// Publish delivers event to all matching subscribers before returning.
func (ep *EventPublisher) Publish(event Event) {
	if !ep.config.Enabled {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	ep.mu.Lock()
	for _, filter := range ep.filters {
		if !filter(event) {
			ep.mu.Unlock()
			return
		}
	}
	if ep.config.HistorySize > 0 {
		if len(ep.history) >= ep.config.HistorySize {
			ep.history = ep.history[1:]
		}
		ep.history = append(ep.history, event)
	}
	subscribers := make([]subscriberEntry, len(ep.subscribers))
	copy(subscribers, ep.subscribers)
	ep.mu.Unlock()

	for _, entry := range subscribers {
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// PublishRunStarted publishes a run started event.
func (ep *EventPublisher) PublishRunStarted(runID, domain string) {
	ep.Publish(Event{
		Type:    EventTypeRunStarted,
		Source:  "launch",
		RunID:   runID,
		Message: fmt.Sprintf("Launch %s started for %s", runID, domain),
		Level:   EventLevelInfo,
		Data: map[string]any{
			"domain": domain,
		},
	})
}

// PublishRunCompleted publishes a run completed event.
func (ep *EventPublisher) PublishRunCompleted(runID string, duration time.Duration) {
	ep.Publish(Event{
		Type:    EventTypeRunCompleted,
		Source:  "launch",
		RunID:   runID,
		Message: fmt.Sprintf("Launch %s completed", runID),
		Level:   EventLevelInfo,
		Data: map[string]any{
			"duration": duration.Seconds(),
		},
	})
}

// PublishRunFailed publishes a run failed event.
func (ep *EventPublisher) PublishRunFailed(runID, reason string) {
	ep.Publish(Event{
		Type:    EventTypeRunFailed,
		Source:  "launch",
		RunID:   runID,
		Message: fmt.Sprintf("Launch %s failed: %s", runID, reason),
		Level:   EventLevelError,
		Data: map[string]any{
			"reason": reason,
		},
	})
}

// PublishStepStatusChanged publishes a step status transition.
func (ep *EventPublisher) PublishStepStatusChanged(runID, step, from, to string) {
	level := EventLevelInfo
	if to == "failed" {
		level = EventLevelError
	}
	ep.Publish(Event{
		Type:    EventTypeStepStatusChanged,
		Source:  "tracker",
		RunID:   runID,
		Step:    step,
		Message: fmt.Sprintf("Step %s changed from %s to %s", step, from, to),
		Level:   level,
		Data: map[string]any{
			"from": from,
			"to":   to,
		},
	})
}

// PublishConfigSaved publishes a config value being persisted.
func (ep *EventPublisher) PublishConfigSaved(runID, key, scope string) {
	ep.Publish(Event{
		Type:    EventTypeConfigSaved,
		Source:  "config",
		RunID:   runID,
		Message: fmt.Sprintf("Saved %s in %s config", key, scope),
		Level:   EventLevelInfo,
		Data: map[string]any{
			"key":   key,
			"scope": scope,
		},
	})
}

// PublishPolicyViolation publishes a policy violation.
func (ep *EventPublisher) PublishPolicyViolation(runID, step, policyName, reason string) {
	ep.Publish(Event{
		Type:    EventTypePolicyViolation,
		Source:  "policy_engine",
		RunID:   runID,
		Step:    step,
		Message: fmt.Sprintf("Policy violation: %s - %s", policyName, reason),
		Level:   EventLevelError,
		Data: map[string]any{
			"policy": policyName,
			"reason": reason,
		},
	})
}

// PublishPollRetry publishes a failed poll attempt that will be retried.
func (ep *EventPublisher) PublishPollRetry(runID, step, operation string, attempt, maxAttempts int) {
	ep.Publish(Event{
		Type:    EventTypePollRetry,
		Source:  "poll",
		RunID:   runID,
		Step:    step,
		Message: fmt.Sprintf("Attempt %d/%d of %s failed", attempt, maxAttempts, operation),
		Level:   EventLevelWarning,
		Data: map[string]any{
			"operation":    operation,
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		},
	})
}

// Subscribe adds a subscriber. A nil filter receives every event.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// AddFilter adds a global event filter.
func (ep *EventPublisher) AddFilter(filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.filters = append(ep.filters, filter)
}

// History returns the retained events, oldest first.
func (ep *EventPublisher) History() []Event {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	out := make([]Event, len(ep.history))
	copy(out, ep.history)
	return out
}

// FilterByLevel creates a filter that only allows events of a specific level or higher.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}
