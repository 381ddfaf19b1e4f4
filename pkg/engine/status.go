package engine

import (
	"encoding/json"
	"fmt"
)

// StepStatus represents the progress of one workflow step.
type StepStatus string

const (
	// StepStatusPending indicates the step has not started yet.
	StepStatusPending StepStatus = "pending"

	// StepStatusInProgress indicates the step is currently executing.
	StepStatusInProgress StepStatus = "inProgress"

	// StepStatusDone indicates the step completed successfully.
	StepStatusDone StepStatus = "done"

	// StepStatusFailed indicates the step failed.
	StepStatusFailed StepStatus = "failed"
)

// Glyphs appended to terminal status labels.
const (
	GlyphSuccess = "✔"
	GlyphError   = "✖"
)

// IsTerminal returns true if the step status represents a final state.
func (s StepStatus) IsTerminal() bool {
	return s == StepStatusDone || s == StepStatusFailed
}

// Validate checks if the step status is valid.
func (s StepStatus) Validate() error {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusDone, StepStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid step status: %s", s)
	}
}

// CanTransitionTo reports whether the forward-only step machine allows moving
// from s to next. Setting the current status again is always allowed.
func (s StepStatus) CanTransitionTo(next StepStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StepStatusPending:
		return next == StepStatusInProgress || next == StepStatusFailed
	case StepStatusInProgress:
		return next == StepStatusDone || next == StepStatusFailed
	default:
		return false
	}
}

// Label returns the text shown in the status column.
func (s StepStatus) Label() string {
	switch s {
	case StepStatusPending:
		return "Pending"
	case StepStatusInProgress:
		return "In Progress"
	case StepStatusDone:
		return "Done " + GlyphSuccess
	case StepStatusFailed:
		return "Failed " + GlyphError
	default:
		return string(s)
	}
}

// MarshalJSON implements custom JSON marshaling for type-safe enum serialization.
func (s StepStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements custom JSON unmarshaling with validation.
func (s *StepStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = StepStatus(str)
	return s.Validate()
}
