package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/table"
)

func TestTracker_HandleUnknownStep(t *testing.T) {
	tracker := NewTracker(DefaultSteps()...)

	if _, err := tracker.Handle("Analytics"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestTracker_DefaultStepsStartPending(t *testing.T) {
	tracker := NewTracker(DefaultSteps()...)

	for _, s := range tracker.Steps() {
		if s.Status != StepStatusPending {
			t.Errorf("step %s: expected pending, got %s", s.Name, s.Status)
		}
	}
}

func TestTracker_SetStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []StepStatus
		wantErr bool
	}{
		{"happy path", []StepStatus{StepStatusInProgress, StepStatusDone}, false},
		{"failure", []StepStatus{StepStatusInProgress, StepStatusFailed}, false},
		{"abort before start", []StepStatus{StepStatusFailed}, false},
		{"same status is a no-op", []StepStatus{StepStatusInProgress, StepStatusInProgress}, false},
		{"skip to done", []StepStatus{StepStatusDone}, true},
		{"back to pending", []StepStatus{StepStatusInProgress, StepStatusPending}, true},
		{"out of terminal", []StepStatus{StepStatusInProgress, StepStatusDone, StepStatusFailed}, true},
		{"invalid status", []StepStatus{"paused"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(DefaultSteps()...)
			h, err := tracker.Handle(StepEmail)
			if err != nil {
				t.Fatalf("handle: %v", err)
			}

			var lastErr error
			for _, s := range tt.path {
				if err := tracker.SetStatus(h, s); err != nil {
					lastErr = err
					break
				}
			}
			if (lastErr != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, lastErr)
			}
		})
	}
}

func TestTracker_OnTransition(t *testing.T) {
	tracker := NewTracker(DefaultSteps()...)
	h, _ := tracker.Handle(StepHosting)

	var seen []string
	tracker.OnTransition(func(step Step, from StepStatus) {
		seen = append(seen, string(from)+"->"+string(step.Status))
	})

	_ = tracker.SetStatus(h, StepStatusInProgress)
	_ = tracker.SetStatus(h, StepStatusInProgress)
	_ = tracker.SetStatus(h, StepStatusDone)

	want := []string{"pending->inProgress", "inProgress->done"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestStepStatus_Label(t *testing.T) {
	tests := map[StepStatus]string{
		StepStatusPending:    "Pending",
		StepStatusInProgress: "In Progress",
		StepStatusDone:       "Done ✔",
		StepStatusFailed:     "Failed ✖",
	}
	for status, want := range tests {
		if got := status.Label(); got != want {
			t.Errorf("%s: expected %q, got %q", status, want, got)
		}
	}
}

func TestStepStatus_TerminalStatusesAreFinal(t *testing.T) {
	all := []StepStatus{StepStatusPending, StepStatusInProgress, StepStatusDone, StepStatusFailed}

	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			if to != from && from.CanTransitionTo(to) {
				t.Errorf("%s must not move to %s", from, to)
			}
		}
	}
	if StepStatusPending.IsTerminal() || StepStatusInProgress.IsTerminal() {
		t.Error("pending and inProgress are not terminal")
	}
}

func TestTracker_RenderAllKeepsDeclarationOrder(t *testing.T) {
	tracker := NewTracker(DefaultSteps()...)
	h, _ := tracker.Handle(StepDomain)
	_ = tracker.SetStatus(h, StepStatusInProgress)
	_ = tracker.SetStatus(h, StepStatusDone)

	out := tracker.RenderAll()

	for _, header := range []string{"Feature", "Provider", "Price", "Description", "Status"} {
		if !strings.Contains(out, header) {
			t.Errorf("expected header %q in table", header)
		}
	}
	if !strings.Contains(out, "Done ✔") {
		t.Error("expected done label for the domain step")
	}
	if !strings.Contains(out, "Static webhosting + DNS Setup + SSL") {
		t.Error("expected hosting description")
	}

	order := []string{StepDomain, StepEmail, StepHosting, StepMailingList}
	last := -1
	for _, name := range order {
		pos := strings.Index(out, name)
		if pos < 0 {
			t.Fatalf("step %s missing from table", name)
		}
		if pos < last {
			t.Errorf("step %s rendered out of order", name)
		}
		last = pos
	}
}

func TestTracker_RenderStatusOnly(t *testing.T) {
	tracker := NewTracker(DefaultSteps()...)
	h, _ := tracker.Handle(StepMailingList)
	_ = tracker.SetStatus(h, StepStatusFailed)

	out := tracker.RenderStatusOnly()
	if strings.Contains(out, "Provider") || strings.Contains(out, "mailjet.com") {
		t.Error("status-only table must not include provider column")
	}
	if !strings.Contains(out, "Failed ✖") {
		t.Error("expected failed label")
	}

	single := tracker.RenderStep(h)
	if strings.Contains(single, StepDomain) {
		t.Error("single-step table must only contain its step")
	}
}

func TestCellStyle_RowsUseStepAccent(t *testing.T) {
	steps := DefaultSteps()

	for i, s := range steps {
		if got := cellStyle(steps, i).GetForeground(); got != s.Accent {
			t.Errorf("row %d (%s): expected accent %v, got %v", i, s.Name, s.Accent, got)
		}
	}

	if !cellStyle(steps, table.HeaderRow).GetBold() || cellStyle(steps, 0).GetBold() {
		t.Error("only the header row should be bold")
	}
}
