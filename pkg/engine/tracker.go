package engine

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Names of the launch workflow steps.
const (
	StepDomain      = "Domain"
	StepEmail       = "Email"
	StepHosting     = "Hosting"
	StepMailingList = "Mailing list"
)

var (
	// ErrUnknownStep is returned when a step name is not registered with the tracker.
	ErrUnknownStep = errors.New("unknown step")

	// ErrInvalidTransition is returned when a status change would move a step backwards
	// or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid step status transition")
)

// Step is one stage of the launch workflow as shown in the progress tables.
type Step struct {
	Name        string         `json:"name"`
	Provider    string         `json:"provider"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
	Status      StepStatus     `json:"status"`
	Accent      lipgloss.Color `json:"-"`
}

// StepHandle identifies a step owned by a Tracker.
type StepHandle struct {
	idx int
}

// TransitionFunc observes status changes.
type TransitionFunc func(step Step, from StepStatus)

// DefaultSteps returns the launch workflow steps in display order, all pending.
func DefaultSteps() []Step {
	return []Step{
		{
			Name:        StepDomain,
			Provider:    "gandi.net",
			Description: "Purchase a new domain",
			Price:       "Varies by TLD",
			Status:      StepStatusPending,
			Accent:      lipgloss.Color("13"),
		},
		{
			Name:        StepEmail,
			Provider:    "gandi.net",
			Description: "Setup inbox + forwarding",
			Price:       "Included with domain",
			Status:      StepStatusPending,
			Accent:      lipgloss.Color("12"),
		},
		{
			Name:        StepHosting,
			Provider:    "netlify.com",
			Description: "Static webhosting + DNS Setup + SSL",
			Price:       "Free tier",
			Status:      StepStatusPending,
			Accent:      lipgloss.Color("14"),
		},
		{
			Name:        StepMailingList,
			Provider:    "mailjet.com",
			Description: "Email subscription box",
			Price:       "Free tier",
			Status:      StepStatusPending,
			Accent:      lipgloss.Color("11"),
		},
	}
}

// Tracker owns the workflow steps and their status. Callers obtain handles
// and change status through SetStatus, which enforces the forward-only
// pending -> inProgress -> done|failed machine.
type Tracker struct {
	steps        []Step
	index        map[string]int
	onTransition []TransitionFunc
}

// NewTracker creates a tracker holding steps in the given order.
func NewTracker(steps ...Step) *Tracker {
	t := &Tracker{
		steps: make([]Step, len(steps)),
		index: make(map[string]int, len(steps)),
	}
	copy(t.steps, steps)
	for i, s := range t.steps {
		if s.Status == "" {
			t.steps[i].Status = StepStatusPending
		}
		t.index[s.Name] = i
	}
	return t
}

// OnTransition registers fn to be called after every status change.
func (t *Tracker) OnTransition(fn TransitionFunc) {
	t.onTransition = append(t.onTransition, fn)
}

// Handle returns the handle of the step called name.
func (t *Tracker) Handle(name string) (StepHandle, error) {
	idx, ok := t.index[name]
	if !ok {
		return StepHandle{}, fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}
	return StepHandle{idx: idx}, nil
}

// Step returns a copy of the step behind h.
func (t *Tracker) Step(h StepHandle) Step {
	return t.steps[h.idx]
}

// Steps returns a copy of all steps in declaration order.
func (t *Tracker) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// SetStatus moves the step behind h to status.
func (t *Tracker) SetStatus(h StepHandle, status StepStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if h.idx < 0 || h.idx >= len(t.steps) {
		return ErrUnknownStep
	}

	step := &t.steps[h.idx]
	from := step.Status
	if !from.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, step.Name, from, status)
	}
	if from == status {
		return nil
	}

	step.Status = status
	for _, fn := range t.onTransition {
		fn(*step, from)
	}
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)

// RenderAll renders every step with provider, price, description and status.
func (t *Tracker) RenderAll() string {
	return t.render(
		[]string{"Feature", "Provider", "Price", "Description", "Status"},
		t.steps,
		func(s Step) []string {
			return []string{s.Name, s.Provider, s.Price, s.Description, s.Status.Label()}
		},
	)
}

// RenderStatusOnly renders every step with its status.
func (t *Tracker) RenderStatusOnly() string {
	return t.render(
		[]string{"Feature", "Status"},
		t.steps,
		func(s Step) []string { return []string{s.Name, s.Status.Label()} },
	)
}

// RenderStep renders a single step with its status.
func (t *Tracker) RenderStep(h StepHandle) string {
	return t.render(
		[]string{"Feature", "Status"},
		t.steps[h.idx:h.idx+1],
		func(s Step) []string { return []string{s.Name, s.Status.Label()} },
	)
}

func (t *Tracker) render(headers []string, steps []Step, row func(Step) []string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)

	for _, s := range steps {
		tbl.Row(row(s)...)
	}

	tbl.StyleFunc(func(r, c int) lipgloss.Style {
		return cellStyle(steps, r)
	})

	return tbl.String()
}

// cellStyle styles row r of a step table. Data rows start at 0.
func cellStyle(steps []Step, r int) lipgloss.Style {
	if r == table.HeaderRow {
		return headerStyle
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	if r >= 0 && r < len(steps) {
		cell = cell.Foreground(steps[r].Accent)
	}
	return cell
}
