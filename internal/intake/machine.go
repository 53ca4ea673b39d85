// Package intake holds the in-progress assessment and the four-step state
// machine that edits it.
package intake

import "fmt"

// Machine owns one Input and the current step. It is not safe for
// concurrent use; callers serialise access.
type Machine struct {
	input Input
	step  int
	steps []Step
}

// NewMachine starts a fresh intake at step 1 with default answers.
// A nil steps slice selects the built-in layout.
func NewMachine(steps []Step) *Machine {
	if steps == nil {
		steps = DefaultSteps()
	}
	return &Machine{input: NewInput(), step: 1, steps: steps}
}

// Input returns a copy of the current answers.
func (m *Machine) Input() Input { return m.input.Clone() }

// Step returns the current step number in [1, TotalSteps].
func (m *Machine) Step() int { return m.step }

// Steps returns the step layout.
func (m *Machine) Steps() []Step { return m.steps }

// CurrentStep returns the definition of the current step.
func (m *Machine) CurrentStep() Step { return m.steps[m.step-1] }

// ProgressPercent is step/TotalSteps*100, always in (0, 100].
func (m *Machine) ProgressPercent() float64 {
	return float64(m.step) / float64(TotalSteps) * 100
}

// UpdateField writes one scalar field. The value must match the field's
// kind and enum domain; numeric ranges are checked at submission.
func (m *Machine) UpdateField(key string, value any) error {
	f, err := Lookup(key)
	if err != nil {
		return err
	}
	return m.input.set(f, value)
}

// ToggleSetMember adds value to a set field if absent and removes it if
// present.
func (m *Machine) ToggleSetMember(key, value string) error {
	f, err := Lookup(key)
	if err != nil {
		return err
	}
	if f.Kind != KindSet {
		return fmt.Errorf("%w: %s", ErrNotSet, key)
	}
	if !f.Allows(value) {
		return fmt.Errorf("%w: %q is not a %s tag", ErrInvalidValue, value, key)
	}
	m.input.PhysicalSymptoms = m.input.PhysicalSymptoms.Toggle(value)
	return nil
}

// Advance moves to the next step; no-op on the last step.
func (m *Machine) Advance() {
	if m.step < TotalSteps {
		m.step++
	}
}

// Retreat moves to the previous step; no-op on the first step.
func (m *Machine) Retreat() {
	if m.step > 1 {
		m.step--
	}
}

// Snapshot is the serialisable view of a machine.
type Snapshot struct {
	Step        int     `json:"step"`
	TotalSteps  int     `json:"total_steps"`
	Progress    float64 `json:"progress"`
	Input       Input   `json:"input"`
	CurrentStep Step    `json:"current_step"`
}

// Snapshot captures the machine state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Step:        m.step,
		TotalSteps:  TotalSteps,
		Progress:    m.ProgressPercent(),
		Input:       m.Input(),
		CurrentStep: m.CurrentStep(),
	}
}
