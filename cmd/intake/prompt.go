package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soaringjerry/SheHuMaan/internal/intake"
)

// errBack is returned by a prompt when the user asks for the previous step.
var errBack = errors.New("back")

type terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func newTerminal(r io.Reader, w io.Writer) *terminal {
	return &terminal{in: bufio.NewScanner(r), out: w}
}

func (t *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// readLine returns the trimmed next line; io.EOF when input ends.
func (t *terminal) readLine() (string, error) {
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// runStep prompts every field of the current step. An empty answer keeps
// the current value.
func (t *terminal) runStep(m *intake.Machine) error {
	step := m.CurrentStep()
	t.printf("\nStep %d of %d: %s (%.0f%%)\n", step.Number, intake.TotalSteps, step.Title, m.ProgressPercent())
	if step.Number > 1 {
		t.printf("  (enter b to go back)\n")
	}
	in := m.Input()
	for _, f := range step.Fields {
		for {
			cur, _ := in.Get(f.Key)
			t.printf("  %s %s [%s]: ", f.Label, hint(f), display(cur))
			line, err := t.readLine()
			if err != nil {
				return err
			}
			if line == "b" || line == "back" {
				return errBack
			}
			if line == "" {
				break
			}
			if err := apply(m, f, line); err != nil {
				t.printf("    %v\n", err)
				continue
			}
			break
		}
	}
	return nil
}

// apply parses line for f and writes it into the machine.
func apply(m *intake.Machine, f intake.Field, line string) error {
	switch f.Kind {
	case intake.KindInt, intake.KindRating:
		n, err := strconv.Atoi(line)
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if !f.InRange(float64(n)) {
			return fmt.Errorf("enter a number from %g to %g", f.Min, f.Max)
		}
		return m.UpdateField(f.Key, n)
	case intake.KindFloat:
		n, err := strconv.ParseFloat(line, 64)
		if err != nil || !f.InRange(n) {
			return fmt.Errorf("enter a number from %g to %g in steps of %g", f.Min, f.Max, f.Step)
		}
		return m.UpdateField(f.Key, n)
	case intake.KindBool:
		switch strings.ToLower(line) {
		case "y", "yes", "true":
			return m.UpdateField(f.Key, true)
		case "n", "no", "false":
			return m.UpdateField(f.Key, false)
		}
		return fmt.Errorf("answer y or n")
	case intake.KindEnum:
		if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(f.Options) {
			line = f.Options[i-1]
		}
		if !f.Allows(line) {
			return fmt.Errorf("choose one of %s", strings.Join(f.Options, ", "))
		}
		return m.UpdateField(f.Key, line)
	case intake.KindSet:
		return applySet(m, f, line)
	case intake.KindText:
		return m.UpdateField(f.Key, line)
	}
	return fmt.Errorf("unsupported field %s", f.Key)
}

// applySet makes the set equal to the comma separated tags in line; "none"
// clears it.
func applySet(m *intake.Machine, f intake.Field, line string) error {
	want := intake.SymptomSet{}
	if !strings.EqualFold(line, "none") {
		for _, tag := range strings.Split(line, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if !f.Allows(tag) {
				return fmt.Errorf("unknown %q; choose from %s", tag, strings.Join(f.Options, ", "))
			}
			if !want.Has(tag) {
				want = want.Toggle(tag)
			}
		}
	}
	in := m.Input()
	cur, _ := in.Get(f.Key)
	have, _ := cur.(intake.SymptomSet)
	for _, tag := range f.Options {
		if have.Has(tag) != want.Has(tag) {
			if err := m.ToggleSetMember(f.Key, tag); err != nil {
				return err
			}
		}
	}
	return nil
}

func hint(f intake.Field) string {
	switch f.Kind {
	case intake.KindInt, intake.KindRating, intake.KindFloat:
		return fmt.Sprintf("(%g-%g)", f.Min, f.Max)
	case intake.KindBool:
		return "(y/n)"
	case intake.KindEnum:
		opts := make([]string, len(f.Options))
		for i, o := range f.Options {
			opts[i] = fmt.Sprintf("%d=%s", i+1, o)
		}
		return "(" + strings.Join(opts, " ") + ")"
	case intake.KindSet:
		return "(comma separated: " + strings.Join(f.Options, ", ") + "; none to clear)"
	case intake.KindText:
		if f.Placeholder != "" {
			return "(e.g. " + f.Placeholder + ")"
		}
	}
	return ""
}

func display(v any) string {
	switch x := v.(type) {
	case intake.SymptomSet:
		if len(x) == 0 {
			return "none"
		}
		return strings.Join(x, ", ")
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// stepOf returns the step number that shows key, or 0.
func stepOf(steps []intake.Step, key string) int {
	for _, s := range steps {
		for _, f := range s.Fields {
			if f.Key == key {
				return s.Number
			}
		}
	}
	return 0
}
