package intake

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TotalSteps is the fixed number of intake steps.
const TotalSteps = 4

//go:embed steps.yaml
var defaultSteps []byte

// Step is one page of the intake form.
type Step struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

type stepFile struct {
	Steps []struct {
		Number int    `yaml:"number"`
		Title  string `yaml:"title"`
		Fields []struct {
			Key         string `yaml:"key"`
			Label       string `yaml:"label"`
			Placeholder string `yaml:"placeholder,omitempty"`
		} `yaml:"fields"`
	} `yaml:"steps"`
}

// DefaultSteps returns the built-in step layout.
func DefaultSteps() []Step {
	steps, err := ParseSteps(defaultSteps)
	if err != nil {
		panic(fmt.Sprintf("intake: embedded steps.yaml: %v", err))
	}
	return steps
}

// LoadSteps reads a step layout from path. An empty path yields the
// built-in layout.
func LoadSteps(path string) ([]Step, error) {
	if path == "" {
		return DefaultSteps(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read steps file: %w", err)
	}
	return ParseSteps(data)
}

// ParseSteps decodes a YAML step layout and resolves every field key against
// the Input domain. Exactly TotalSteps steps are required, numbered 1..4, and
// every Input field must appear exactly once.
func ParseSteps(data []byte) ([]Step, error) {
	var sf stepFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps YAML: %w", err)
	}
	if len(sf.Steps) != TotalSteps {
		return nil, fmt.Errorf("expected %d steps, got %d", TotalSteps, len(sf.Steps))
	}
	seen := make(map[string]bool, len(fields))
	steps := make([]Step, 0, TotalSteps)
	for i, s := range sf.Steps {
		if s.Number != i+1 {
			return nil, fmt.Errorf("step %d is numbered %d", i+1, s.Number)
		}
		step := Step{Number: s.Number, Title: s.Title}
		for _, sfField := range s.Fields {
			f, err := Lookup(sfField.Key)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", s.Number, err)
			}
			if seen[f.Key] {
				return nil, fmt.Errorf("step %d: field %q listed twice", s.Number, f.Key)
			}
			seen[f.Key] = true
			f.Label = sfField.Label
			if f.Label == "" {
				f.Label = f.Key
			}
			f.Placeholder = sfField.Placeholder
			step.Fields = append(step.Fields, f)
		}
		steps = append(steps, step)
	}
	var missing []string
	for _, f := range fields {
		if !seen[f.Key] {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New("fields missing from step layout: " + fmt.Sprint(missing))
	}
	return steps, nil
}
