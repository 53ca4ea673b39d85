package intake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStepsCoverEveryField(t *testing.T) {
	steps := DefaultSteps()
	require.Len(t, steps, TotalSteps)

	count := 0
	for i, s := range steps {
		assert.Equal(t, i+1, s.Number)
		assert.NotEmpty(t, s.Title)
		count += len(s.Fields)
	}
	assert.Equal(t, len(Fields()), count)

	last := steps[TotalSteps-1]
	var role Field
	for _, f := range last.Fields {
		if f.Key == "current_role" {
			role = f
		}
	}
	assert.True(t, role.Required)
	assert.Equal(t, "Current Role", role.Label)
	assert.Equal(t, KindText, role.Kind)
}

func TestParseStepsRejectsBadLayouts(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "steps: [::"},
		{name: "too few steps", yaml: "steps:\n  - number: 1\n    title: Only\n"},
		{name: "unknown field", yaml: `
steps:
  - number: 1
    fields: [{key: salary}]
  - number: 2
  - number: 3
  - number: 4
`},
		{name: "missing fields", yaml: `
steps:
  - number: 1
    fields: [{key: city}]
  - number: 2
  - number: 3
  - number: 4
`},
		{name: "bad numbering", yaml: `
steps:
  - number: 2
  - number: 1
  - number: 3
  - number: 4
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSteps([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadStepsFromFile(t *testing.T) {
	steps, err := LoadSteps("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSteps(), steps)

	path := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(path, defaultSteps, 0o644))
	steps, err = LoadSteps(path)
	require.NoError(t, err)
	assert.Len(t, steps, TotalSteps)

	_, err = LoadSteps(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFieldInRange(t *testing.T) {
	sleep, err := Lookup("sleep_hours")
	require.NoError(t, err)
	assert.True(t, sleep.InRange(3))
	assert.True(t, sleep.InRange(7.5))
	assert.True(t, sleep.InRange(12))
	assert.False(t, sleep.InRange(2.5))
	assert.False(t, sleep.InRange(6.25))
	assert.False(t, sleep.InRange(12.5))
}
