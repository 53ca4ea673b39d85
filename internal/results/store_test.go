package results_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/SheHuMaan/internal/results"
	"github.com/soaringjerry/SheHuMaan/internal/results/resultstest"
)

func TestDecode(t *testing.T) {
	good := resultstest.Sample(72, 45)

	r, err := results.Decode(resultstest.JSON(good))
	require.NoError(t, err)
	assert.Equal(t, good, r)

	short := resultstest.Sample(72, 45)
	short.DailyPlan = short.DailyPlan[:6]

	shuffled := resultstest.Sample(72, 45)
	shuffled.DailyPlan[0], shuffled.DailyPlan[1] = shuffled.DailyPlan[1], shuffled.DailyPlan[0]

	badLevel := resultstest.Sample(72, 45)
	badLevel.SafetyRisk = "extreme"

	var missing map[string]any
	require.NoError(t, json.Unmarshal(resultstest.JSON(good), &missing))
	delete(missing, "email_to_hr")
	missingJSON, _ := json.Marshal(missing)

	var bareDays map[string]any
	require.NoError(t, json.Unmarshal(resultstest.JSON(good), &bareDays))
	days := make([]map[string]any, results.PlanDays)
	for i := range days {
		days[i] = map[string]any{"day": i + 1}
	}
	bareDays["daily_plan"] = days
	bareDaysJSON, _ := json.Marshal(bareDays)

	var emptyResource map[string]any
	require.NoError(t, json.Unmarshal(resultstest.JSON(good), &emptyResource))
	emptyResource["resources"] = []map[string]any{{}}
	emptyResourceJSON, _ := json.Marshal(emptyResource)

	var nullHabit map[string]any
	require.NoError(t, json.Unmarshal(resultstest.JSON(good), &nullHabit))
	nullHabit["daily_plan"].([]any)[3].(map[string]any)["habit"] = nil
	nullHabitJSON, _ := json.Marshal(nullHabit)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "not json", data: []byte("{not json")},
		{name: "six days", data: resultstest.JSON(short)},
		{name: "days out of order", data: resultstest.JSON(shuffled)},
		{name: "unknown level", data: resultstest.JSON(badLevel)},
		{name: "missing field", data: missingJSON},
		{name: "null list", data: []byte(`{"key_stressors":null}`)},
		{name: "plan days without content", data: bareDaysJSON},
		{name: "plan day with null habit", data: nullHabitJSON},
		{name: "empty resource", data: emptyResourceJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := results.Decode(tt.data)
			assert.ErrorIs(t, err, results.ErrMalformed)
		})
	}
}

func TestDecodeKeepsOutOfRangeScores(t *testing.T) {
	r, err := results.Decode(resultstest.JSON(resultstest.Sample(140, -5)))
	require.NoError(t, err)
	assert.Equal(t, 140, r.StressScore)
	assert.Equal(t, -5, r.BurnoutScore)
}

func TestWarningsAreOptional(t *testing.T) {
	r := resultstest.Sample(20, 20)
	r.Warnings = nil
	b := resultstest.JSON(r)
	assert.NotContains(t, string(b), "warnings")
	got, err := results.Decode(b)
	require.NoError(t, err)
	assert.Empty(t, got.Warnings)
}

func storeCases(t *testing.T) map[string]results.Store {
	return map[string]results.Store{
		"memory": results.NewMemoryStore(),
		"file":   results.NewFileStore(filepath.Join(t.TempDir(), "nested", "result.json")),
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx)
			require.ErrorIs(t, err, results.ErrAbsent)

			first := resultstest.Sample(30, 30)
			require.NoError(t, s.Save(ctx, first))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, first, got)

			second := resultstest.Sample(90, 80)
			second.Warnings = []string{"Your stress/burnout levels are high."}
			second.KeyStressors = nil
			require.NoError(t, s.Save(ctx, second))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, 90, got.StressScore)
			assert.Equal(t, second.Warnings, got.Warnings)
			assert.Empty(t, got.KeyStressors)

			require.NoError(t, s.Clear(ctx))
			_, err = s.Load(ctx)
			assert.ErrorIs(t, err, results.ErrAbsent)
			require.NoError(t, s.Clear(ctx))
		})
	}
}

func TestStoreRejectsMalformedSave(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			bad := resultstest.Sample(30, 30)
			bad.DailyPlan = nil
			assert.ErrorIs(t, s.Save(ctx, bad), results.ErrMalformed)
			_, err := s.Load(ctx)
			assert.ErrorIs(t, err, results.ErrAbsent)
		})
	}
}

func TestCorruptRecordLoadsAsAbsent(t *testing.T) {
	ctx := context.Background()

	half := resultstest.CorruptStore(t, []byte(`{"quick_summary":"half`))
	_, err := half.Load(ctx)
	assert.ErrorIs(t, err, results.ErrAbsent)
	assert.ErrorIs(t, err, results.ErrMalformed)

	fs := results.NewFileStore(filepath.Join(t.TempDir(), "result.json"))
	require.NoError(t, os.WriteFile(fs.Path(), []byte("garbage"), 0o644))
	_, err = fs.Load(ctx)
	assert.ErrorIs(t, err, results.ErrAbsent)
}

func TestProvidersScopeBySession(t *testing.T) {
	ctx := context.Background()
	providers := map[string]results.Provider{
		"memory": results.NewMemoryProvider(),
		"file":   results.NewFileProvider(t.TempDir()),
	}
	for name, p := range providers {
		t.Run(name, func(t *testing.T) {
			a := p.ForSession("alpha")
			require.NoError(t, a.Save(ctx, resultstest.Sample(10, 10)))

			_, err := p.ForSession("beta").Load(ctx)
			assert.ErrorIs(t, err, results.ErrAbsent)

			got, err := p.ForSession("alpha").Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, 10, got.StressScore)

			require.NoError(t, p.Forget("alpha"))
			_, err = p.ForSession("alpha").Load(ctx)
			assert.ErrorIs(t, err, results.ErrAbsent)
			require.NoError(t, p.Close())
		})
	}
}

func TestFileProviderContainsOddSessionIDs(t *testing.T) {
	dir := t.TempDir()
	s := results.NewFileProvider(dir).ForSession("../../etc/passwd").(*results.FileStore)
	assert.Equal(t, dir, filepath.Dir(s.Path()))
}
