// Package resultstest provides well-formed results for tests.
package resultstest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// Sample returns a complete, valid result with the given scores. Levels are
// taken from the 40/70 bands.
func Sample(stressScore, burnoutScore int) *results.Result {
	plan := make([]results.DayPlan, 0, results.PlanDays)
	for d := 1; d <= results.PlanDays; d++ {
		plan = append(plan, results.DayPlan{
			Day:       d,
			SleepGoal: fmt.Sprintf("%d hours, lights out by 11 PM", 7),
			Breaks:    "Take a 5-min break every hour",
			Habit:     "Deep breathing for 2 minutes",
			Boundary:  "No emails after 7 PM",
			Message:   "You've got this!",
		})
	}
	return &results.Result{
		ID:              "res-1",
		QuickSummary:    "Your stress level is high and burnout risk is medium.",
		Explanation:     "What this means...",
		StressLevel:     band(stressScore),
		StressScore:     stressScore,
		BurnoutRisk:     band(burnoutScore),
		BurnoutScore:    burnoutScore,
		SafetyRisk:      results.Low,
		KeyStressors:    []string{"High workload", "Long commute (90 min)"},
		DailyPlan:       plan,
		FlexSuggestions: []string{"Request 2-3 WFH days per week"},
		EmailToManager:  "Dear Manager,\n\nCould we discuss my workload?",
		EmailToHR:       "Dear HR Team,\n\nI would like to ask about flexible hours.",
		SafetyTips:      []string{"Share your commute route with a trusted contact"},
		Resources: []results.Resource{
			{Title: "Women Helpline (24/7)", Type: "emergency", Contact: "181 or 1091", Why: "24/7 support"},
		},
	}
}

// JSON returns the wire form of r.
func JSON(r *results.Result) []byte {
	b, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	return b
}

func band(score int) results.RiskLevel {
	switch {
	case score >= 70:
		return results.High
	case score >= 40:
		return results.Medium
	default:
		return results.Low
	}
}

// WriteRecord puts data verbatim into the record file of s.
func WriteRecord(t testing.TB, s *results.FileStore, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatalf("create record dir: %v", err)
	}
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

// CorruptStore returns a file store in a temp dir holding data as its record.
func CorruptStore(t testing.TB, data []byte) *results.FileStore {
	t.Helper()
	s := results.NewFileStore(filepath.Join(t.TempDir(), "result.json"))
	WriteRecord(t, s, data)
	return s
}
