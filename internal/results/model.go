// Package results holds the classifier output for one submitted assessment
// and the single-slot store that carries it to the dashboard.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RiskLevel grades stress, burnout or safety risk.
type RiskLevel string

const (
	Low    RiskLevel = "low"
	Medium RiskLevel = "medium"
	High   RiskLevel = "high"
)

// Valid reports whether l is one of low, medium, high.
func (l RiskLevel) Valid() bool {
	switch l {
	case Low, Medium, High:
		return true
	}
	return false
}

// PlanDays is the fixed length of a daily plan.
const PlanDays = 7

// DayPlan is one day of the seven-day plan.
type DayPlan struct {
	Day       int    `json:"day"`
	SleepGoal string `json:"sleep_goal"`
	Breaks    string `json:"breaks"`
	Habit     string `json:"habit"`
	Boundary  string `json:"boundary"`
	Message   string `json:"message"`
}

// Resource is a support contact.
type Resource struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Contact string `json:"contact"`
	Why     string `json:"why"`
}

// Result is the classifier output. It is never partially updated.
type Result struct {
	ID              string     `json:"id,omitempty"`
	Timestamp       string     `json:"timestamp,omitempty"`
	QuickSummary    string     `json:"quick_summary"`
	Explanation     string     `json:"explanation"`
	StressLevel     RiskLevel  `json:"stress_level"`
	StressScore     int        `json:"stress_score"`
	BurnoutRisk     RiskLevel  `json:"burnout_risk"`
	BurnoutScore    int        `json:"burnout_score"`
	SafetyRisk      RiskLevel  `json:"safety_risk"`
	KeyStressors    []string   `json:"key_stressors"`
	DailyPlan       []DayPlan  `json:"daily_plan"`
	FlexSuggestions []string   `json:"flex_suggestions"`
	EmailToManager  string     `json:"email_to_manager"`
	EmailToHR       string     `json:"email_to_hr"`
	SafetyTips      []string   `json:"safety_tips"`
	Resources       []Resource `json:"resources"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// ErrMalformed marks a result that violates the response contract.
var ErrMalformed = errors.New("malformed result")

var requiredKeys = []string{
	"quick_summary", "explanation",
	"stress_level", "stress_score",
	"burnout_risk", "burnout_score",
	"safety_risk", "key_stressors", "daily_plan", "flex_suggestions",
	"email_to_manager", "email_to_hr", "safety_tips", "resources",
}

var (
	dayPlanKeys  = []string{"day", "sleep_goal", "breaks", "habit", "boundary", "message"}
	resourceKeys = []string{"title", "type", "contact", "why"}
)

func missingKey(raw map[string]json.RawMessage, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || string(v) == "null" {
			return k, true
		}
	}
	return "", false
}

// checkEntries requires every object of the list at field to carry keys.
func checkEntries(data json.RawMessage, field string, keys []string) error {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
	}
	for i, e := range entries {
		if k, missing := missingKey(e, keys); missing {
			return fmt.Errorf("%w: missing field %s[%d].%s", ErrMalformed, field, i, k)
		}
	}
	return nil
}

// Decode parses a classifier response or a persisted record. Any missing
// required field or failed shape invariant yields an error wrapping
// ErrMalformed.
func Decode(data []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if k, missing := missingKey(raw, requiredKeys); missing {
		return nil, fmt.Errorf("%w: missing field %s", ErrMalformed, k)
	}
	if err := checkEntries(raw["daily_plan"], "daily_plan", dayPlanKeys); err != nil {
		return nil, err
	}
	if err := checkEntries(raw["resources"], "resources", resourceKeys); err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the shape invariants: known risk levels and a daily plan
// of exactly seven days numbered 1..7 in order. Scores are not range-checked;
// the presentation layer clamps them.
func (r *Result) Validate() error {
	levels := []struct {
		name  string
		level RiskLevel
	}{
		{"stress_level", r.StressLevel},
		{"burnout_risk", r.BurnoutRisk},
		{"safety_risk", r.SafetyRisk},
	}
	for _, l := range levels {
		if !l.level.Valid() {
			return fmt.Errorf("%w: %s %q", ErrMalformed, l.name, l.level)
		}
	}
	if len(r.DailyPlan) != PlanDays {
		return fmt.Errorf("%w: daily_plan has %d entries, want %d", ErrMalformed, len(r.DailyPlan), PlanDays)
	}
	for i, d := range r.DailyPlan {
		if d.Day != i+1 {
			return fmt.Errorf("%w: daily_plan[%d] is day %d", ErrMalformed, i, d.Day)
		}
	}
	return nil
}

// Encode serialises r for persistence. Nil lists are written as empty
// lists so the record decodes again.
func Encode(r *Result) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := r.Clone()
	for _, s := range []*[]string{&out.KeyStressors, &out.FlexSuggestions, &out.SafetyTips} {
		if *s == nil {
			*s = []string{}
		}
	}
	if out.Resources == nil {
		out.Resources = []Resource{}
	}
	return json.Marshal(out)
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	out := *r
	out.KeyStressors = cloneSlice(r.KeyStressors)
	out.DailyPlan = cloneSlice(r.DailyPlan)
	out.FlexSuggestions = cloneSlice(r.FlexSuggestions)
	out.SafetyTips = cloneSlice(r.SafetyTips)
	out.Resources = cloneSlice(r.Resources)
	out.Warnings = cloneSlice(r.Warnings)
	return &out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
