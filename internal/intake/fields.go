package intake

import (
	"errors"
	"fmt"
)

// Kind is the value domain of an input field.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindRating Kind = "rating"
	KindEnum   Kind = "enum"
	KindSet    Kind = "set"
	KindText   Kind = "text"
)

var (
	// ErrUnknownField is returned for a key that is not part of Input.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when a value has the wrong type or is not a
	// member of an enumerated domain.
	ErrInvalidValue = errors.New("invalid value")
	// ErrNotScalar is returned when UpdateField targets a set-valued field.
	ErrNotScalar = errors.New("field is set-valued")
	// ErrNotSet is returned when ToggleSetMember targets a scalar field.
	ErrNotSet = errors.New("field is not set-valued")
)

// Field describes one input field: its domain and how a step presents it.
// Domains are fixed in code; step files only choose order and labels.
type Field struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	Min         float64  `json:"min,omitempty"`
	Max         float64  `json:"max,omitempty"`
	Step        float64  `json:"step,omitempty"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// Symptom tags accepted by physical_symptoms.
var Symptoms = []string{"headache", "fatigue", "insomnia", "back_pain", "anxiety", "digestive_issues"}

var fields = []Field{
	{Key: "work_hours_per_day", Kind: KindInt, Min: 1, Max: 16, Step: 1},
	{Key: "sleep_hours", Kind: KindFloat, Min: 3, Max: 12, Step: 0.5},
	{Key: "commute_time_minutes", Kind: KindInt, Min: 0, Max: 240, Step: 1},
	{Key: "years_in_it", Kind: KindInt, Min: 0, Max: 50, Step: 1},
	{Key: "work_from_home", Kind: KindBool},
	{Key: "flexible_hours", Kind: KindBool},
	{Key: "night_shifts", Kind: KindBool},
	{Key: "workload_level", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "deadline_pressure", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "manager_support", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "team_support", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "career_growth", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "work_life_balance", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "stress_level", Kind: KindRating, Min: 1, Max: 10, Step: 1},
	{Key: "anxiety_frequency", Kind: KindEnum, Options: []string{"rarely", "sometimes", "often", "always"}},
	{Key: "burnout_feeling", Kind: KindEnum, Options: []string{"none", "mild", "moderate", "severe"}},
	{Key: "physical_symptoms", Kind: KindSet, Options: Symptoms},
	{Key: "exercise_frequency", Kind: KindEnum, Options: []string{"none", "1-2/week", "3-4/week", "daily"}},
	{Key: "hobbies_time", Kind: KindEnum, Options: []string{"none", "rare", "occasional", "regular"}},
	{Key: "family_responsibilities", Kind: KindEnum, Options: []string{"low", "medium", "high"}},
	{Key: "social_support", Kind: KindEnum, Options: []string{"poor", "fair", "good", "excellent"}},
	{Key: "safety_concerns", Kind: KindEnum, Options: []string{"none", "minor", "moderate", "major"}},
	{Key: "workplace_bias_experienced", Kind: KindBool},
	{Key: "posh_awareness", Kind: KindBool},
	{Key: "age_group", Kind: KindEnum, Options: []string{"20-25", "25-30", "30-35", "35-40", "40+"}},
	{Key: "current_role", Kind: KindText, Required: true},
	{Key: "city", Kind: KindText, Required: true},
}

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}()

// Fields returns every field descriptor in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the descriptor for key.
func Lookup(key string) (Field, error) {
	f, ok := fieldsByKey[key]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return f, nil
}

// Allows reports whether v is a member of the field's enumerated options.
func (f Field) Allows(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

// InRange reports whether a numeric value lies within [Min, Max] and on the
// field's step grid.
func (f Field) InRange(v float64) bool {
	if v < f.Min || v > f.Max {
		return false
	}
	if f.Step > 0 {
		n := (v - f.Min) / f.Step
		if n != float64(int64(n)) {
			return false
		}
	}
	return true
}
