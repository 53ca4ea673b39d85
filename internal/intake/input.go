package intake

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// Input is one in-progress assessment. Field names and JSON tags are the
// classifier request contract.
type Input struct {
	WorkHoursPerDay          int        `json:"work_hours_per_day"`
	SleepHours               float64    `json:"sleep_hours"`
	WorkFromHome             bool       `json:"work_from_home"`
	CommuteTimeMinutes       int        `json:"commute_time_minutes"`
	NightShifts              bool       `json:"night_shifts"`
	FlexibleHours            bool       `json:"flexible_hours"`
	WorkloadLevel            int        `json:"workload_level"`
	DeadlinePressure         int        `json:"deadline_pressure"`
	ManagerSupport           int        `json:"manager_support"`
	TeamSupport              int        `json:"team_support"`
	CareerGrowth             int        `json:"career_growth"`
	WorkLifeBalance          int        `json:"work_life_balance"`
	StressLevel              int        `json:"stress_level"`
	AnxietyFrequency         string     `json:"anxiety_frequency"`
	BurnoutFeeling           string     `json:"burnout_feeling"`
	PhysicalSymptoms         SymptomSet `json:"physical_symptoms"`
	FamilyResponsibilities   string     `json:"family_responsibilities"`
	SocialSupport            string     `json:"social_support"`
	HobbiesTime              string     `json:"hobbies_time"`
	ExerciseFrequency        string     `json:"exercise_frequency"`
	WorkplaceBiasExperienced bool       `json:"workplace_bias_experienced"`
	PoshAwareness            bool       `json:"posh_awareness"`
	SafetyConcerns           string     `json:"safety_concerns"`
	AgeGroup                 string     `json:"age_group"`
	YearsInIT                int        `json:"years_in_it"`
	CurrentRole              string     `json:"current_role"`
	City                     string     `json:"city"`
}

// NewInput returns an Input holding the default for every field.
func NewInput() Input {
	return Input{
		WorkHoursPerDay:        9,
		SleepHours:             7,
		CommuteTimeMinutes:     30,
		WorkloadLevel:          5,
		DeadlinePressure:       5,
		ManagerSupport:         5,
		TeamSupport:            5,
		CareerGrowth:           5,
		WorkLifeBalance:        5,
		StressLevel:            5,
		AnxietyFrequency:       "sometimes",
		BurnoutFeeling:         "mild",
		PhysicalSymptoms:       SymptomSet{},
		FamilyResponsibilities: "medium",
		SocialSupport:          "fair",
		HobbiesTime:            "occasional",
		ExerciseFrequency:      "1-2/week",
		SafetyConcerns:         "minor",
		AgeGroup:               "25-30",
		YearsInIT:              3,
	}
}

// Clone returns a deep copy.
func (in Input) Clone() Input {
	out := in
	out.PhysicalSymptoms = append(SymptomSet{}, in.PhysicalSymptoms...)
	return out
}

// structIndex maps JSON keys to struct field indexes.
var structIndex = func() map[string]int {
	t := reflect.TypeOf(Input{})
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		m[tag] = i
	}
	return m
}()

// Get returns the current value of key.
func (in *Input) Get(key string) (any, error) {
	if _, err := Lookup(key); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(in).Elem().Field(structIndex[key]).Interface()
	if s, ok := v.(SymptomSet); ok {
		return s.Clone(), nil
	}
	return v, nil
}

// set writes a scalar value after checking its kind and, for enums, its
// membership. Numeric ranges are not enforced here.
func (in *Input) set(f Field, value any) error {
	dst := reflect.ValueOf(in).Elem().Field(structIndex[f.Key])
	switch f.Kind {
	case KindInt, KindRating:
		n, ok := toFloat(value)
		if !ok || n != math.Trunc(n) {
			return fmt.Errorf("%w: %s expects an integer, got %v", ErrInvalidValue, f.Key, value)
		}
		if math.Abs(n) > math.MaxInt32 {
			return fmt.Errorf("%w: %s is out of range: %v", ErrInvalidValue, f.Key, value)
		}
		dst.SetInt(int64(n))
	case KindFloat:
		n, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%w: %s expects a number, got %v", ErrInvalidValue, f.Key, value)
		}
		dst.SetFloat(n)
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s expects a boolean, got %v", ErrInvalidValue, f.Key, value)
		}
		dst.SetBool(b)
	case KindEnum:
		s, ok := value.(string)
		if !ok || !f.Allows(s) {
			return fmt.Errorf("%w: %s must be one of %s, got %v", ErrInvalidValue, f.Key, strings.Join(f.Options, ", "), value)
		}
		dst.SetString(s)
	case KindText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects text, got %v", ErrInvalidValue, f.Key, value)
		}
		dst.SetString(s)
	case KindSet:
		return fmt.Errorf("%w: %s", ErrNotScalar, f.Key)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// SymptomSet is a duplicate-free set of symptom tags kept in sorted order so
// that equal sets compare and serialize identically.
type SymptomSet []string

// Has reports membership.
func (s SymptomSet) Has(tag string) bool {
	i := sort.SearchStrings(s, tag)
	return i < len(s) && s[i] == tag
}

// Toggle returns the set with tag added if absent or removed if present.
func (s SymptomSet) Toggle(tag string) SymptomSet {
	i := sort.SearchStrings(s, tag)
	out := make(SymptomSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	if i < len(s) && s[i] == tag {
		return append(out, s[i+1:]...)
	}
	out = append(out, tag)
	return append(out, s[i:]...)
}

// Clone returns an independent copy.
func (s SymptomSet) Clone() SymptomSet { return append(SymptomSet{}, s...) }

func (s SymptomSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *SymptomSet) UnmarshalJSON(b []byte) error {
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return err
	}
	sort.Strings(tags)
	out := SymptomSet{}
	for i, t := range tags {
		if i > 0 && tags[i-1] == t {
			continue
		}
		out = append(out, t)
	}
	*s = out
	return nil
}
