package intake

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors struct {
	Errors []ValidationError
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Fields lists the offending field keys in order.
func (ve *ValidationErrors) Fields() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		out = append(out, e.Field)
	}
	return out
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateForSubmit checks an Input before it leaves the process. Required
// text fields must be non-empty after trimming; every other field must lie
// in its declared domain. Returns nil or *ValidationErrors.
func ValidateForSubmit(in Input) error {
	ve := &ValidationErrors{}
	for _, f := range fields {
		v, _ := in.Get(f.Key)
		switch f.Kind {
		case KindText:
			if f.Required && strings.TrimSpace(v.(string)) == "" {
				ve.Add(f.Key, "required")
			}
		case KindInt, KindRating:
			n := float64(v.(int))
			if !f.InRange(n) {
				ve.Add(f.Key, fmt.Sprintf("must be between %g and %g", f.Min, f.Max))
			}
		case KindFloat:
			if !f.InRange(v.(float64)) {
				ve.Add(f.Key, fmt.Sprintf("must be between %g and %g in steps of %g", f.Min, f.Max, f.Step))
			}
		case KindEnum:
			if !f.Allows(v.(string)) {
				ve.Add(f.Key, "must be one of "+strings.Join(f.Options, ", "))
			}
		case KindSet:
			for _, tag := range v.(SymptomSet) {
				if !f.Allows(tag) {
					ve.Add(f.Key, fmt.Sprintf("unknown tag %q", tag))
				}
			}
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
