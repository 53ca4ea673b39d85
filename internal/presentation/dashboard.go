package presentation

import (
	"fmt"
	"strings"

	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// Copy labels for the e-mail templates.
const (
	CopyManager = "manager"
	CopyHR      = "hr"
)

// Meter is a score badge plus its gauge offset.
type Meter struct {
	Title          string         `json:"title"`
	Classification Classification `json:"classification"`
	Position       int            `json:"position"`
	Percent        string         `json:"percent"`
}

// DayCard is one accordion entry of the plan tab.
type DayCard struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Plan  results.DayPlan `json:"plan"`
}

// EmailCard is a copyable template.
type EmailCard struct {
	Title     string `json:"title"`
	CopyLabel string `json:"copy_label"`
	Body      string `json:"body"`
}

// Tab is one dashboard tab. Only the fields for its kind are set.
type Tab struct {
	Key         string             `json:"key"`
	Title       string             `json:"title"`
	Days        []DayCard          `json:"days,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"`
	Emails      []EmailCard        `json:"emails,omitempty"`
	SafetyBadge *SafetyBadge       `json:"safety_badge,omitempty"`
	Tips        []string           `json:"tips,omitempty"`
	Resources   []results.Resource `json:"resources,omitempty"`
}

// SafetyBadge shows the safety level without a score.
type SafetyBadge struct {
	Style
	Label string `json:"label"`
}

// Dashboard is the display model of one result.
type Dashboard struct {
	Warnings     []string `json:"warnings,omitempty"`
	Summary      string   `json:"summary"`
	Explanation  string   `json:"explanation"`
	Stress       Meter    `json:"stress"`
	Burnout      Meter    `json:"burnout"`
	KeyStressors []string `json:"key_stressors"`
	Tabs         []Tab    `json:"tabs"`
}

// BuildDashboard derives the dashboard for r. It fails only when r carries a
// level outside the contract.
func BuildDashboard(r *results.Result) (*Dashboard, error) {
	stress, err := meter("Stress Level", r.StressLevel, r.StressScore)
	if err != nil {
		return nil, fmt.Errorf("stress_level: %w", err)
	}
	burnout, err := meter("Burnout Risk", r.BurnoutRisk, r.BurnoutScore)
	if err != nil {
		return nil, fmt.Errorf("burnout_risk: %w", err)
	}
	safety, err := LevelStyle(r.SafetyRisk)
	if err != nil {
		return nil, fmt.Errorf("safety_risk: %w", err)
	}

	days := make([]DayCard, 0, len(r.DailyPlan))
	for _, d := range r.DailyPlan {
		days = append(days, DayCard{ID: fmt.Sprintf("day-%d", d.Day), Title: fmt.Sprintf("Day %d", d.Day), Plan: d})
	}

	return &Dashboard{
		Warnings:     r.Warnings,
		Summary:      r.QuickSummary,
		Explanation:  r.Explanation,
		Stress:       stress,
		Burnout:      burnout,
		KeyStressors: r.KeyStressors,
		Tabs: []Tab{
			{Key: "plan", Title: "Your Personalized 7-Day Plan", Days: days},
			{
				Key:         "workplace",
				Title:       "Workplace",
				Suggestions: r.FlexSuggestions,
				Emails: []EmailCard{
					{Title: "Email to Manager", CopyLabel: CopyManager, Body: r.EmailToManager},
					{Title: "Email to HR", CopyLabel: CopyHR, Body: r.EmailToHR},
				},
			},
			{
				Key:         "safety",
				Title:       "Women Safety Guidelines",
				SafetyBadge: &SafetyBadge{Style: safety, Label: "Safety Risk: " + strings.ToUpper(string(r.SafetyRisk))},
				Tips:        r.SafetyTips,
			},
			{Key: "resources", Title: "Resources", Resources: r.Resources},
		},
	}, nil
}

// Email returns the template body for a copy label.
func (d *Dashboard) Email(label string) (string, bool) {
	for _, t := range d.Tabs {
		for _, e := range t.Emails {
			if e.CopyLabel == label {
				return e.Body, true
			}
		}
	}
	return "", false
}

func meter(title string, level results.RiskLevel, score int) (Meter, error) {
	c, err := ClassifyLevel(level, score)
	if err != nil {
		return Meter{}, err
	}
	return Meter{Title: title, Classification: c, Position: GaugePosition(score), Percent: GaugePercent(score)}, nil
}
