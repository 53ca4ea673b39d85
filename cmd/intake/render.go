package main

import (
	"fmt"
	"strings"

	"github.com/soaringjerry/SheHuMaan/internal/copyack"
	"github.com/soaringjerry/SheHuMaan/internal/presentation"
	"github.com/soaringjerry/SheHuMaan/internal/utils"
)

const gaugeWidth = 20

const copySuccessKey = "copy.success"

// gauge draws a meter with the marker at the clamped score.
func gauge(score int) string {
	pos := presentation.GaugePosition(score) * gaugeWidth / 100
	return "[" + strings.Repeat("#", pos) + strings.Repeat(".", gaugeWidth-pos) + "] " + presentation.GaugePercent(score)
}

func (t *terminal) renderDashboard(d *presentation.Dashboard) {
	for _, w := range d.Warnings {
		t.printf("\n! %s\n", w)
	}
	t.printf("\n%s\n%s\n\n", d.Summary, d.Explanation)
	for _, m := range []presentation.Meter{d.Stress, d.Burnout} {
		t.printf("%-13s %-16s %s\n", m.Title, m.Classification.Label, gauge(m.Classification.Score))
	}
	if len(d.KeyStressors) > 0 {
		t.printf("\nKey stressors:\n")
		for _, s := range d.KeyStressors {
			t.printf("  - %s\n", s)
		}
	}
	for _, tab := range d.Tabs {
		t.printf("\n== %s ==\n", tab.Title)
		for _, day := range tab.Days {
			t.printf("%s\n  Sleep: %s\n  Breaks: %s\n  Habit: %s\n  Boundary: %s\n  %s\n",
				day.Title, day.Plan.SleepGoal, day.Plan.Breaks, day.Plan.Habit, day.Plan.Boundary, day.Plan.Message)
		}
		for _, s := range tab.Suggestions {
			t.printf("  - %s\n", s)
		}
		for _, e := range tab.Emails {
			t.printf("\n%s (copy %s)\n%s\n", e.Title, e.CopyLabel, e.Body)
		}
		if tab.SafetyBadge != nil {
			t.printf("%s\n", tab.SafetyBadge.Label)
		}
		for _, tip := range tab.Tips {
			t.printf("  - %s\n", tip)
		}
		for _, r := range tab.Resources {
			t.printf("  %s (%s): %s\n    %s\n", r.Title, r.Type, r.Contact, r.Why)
		}
	}
}

// copyLoop offers the e-mail templates until the user quits or input ends.
func (t *terminal) copyLoop(d *presentation.Dashboard, ack *copyack.Controller) {
	for {
		status := ""
		if label, ok := ack.Acknowledged(); ok {
			status = fmt.Sprintf(" (copied %s)", label)
		}
		t.printf("\ncopy manager | copy hr | quit%s > ", status)
		line, err := t.readLine()
		if err != nil || line == "quit" || line == "q" {
			return
		}
		label, ok := strings.CutPrefix(line, "copy ")
		if !ok {
			continue
		}
		body, found := d.Email(strings.TrimSpace(label))
		if !found {
			t.printf("unknown template %q\n", label)
			continue
		}
		if err := ack.Copy(body, strings.TrimSpace(label)); err != nil {
			t.printf("could not copy: %v\n", err)
			continue
		}
		t.printf("%s\n", utils.T(utils.DefaultLocale, copySuccessKey))
	}
}
