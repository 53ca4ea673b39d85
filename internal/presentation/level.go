// Package presentation derives display-ready values from a result. The
// functions here are pure; Guard is the only stateful piece.
package presentation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// ErrUnknownLevel is returned for a risk level outside low/medium/high.
var ErrUnknownLevel = errors.New("unknown risk level")

// Band thresholds: score < MediumFrom is low, score >= HighFrom is high.
const (
	MediumFrom = 40
	HighFrom   = 70
)

// Tone is the styling bucket of a risk level.
type Tone string

const (
	ToneOK      Tone = "ok"
	ToneCaution Tone = "caution"
	ToneAlert   Tone = "alert"
)

// Style is the color treatment of a risk level.
type Style struct {
	Level      results.RiskLevel `json:"level"`
	Tone       Tone              `json:"tone"`
	Color      string            `json:"color"`
	ColorClass string            `json:"color_class"`
}

// Classification is a risk badge: style plus label.
type Classification struct {
	Style
	Score int    `json:"score"`
	Label string `json:"label"`
}

// LevelStyle maps a level to its styling bucket.
func LevelStyle(level results.RiskLevel) (Style, error) {
	switch level {
	case results.High:
		return Style{Level: level, Tone: ToneAlert, Color: "red", ColorClass: "text-red-600 bg-red-50 border-red-200"}, nil
	case results.Medium:
		return Style{Level: level, Tone: ToneCaution, Color: "amber", ColorClass: "text-amber-600 bg-amber-50 border-amber-200"}, nil
	case results.Low:
		return Style{Level: level, Tone: ToneOK, Color: "green", ColorClass: "text-green-600 bg-green-50 border-green-200"}, nil
	}
	return Style{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

// ClassifyLevel builds the badge for a level and its score, labelled
// "<LEVEL> - <score>/100" with the score clamped to [0, 100].
func ClassifyLevel(level results.RiskLevel, score int) (Classification, error) {
	st, err := LevelStyle(level)
	if err != nil {
		return Classification{}, err
	}
	s := GaugePosition(score)
	return Classification{
		Style: st,
		Score: s,
		Label: fmt.Sprintf("%s - %d/100", strings.ToUpper(string(level)), s),
	}, nil
}

// BandForScore places a score in a risk band.
func BandForScore(score int) results.RiskLevel {
	switch {
	case score >= HighFrom:
		return results.High
	case score >= MediumFrom:
		return results.Medium
	default:
		return results.Low
	}
}

// ClassifyScore classifies a bare score by its band.
func ClassifyScore(score int) Classification {
	c, _ := ClassifyLevel(BandForScore(score), score)
	return c
}

// GaugePosition is the score clamped to [0, 100], used as a percentage
// offset along a meter.
func GaugePosition(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// GaugePercent renders GaugePosition as a CSS-style percentage.
func GaugePercent(score int) string {
	return fmt.Sprintf("%d%%", GaugePosition(score))
}
