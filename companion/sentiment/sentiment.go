// Package sentiment provides polarity scoring behind a single capability interface.
//
// A Scorer either returns an available Result or an unavailable one; callers never check
// which backend is installed, only Result.Available.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Label is the three-way polarity label derived from a compound score.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// Compound thresholds. Scores strictly between them are neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

var (
	ErrUnavailable = errors.New("sentiment: scorer unavailable")
	ErrNoAPIKey    = errors.New("sentiment: missing OpenAI API key")
)

// Scores is the per-polarity breakdown. Neg, Neu and Pos are proportions of the text.
type Scores struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// String renders the breakdown the way it appears in the conversation log.
func (s Scores) String() string {
	return fmt.Sprintf("{'neg': %s, 'neu': %s, 'pos': %s, 'compound': %s}",
		FormatScore(s.Neg), FormatScore(s.Neu), FormatScore(s.Pos), FormatScore(s.Compound))
}

// Result is one scoring outcome. When Available is false the other fields are zero and must be ignored.
type Result struct {
	Available bool    `json:"available"`
	Label     Label   `json:"label,omitempty"`
	Compound  float64 `json:"compound"`
	Scores    *Scores `json:"scores,omitempty"`
}

// Scorer is implemented by every polarity backend, including the Unavailable sentinel.
type Scorer interface {
	Analyze(ctx context.Context, text string) Result
}

type unavailable struct{}

func (unavailable) Analyze(context.Context, string) Result { return Result{} }

// Unavailable is the scorer used when no backend could be initialized.
var Unavailable Scorer = unavailable{}

// LabelFor applies the compound thresholds.
func LabelFor(compound float64) Label {
	switch {
	case compound >= PositiveThreshold:
		return LabelPositive
	case compound <= NegativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// NewResult builds an available result from a breakdown.
func NewResult(s Scores) Result {
	return Result{
		Available: true,
		Label:     LabelFor(s.Compound),
		Compound:  s.Compound,
		Scores:    &s,
	}
}

// BlankResult is the defined outcome for empty or whitespace-only text.
func BlankResult() Result {
	return NewResult(Scores{Neg: 0, Neu: 1, Pos: 0, Compound: 0})
}

// IsBlank reports whether text has nothing to score.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// FormatScore prints a float in its shortest form, always with a decimal point.
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
