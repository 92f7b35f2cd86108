package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
)

// VaderScorer scores polarity in-process with VADER and its bundled lexicon.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// VaderLoader builds a VaderScorer. Lexicon setup happens here so Lazy defers it to first use.
func VaderLoader() Loader {
	return func() (Scorer, error) {
		return NewVaderScorer(), nil
	}
}

func (s *VaderScorer) Analyze(_ context.Context, text string) Result {
	if IsBlank(text) {
		return BlankResult()
	}
	return NewResult(s.PolarityScores(text))
}

// PolarityScores rounds proportions to 3 places and the compound score to 4.
func (s *VaderScorer) PolarityScores(text string) Scores {
	v := s.analyzer.PolarityScores(text)
	return Scores{
		Neg:      round(clamp(v.Negative, 0, 1), 3),
		Neu:      round(clamp(v.Neutral, 0, 1), 3),
		Pos:      round(clamp(v.Positive, 0, 1), 3),
		Compound: round(clamp(v.Compound, -1, 1), 4),
	}
}
