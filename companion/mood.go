package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/comfort-bot/companion/metrics"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

// Mood is the coarse emotional label the composer works from.
type Mood string

const (
	MoodNegative Mood = "negative"
	MoodPositive Mood = "positive"
	MoodNeutral  Mood = "neutral"

	// MoodStressed selects the "stressed" coping bucket. Neither classification path produces it;
	// it only arrives through an explicit Compose call.
	MoodStressed Mood = "stressed"
)

var ErrUnknownMood = errors.New("unknown mood")

// ParseMood accepts the three classifier moods plus MoodStressed.
func ParseMood(s string) (Mood, error) {
	switch m := Mood(strings.ToLower(strings.TrimSpace(s))); m {
	case MoodNegative, MoodPositive, MoodNeutral, MoodStressed:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
	}
}

// MoodFromLabel maps a polarity label to a mood. Anything unexpected is neutral.
func MoodFromLabel(l sentiment.Label) Mood {
	switch l {
	case sentiment.LabelNegative:
		return MoodNegative
	case sentiment.LabelPositive:
		return MoodPositive
	default:
		return MoodNeutral
	}
}

// Keyword sets for the fallback classifier. Matching is substring-based, so "down" also hits "download".
var (
	NegativeWords = []string{
		"sad", "down", "depressed", "anxious", "anxiety", "stressed",
		"overwhelmed", "lonely", "tired", "burned out", "worthless",
	}
	PositiveWords = []string{
		"happy", "excited", "grateful", "hopeful", "good", "okay",
	}
)

// KeywordHits counts how many words of each set occur in text. Each word counts at most once.
func KeywordHits(text string) (neg, pos int) {
	lowered := strings.ToLower(text)
	for _, w := range NegativeWords {
		if strings.Contains(lowered, w) {
			neg++
		}
	}
	for _, w := range PositiveWords {
		if strings.Contains(lowered, w) {
			pos++
		}
	}
	return neg, pos
}

// MoodFromHits is the fallback decision rule. Ties and zero-zero are neutral.
func MoodFromHits(neg, pos int) Mood {
	switch {
	case neg > pos && neg > 0:
		return MoodNegative
	case pos > neg && pos > 0:
		return MoodPositive
	default:
		return MoodNeutral
	}
}

// DetectMoodByKeywords classifies text with the keyword sets alone.
func DetectMoodByKeywords(text string) Mood {
	return MoodFromHits(KeywordHits(text))
}

// SentimentSink receives the detail of every successful primary-path evaluation.
type SentimentSink interface {
	AppendSentiment(r sentiment.Result, context string)
}

// MoodClassifier tries the scorer first and falls back to keyword counting.
type MoodClassifier struct {
	scorer sentiment.Scorer
	sink   SentimentSink
	logger *slog.Logger
}

func NewMoodClassifier(scorer sentiment.Scorer, sink SentimentSink, logger *slog.Logger) *MoodClassifier {
	if scorer == nil {
		scorer = sentiment.Unavailable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MoodClassifier{scorer: scorer, sink: sink, logger: logger}
}

// Classify always returns one of negative, positive or neutral. Only the scorer path writes a
// sentiment record.
func (c *MoodClassifier) Classify(ctx context.Context, text string) Mood {
	start := time.Now()
	r := c.scorer.Analyze(ctx, text)
	if r.Available {
		if c.sink != nil {
			c.sink.AppendSentiment(r, text)
		}
		m := MoodFromLabel(r.Label)
		metrics.RecordMood("scorer", string(m), time.Since(start).Seconds())
		c.logger.Debug("mood classified", "path", "scorer", "mood", m, "compound", r.Compound)
		return m
	}

	neg, pos := KeywordHits(text)
	m := MoodFromHits(neg, pos)
	metrics.RecordMood("keyword", string(m), 0)
	c.logger.Debug("mood classified", "path", "keyword", "mood", m, "neg_hits", neg, "pos_hits", pos)
	return m
}
