package companion

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/theimaginaryfoundation/comfort-bot/companion/convlog"
	"github.com/theimaginaryfoundation/comfort-bot/companion/metrics"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

// CrisisFlagNote is the system record written whenever the crisis override fires.
const CrisisFlagNote = "[CRISIS FLAG TRIGGERED]"

// SessionEndedNote is the AI record written when a console session ends.
const SessionEndedNote = "[Session ended]"

const Farewell = "Thank you for sharing with me today. Take care. ❤️"

// Intro is printed once when a console session starts.
func Intro() string {
	return "Hi, I'm an AI-based supportive chat assistant.\n" +
		"I'm here to listen and help you explore your feelings.\n" +
		Disclaimer + "\n\n" +
		"Type 'exit' or 'quit' anytime to stop.\n"
}

// TurnLog is the append-only record the engine writes to. *convlog.Log satisfies it.
type TurnLog interface {
	AppendTurn(role, text string)
	AppendTurns(turns []convlog.Turn)
	AppendSentiment(r sentiment.Result, context string)
}

type nopLog struct{}

func (nopLog) AppendTurn(string, string) {}
func (nopLog) AppendTurns([]convlog.Turn) {}
func (nopLog) AppendSentiment(sentiment.Result, string) {}

// Utterance is one message from the person.
type Utterance struct {
	Text string
	At   time.Time
}

func NewUtterance(text string) Utterance {
	return Utterance{Text: text, At: time.Now()}
}

// Reply is the engine's answer to one utterance. Mood is empty for crisis replies.
type Reply struct {
	Text     string `json:"reply"`
	IsCrisis bool   `json:"is_crisis"`
	Mood     Mood   `json:"mood,omitempty"`
}

// Engine is the single-turn pipeline: crisis check, mood classification, composition.
// It keeps no conversation memory and is safe for concurrent use.
type Engine struct {
	scorer     sentiment.Scorer
	log        TurnLog
	classifier *MoodClassifier
	composer   *Composer
	logger     *slog.Logger
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	rnd    *rand.Rand
	logger *slog.Logger
}

// WithSeed makes every random pick reproducible.
func WithSeed(seed uint64) EngineOption {
	return func(c *engineConfig) { c.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func WithRand(r *rand.Rand) EngineOption {
	return func(c *engineConfig) { c.rnd = r }
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = logger }
}

// NewEngine wires the pipeline. A nil scorer always takes the keyword path and a nil log discards records.
func NewEngine(scorer sentiment.Scorer, catalog CopingCatalog, log TurnLog, opts ...EngineOption) *Engine {
	cfg := engineConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if scorer == nil {
		scorer = sentiment.Unavailable
	}
	if log == nil {
		log = nopLog{}
	}
	return &Engine{
		scorer:     scorer,
		log:        log,
		classifier: NewMoodClassifier(scorer, log, cfg.logger),
		composer:   NewComposer(catalog, cfg.rnd),
		logger:     cfg.logger,
	}
}

// GenerateReply produces the reply for one message. The crisis check runs first and, when it
// fires, no classification happens. Only the crisis flag and sentiment records are logged here.
func (e *Engine) GenerateReply(ctx context.Context, text string) Reply {
	if v := CheckCrisis(text); v.IsCrisis {
		e.log.AppendTurn(convlog.RoleSystem, CrisisFlagNote)
		metrics.RecordReply("", true)
		e.logger.Warn("crisis override", "phrase", v.Phrase)
		return Reply{Text: v.Message, IsCrisis: true}
	}

	mood := e.classifier.Classify(ctx, text)
	metrics.RecordReply(string(mood), false)
	return Reply{Text: e.composer.Compose(text, mood), Mood: mood}
}

// Respond logs the user turn, generates the reply and logs the AI turn.
func (e *Engine) Respond(ctx context.Context, u Utterance) Reply {
	e.log.AppendTurn(convlog.RoleUser, u.Text)
	r := e.GenerateReply(ctx, u.Text)
	e.log.AppendTurn(convlog.RoleAI, r.Text)
	return r
}

// EndSession records the closing message and the session-ended marker.
func (e *Engine) EndSession(closing string) {
	e.log.AppendTurns([]convlog.Turn{
		{Role: convlog.RoleUser, Text: closing},
		{Role: convlog.RoleAI, Text: SessionEndedNote},
	})
}

// AnalyzeSentiment runs the scorer alone. Nothing is logged.
func (e *Engine) AnalyzeSentiment(ctx context.Context, text string) sentiment.Result {
	return e.scorer.Analyze(ctx, text)
}

// DetectMood runs the hybrid classifier. A sentiment record is logged on the scorer path.
func (e *Engine) DetectMood(ctx context.Context, text string) Mood {
	return e.classifier.Classify(ctx, text)
}

// Compose builds a reply for an explicit mood, bypassing crisis detection and classification.
func (e *Engine) Compose(text string, mood Mood) (string, error) {
	m, err := ParseMood(string(mood))
	if err != nil {
		return "", err
	}
	return e.composer.Compose(text, m), nil
}
