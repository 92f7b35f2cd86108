package companion

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/comfort-bot/companion/convlog"
	"github.com/theimaginaryfoundation/comfort-bot/companion/fileutils"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

// Scorer backends selectable from configuration.
const (
	ScorerVader   = "vader"
	ScorerOpenAI  = "openai"
	ScorerNone    = "none"
)

// Options is the startup configuration shared by every front end.
type Options struct {
	LogPath    string
	CopingPath string

	Scorer string
	Model  string
	APIKey string

	// Seed makes replies reproducible. 0 leaves the composer randomly seeded.
	Seed   uint64
	Logger *slog.Logger
}

// ParseScorerKind normalizes a backend name. The empty string selects VADER.
func ParseScorerKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", ScorerVader:
		return ScorerVader, nil
	case ScorerOpenAI, ScorerNone:
		return k, nil
	default:
		return "", fmt.Errorf("unknown scorer %q (want %s, %s or %s)", s, ScorerVader, ScorerOpenAI, ScorerNone)
	}
}

// Setup builds an Engine from opts. Resource problems (missing key, bad catalog)
// degrade with a warning; only an unknown scorer kind is an error.
func Setup(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scorer, err := NewScorer(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("Setup: %w", err)
	}

	if opts.CopingPath != "" && !fileutils.FileExists(opts.CopingPath) {
		logger.Warn("coping catalog not found, using generic suggestion", "path", opts.CopingPath)
	}
	catalog, err := LoadCopingCatalog(opts.CopingPath)
	if err != nil {
		logger.Warn("coping catalog unusable, using generic suggestion", "path", opts.CopingPath, "error", err)
	}

	logPath := opts.LogPath
	if logPath == "" {
		logPath = convlog.DefaultPath
	}
	log := convlog.New(logPath, convlog.WithLogger(logger))
	logger.Debug("conversation log", "path", log.Path())

	engineOpts := []EngineOption{WithLogger(logger)}
	if opts.Seed != 0 {
		engineOpts = append(engineOpts, WithSeed(opts.Seed))
	}
	return NewEngine(scorer, catalog, log, engineOpts...), nil
}

// NewScorer returns the configured backend behind a Lazy accessor, so loading happens on first use.
func NewScorer(opts Options, logger *slog.Logger) (sentiment.Scorer, error) {
	kind, err := ParseScorerKind(opts.Scorer)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ScorerNone:
		return sentiment.Unavailable, nil
	case ScorerOpenAI:
		return sentiment.NewLazy(sentiment.OpenAILoader(sentiment.OpenAIOptions{
			APIKey:            opts.APIKey,
			Model:             opts.Model,
			CacheSize:         1024,
			RequestsPerSecond: 2,
			Burst:             4,
			Timeout:           30 * time.Second,
			Logger:            logger,
		}), logger), nil
	default:
		return sentiment.NewLazy(sentiment.VaderLoader(), logger), nil
	}
}
