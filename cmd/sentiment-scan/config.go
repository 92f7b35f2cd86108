package main

import (
	"errors"
	"log/slog"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
)

type Config struct {
	InPath      string
	OutPath     string
	Scorer      string
	Model       string
	APIKey      string
	Concurrency int
	LogLevel    string
}

func (c Config) Validate() error {
	kind, err := companion.ParseScorerKind(c.Scorer)
	if err != nil {
		return err
	}
	if kind == companion.ScorerOpenAI && c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	return nil
}

func (c Config) options(logger *slog.Logger) companion.Options {
	return companion.Options{
		Scorer: c.Scorer,
		Model:  c.Model,
		APIKey: c.APIKey,
		Logger: logger,
	}
}

func defaultConfig() Config {
	return Config{
		Scorer:      companion.ScorerVader,
		Model:       "gpt-5-mini",
		Concurrency: 4,
	}
}
