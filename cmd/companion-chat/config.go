package main

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
)

type Config struct {
	LogPath    string
	CopingPath string
	Scorer     string
	Model      string
	APIKey     string
	Seed       uint64
	LogLevel   string
	LogFormat  string
}

func (c Config) Validate() error {
	if c.LogPath == "" {
		return errors.New("missing -log")
	}
	kind, err := companion.ParseScorerKind(c.Scorer)
	if err != nil {
		return err
	}
	if kind == companion.ScorerOpenAI && c.Model == "" {
		return errors.New("missing -model")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.New("log-format must be text or json")
	}
	return nil
}

func (c Config) options(logger *slog.Logger) companion.Options {
	return companion.Options{
		LogPath:    c.LogPath,
		CopingPath: c.CopingPath,
		Scorer:     c.Scorer,
		Model:      c.Model,
		APIKey:     c.APIKey,
		Seed:       c.Seed,
		Logger:     logger,
	}
}

func defaultConfig() Config {
	return Config{
		LogPath:    "conversation_log.txt",
		CopingPath: filepath.FromSlash("data/coping_strategies.json"),
		Scorer:     companion.ScorerVader,
		Model:      "gpt-5-mini",
		LogFormat:  "text",
	}
}
