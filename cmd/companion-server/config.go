package main

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/server"
)

type Config struct {
	Addr       string
	LogPath    string
	CopingPath string
	Scorer     string
	Model      string
	APIKey     string
	Seed       uint64

	RequestsPerSecond float64
	Burst             int
	BodyLimit         string

	LogLevel  string
	LogFormat string
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("missing -addr")
	}
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
	if c.RequestsPerSecond < 0 {
		return errors.New("rps must be >= 0")
	}
	if c.Burst < 0 {
		return errors.New("burst must be >= 0")
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

func (c Config) serverConfig(logger *slog.Logger) server.Config {
	return server.Config{
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		BodyLimit:         c.BodyLimit,
		Logger:            logger,
	}
}

func defaultConfig() Config {
	d := server.DefaultConfig()
	return Config{
		Addr:              ":8080",
		LogPath:           "conversation_log.txt",
		CopingPath:        filepath.FromSlash("data/coping_strategies.json"),
		Scorer:            companion.ScorerVader,
		Model:             "gpt-5-mini",
		RequestsPerSecond: d.RequestsPerSecond,
		Burst:             d.Burst,
		BodyLimit:         d.BodyLimit,
		LogFormat:         "json",
	}
}
