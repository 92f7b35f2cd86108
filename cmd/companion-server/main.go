package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/logging"
	"github.com/theimaginaryfoundation/comfort-bot/companion/server"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := companion.Setup(cfg.options(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := serve(ctx, server.New(engine, cfg.serverConfig(logger)), cfg.Addr, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Conversation log file (appended to)")
	fs.StringVar(&cfg.CopingPath, "coping", cfg.CopingPath, "Coping strategy catalog (.json, .yaml or .yml)")
	fs.StringVar(&cfg.Scorer, "scorer", cfg.Scorer, "Sentiment scorer: vader, openai or none")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for the openai scorer (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Seed for reply variation (0 picks a random seed)")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "Per-client request rate on /v1 routes (0 disables limiting)")
	fs.IntVar(&cfg.Burst, "burst", cfg.Burst, "Per-client burst on /v1 routes")
	fs.StringVar(&cfg.BodyLimit, "body-limit", cfg.BodyLimit, "Max request body size (e.g. 64K, empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Diagnostic log level: debug, info, warn or error (default: LOG_LEVEL env, then info)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Diagnostic log format: text or json")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.LogPath = filepath.Clean(cfg.LogPath)
	if cfg.CopingPath != "" {
		cfg.CopingPath = filepath.Clean(cfg.CopingPath)
	}
	return cfg, nil
}

// serve runs srv until ctx is cancelled or the listener fails, then shuts it down.
func serve(ctx context.Context, srv *server.Server, addr string, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
