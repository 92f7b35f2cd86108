package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/logging"
)

const bannerTitle = "AI Therapist (Educational Prototype)"

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
	if err := run(ctx, engine, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Conversation log file (appended to)")
	fs.StringVar(&cfg.CopingPath, "coping", cfg.CopingPath, "Coping strategy catalog (.json, .yaml or .yml)")
	fs.StringVar(&cfg.Scorer, "scorer", cfg.Scorer, "Sentiment scorer: vader, openai or none")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for the openai scorer (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Seed for reply variation (0 picks a random seed)")
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

// run drives one console session until exit/quit, end of input or ctx cancellation.
// Only an explicit exit/quit is recorded in the conversation log.
func run(ctx context.Context, engine *companion.Engine, in io.Reader, out io.Writer) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(out, "%s\n        %s        \n%s\n", rule, bannerTitle, rule)
	fmt.Fprintln(out, companion.Intro())

	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		fmt.Fprint(out, "You: ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nAI: "+companion.Farewell)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out, "\nAI: "+companion.Farewell)
			select {
			case err := <-scanErr:
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
			default:
			}
			return nil
		}

		text := strings.TrimSpace(line)
		switch strings.ToLower(text) {
		case "exit", "quit":
			fmt.Fprintln(out, "AI: "+companion.Farewell)
			engine.EndSession(text)
			return nil
		case "":
			continue
		}

		reply := engine.Respond(ctx, companion.NewUtterance(text))
		label := "AI:"
		if reply.IsCrisis {
			label = "AI (please read this):"
		}
		fmt.Fprintf(out, "\n%s %s \n\n", label, reply.Text)
	}
}
