package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/logging"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

// scanRecord is one output line.
type scanRecord struct {
	Text   string           `json:"text"`
	Result sentiment.Result `json:"result"`
	Mood   companion.Mood   `json:"mood"`
}

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

	logger := logging.Init(cfg.LogLevel, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := io.Reader(os.Stdin)
	if cfg.InPath != "" {
		f, err := os.Open(cfg.InPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open -in: %w", err).Error())
			os.Exit(2)
		}
		defer f.Close()
		in = f
	}

	out := io.Writer(os.Stdout)
	if cfg.OutPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutPath), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("mkdir -out: %w", err).Error())
			os.Exit(2)
		}
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create -out: %w", err).Error())
			os.Exit(2)
		}
		defer f.Close()
		out = f
	}

	scorer, err := companion.NewScorer(cfg.options(logger), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := scan(ctx, scorer, cfg.Concurrency, in, out, logger); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", "", "Input file with one message per line (default: stdin)")
	fs.StringVar(&cfg.OutPath, "out", "", "Output JSONL file (default: stdout)")
	fs.StringVar(&cfg.Scorer, "scorer", cfg.Scorer, "Sentiment scorer: vader, openai or none")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for the openai scorer (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max lines scored concurrently")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Diagnostic log level: debug, info, warn or error (default: LOG_LEVEL env, then info)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	if cfg.OutPath != "" {
		cfg.OutPath = filepath.Clean(cfg.OutPath)
	}
	return cfg, nil
}

// scan scores every input line once and writes the records in input order. Lines the scorer
// cannot handle get a keyword mood. Nothing goes to the conversation log.
func scan(ctx context.Context, scorer sentiment.Scorer, concurrency int, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var lines []string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	records := make([]scanRecord, len(lines))
	err := forEachConcurrent(ctx, concurrency, len(lines), func(ctx context.Context, i int) error {
		r := scorer.Analyze(ctx, lines[i])
		mood := companion.MoodFromLabel(r.Label)
		if !r.Available {
			mood = companion.DetectMoodByKeywords(lines[i])
			logger.Debug("scorer unavailable, keyword mood", "line", i+1, "mood", mood)
		}
		records[i] = scanRecord{Text: lines[i], Result: r, Mood: mood}
		return nil
	})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return w.Flush()
}

func forEachConcurrent(ctx context.Context, concurrency, n int, fn func(context.Context, int) error) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
