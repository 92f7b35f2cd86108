package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/convlog"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("companion-chat", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-log", "logs/chat.txt",
		"-coping", "data/coping.yaml",
		"-scorer", "openai",
		"-model", "gpt-5-nano",
		"-api-key", "k",
		"-seed", "42",
		"-log-level", "debug",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.LogPath != filepath.FromSlash("logs/chat.txt") {
		t.Fatalf("LogPath=%q", cfg.LogPath)
	}
	if cfg.CopingPath != filepath.FromSlash("data/coping.yaml") {
		t.Fatalf("CopingPath=%q", cfg.CopingPath)
	}
	if cfg.Scorer != "openai" || cfg.Model != "gpt-5-nano" || cfg.APIKey != "k" {
		t.Fatalf("Scorer=%q Model=%q APIKey=%q", cfg.Scorer, cfg.Model, cfg.APIKey)
	}
	if cfg.Seed != 42 {
		t.Fatalf("Seed=%d", cfg.Seed)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel=%q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := cfg
	bad.Scorer = "bert"
	if bad.Validate() == nil {
		t.Fatalf("expected error for unknown scorer")
	}
	bad = cfg
	bad.LogPath = ""
	if bad.Validate() == nil {
		t.Fatalf("expected error for empty log path")
	}
}

func TestRun_Session(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "log.txt")
	engine := companion.NewEngine(nil, nil, convlog.New(logPath), companion.WithSeed(3))
	in := strings.NewReader("\n   \nI feel really sad and tired today\nI want to die\nQuit\nnever read\n")
	var out strings.Builder

	if err := run(context.Background(), engine, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{bannerTitle, companion.Disclaimer, "AI (please read this): " + companion.CrisisMessage, "AI: " + companion.Farewell} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never read") {
		t.Fatalf("input after quit was processed")
	}

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var roles []string
	for _, l := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		_, rest, _ := strings.Cut(l, "] ")
		role, _, _ := strings.Cut(rest, ":")
		roles = append(roles, role)
	}
	want := "USER AI USER SYSTEM AI USER AI"
	if strings.Join(roles, " ") != want {
		t.Fatalf("roles=%q, want %q", strings.Join(roles, " "), want)
	}
	if !strings.HasSuffix(strings.TrimRight(string(b), "\n"), "] AI: [Session ended]") {
		t.Fatalf("log does not end with the session marker:\n%s", b)
	}
}

func TestRun_EOFEndsWithoutLogging(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "log.txt")
	engine := companion.NewEngine(nil, nil, convlog.New(logPath))
	var out strings.Builder

	if err := run(context.Background(), engine, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), companion.Farewell) {
		t.Fatalf("no farewell on EOF")
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Fatalf("log written on EOF: %v", err)
	}
}
