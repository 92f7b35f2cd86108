package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("companion-server", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-addr", "127.0.0.1:9000",
		"-scorer", "none",
		"-rps", "2.5",
		"-burst", "3",
		"-body-limit", "1K",
		"-seed", "7",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.Scorer != "none" {
		t.Fatalf("Scorer=%q", cfg.Scorer)
	}
	if cfg.RequestsPerSecond != 2.5 || cfg.Burst != 3 {
		t.Fatalf("RequestsPerSecond=%v Burst=%d", cfg.RequestsPerSecond, cfg.Burst)
	}
	if cfg.BodyLimit != "1K" || cfg.Seed != 7 {
		t.Fatalf("BodyLimit=%q Seed=%d", cfg.BodyLimit, cfg.Seed)
	}

	sc := cfg.serverConfig(nil)
	if sc.RequestsPerSecond != 2.5 || sc.Burst != 3 || sc.BodyLimit != "1K" {
		t.Fatalf("serverConfig=%+v", sc)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{name: "no_addr", mut: func(c *Config) { c.Addr = "" }},
		{name: "bad_scorer", mut: func(c *Config) { c.Scorer = "bert" }},
		{name: "negative_rps", mut: func(c *Config) { c.RequestsPerSecond = -1 }},
		{name: "negative_burst", mut: func(c *Config) { c.Burst = -1 }},
		{name: "bad_format", mut: func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tc.mut(&cfg)
			if cfg.Validate() == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
