package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("sentiment-scan", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-in", "msgs.txt", "-out", "out/scan.jsonl", "-scorer", "none", "-concurrency", "8"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != "msgs.txt" || cfg.Scorer != "none" || cfg.Concurrency != 8 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func decodeRecords(t *testing.T, s string) []scanRecord {
	t.Helper()
	var out []scanRecord
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		var r scanRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("unmarshal %q: %v", sc.Text(), err)
		}
		out = append(out, r)
	}
	return out
}

func TestScan_VaderKeepsOrder(t *testing.T) {
	t.Parallel()

	scorer := sentiment.NewVaderScorer()

	var out strings.Builder
	in := strings.NewReader("I am happy\nI am sad\n\nthe meeting is on tuesday\n")
	if err := scan(context.Background(), scorer, 3, in, &out, nil); err != nil {
		t.Fatalf("scan: %v", err)
	}

	recs := decodeRecords(t, out.String())
	want := []companion.Mood{companion.MoodPositive, companion.MoodNegative, companion.MoodNeutral, companion.MoodNeutral}
	if len(recs) != len(want) {
		t.Fatalf("records=%d, want %d", len(recs), len(want))
	}
	for i, r := range recs {
		if r.Mood != want[i] {
			t.Fatalf("record %d (%q) mood=%q, want %q", i, r.Text, r.Mood, want[i])
		}
		if !r.Result.Available {
			t.Fatalf("record %d unavailable", i)
		}
	}
	if recs[2].Text != "" || recs[2].Result.Scores == nil || recs[2].Result.Scores.Neu != 1 {
		t.Fatalf("blank line record=%+v", recs[2])
	}
}

func TestScan_UnavailableFallsBackToKeywords(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	in := strings.NewReader("so lonely and tired\nfeeling grateful\n")
	if err := scan(context.Background(), sentiment.Unavailable, 1, in, &out, nil); err != nil {
		t.Fatalf("scan: %v", err)
	}
	recs := decodeRecords(t, out.String())
	if len(recs) != 2 {
		t.Fatalf("records=%d", len(recs))
	}
	if recs[0].Result.Available || recs[0].Mood != companion.MoodNegative {
		t.Fatalf("record 0=%+v", recs[0])
	}
	if recs[1].Mood != companion.MoodPositive {
		t.Fatalf("record 1 mood=%q", recs[1].Mood)
	}
}

type failingScorer struct {
	calls atomic.Int32
}

func (f *failingScorer) Analyze(context.Context, string) sentiment.Result {
	f.calls.Add(1)
	return sentiment.Result{}
}

func TestScan_UnavailableScoresEachLineOnce(t *testing.T) {
	t.Parallel()

	scorer := &failingScorer{}
	var out strings.Builder
	in := strings.NewReader("so lonely\nfeeling hopeful\n")
	if err := scan(context.Background(), scorer, 2, in, &out, nil); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n := scorer.calls.Load(); n != 2 {
		t.Fatalf("scorer calls=%d, want 2", n)
	}
	recs := decodeRecords(t, out.String())
	if len(recs) != 2 || recs[0].Mood != companion.MoodNegative || recs[1].Mood != companion.MoodPositive {
		t.Fatalf("records=%+v", recs)
	}
}

func TestForEachConcurrent_RespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	err := forEachConcurrent(context.Background(), 2, 10, func(ctx context.Context, i int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("forEachConcurrent: %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Fatalf("peak=%d, want <= 2", p)
	}
}

func TestForEachConcurrent_ReturnsFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := forEachConcurrent(context.Background(), 1, 5, func(ctx context.Context, i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}
