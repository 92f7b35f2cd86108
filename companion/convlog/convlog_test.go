package convlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := strings.TrimSuffix(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestAppendTurn_Format(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "logs", "conversation_log.txt")
	l := New(p, WithClock(fixedClock))

	l.AppendTurn(RoleUser, "I feel okay")
	l.AppendTurn(RoleAI, "line one\n\nline two")

	lines := readLines(t, p)
	if len(lines) != 2 {
		t.Fatalf("lines=%d: %q", len(lines), lines)
	}
	if lines[0] != "[2025-03-04 05:06:07] USER: I feel okay" {
		t.Fatalf("line0=%q", lines[0])
	}
	if lines[1] != `[2025-03-04 05:06:07] AI: line one\n\nline two` {
		t.Fatalf("line1=%q", lines[1])
	}
}

func TestAppendTurns_InOrder(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "log.txt")
	l := New(p, WithClock(fixedClock))
	l.AppendTurns([]Turn{{Role: RoleUser, Text: "bye"}, {Role: RoleAI, Text: "[Session ended]"}})

	lines := readLines(t, p)
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "USER: bye") || !strings.HasSuffix(lines[1], "AI: [Session ended]") {
		t.Fatalf("lines=%q", lines)
	}
}

func TestAppendSentiment_Format(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "log.txt")
	l := New(p, WithClock(fixedClock))

	r := sentiment.NewResult(sentiment.Scores{Neg: 0, Neu: 0.4, Pos: 0.6, Compound: 0.73})
	l.AppendSentiment(r, "  "+strings.Repeat("a", 100)+"  ")

	lines := readLines(t, p)
	if len(lines) != 1 {
		t.Fatalf("lines=%q", lines)
	}
	want := "[2025-03-04 05:06:07] SENTIMENT: label=positive, compound=0.73, " +
		"scores={'neg': 0.0, 'neu': 0.4, 'pos': 0.6, 'compound': 0.73}, context='" +
		strings.Repeat("a", 80) + "...'"
	if lines[0] != want {
		t.Fatalf("line=%q\nwant=%q", lines[0], want)
	}
}

func TestAppendSentiment_UnavailableWritesNothing(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "log.txt")
	l := New(p, WithClock(fixedClock))
	l.AppendTurn(RoleUser, "hello")
	before := len(readLines(t, p))

	l.AppendSentiment(sentiment.Result{}, "hello")
	l.AppendSentiment(sentiment.Unavailable.Analyze(context.Background(), "hello"), "hello")

	if after := len(readLines(t, p)); after != before {
		t.Fatalf("line count changed: %d -> %d", before, after)
	}
}

func TestAppend_FailureIsSwallowed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// The log path is a directory, so every open fails.
	l := New(dir)
	l.AppendTurn(RoleUser, "still fine")
	l.AppendSentiment(sentiment.BlankResult(), "")

	if err := l.appendLine("x"); err == nil {
		t.Fatalf("expected appendLine error for directory path")
	}
}

func TestAppend_ConcurrentLinesStayWhole(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "log.txt")
	l := New(p)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.AppendTurn(RoleUser, fmt.Sprintf("writer-%d message-%d %s", w, i, strings.Repeat("x", 200)))
			}
		}(w)
	}
	wg.Wait()

	lines := readLines(t, p)
	if len(lines) != writers*perWriter {
		t.Fatalf("lines=%d, want %d", len(lines), writers*perWriter)
	}
	re := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] USER: writer-\d+ message-\d+ x{200}$`)
	for i, line := range lines {
		if !re.MatchString(line) {
			t.Fatalf("line %d corrupted: %q", i, line)
		}
	}
}

func TestNew_DefaultPath(t *testing.T) {
	t.Parallel()

	if got := New("").Path(); got != DefaultPath {
		t.Fatalf("Path=%q", got)
	}
}
