// Package convlog appends conversation turns and sentiment records to a plain text log.
//
// Every call opens the file in append mode, writes exactly one line with a single write, and
// closes it again. Failures are reported as warnings and never reach the caller.
package convlog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/theimaginaryfoundation/comfort-bot/companion/fileutils"
	"github.com/theimaginaryfoundation/comfort-bot/companion/metrics"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

// TimestampLayout is YYYY-MM-DD HH:MM:SS in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultPath is used when no log path is configured.
const DefaultPath = "conversation_log.txt"

// ContextSnippetMax caps the context echoed in a sentiment record.
const ContextSnippetMax = 80

// Roles used by the pipeline and its front ends.
const (
	RoleUser   = "user"
	RoleAI     = "ai"
	RoleSystem = "system"
)

// Turn is one role/text pair for AppendTurns.
type Turn struct {
	Role string
	Text string
}

// Log is safe for concurrent use. It holds no file handle between calls.
type Log struct {
	path   string
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Log)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger sets the diagnostics logger used for write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

func New(path string, opts ...Option) *Log {
	if path == "" {
		path = DefaultPath
	}
	l := &Log{path: filepath.Clean(path), now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) Path() string { return l.path }

// AppendTurn writes "[ts] ROLE: text". Newlines inside text are escaped so the event stays on one line.
func (l *Log) AppendTurn(role, text string) {
	l.write(l.turnLine(role, text))
}

// AppendTurns writes each turn in order, stamping each one separately.
func (l *Log) AppendTurns(turns []Turn) {
	for _, t := range turns {
		l.AppendTurn(t.Role, t.Text)
	}
}

// AppendSentiment writes a SENTIMENT record. Unavailable results write nothing.
func (l *Log) AppendSentiment(r sentiment.Result, context string) {
	if !r.Available {
		return
	}
	l.write(l.sentimentLine(r, context))
}

func (l *Log) turnLine(role, text string) string {
	return fmt.Sprintf("[%s] %s: %s", l.timestamp(), strings.ToUpper(role), fileutils.SanitizeNewlines(text))
}

func (l *Log) sentimentLine(r sentiment.Result, context string) string {
	scores := sentiment.Scores{Compound: r.Compound}
	if r.Scores != nil {
		scores = *r.Scores
	}
	snippet := fileutils.SanitizeNewlines(fileutils.Truncate(context, ContextSnippetMax, "..."))
	return fmt.Sprintf("[%s] SENTIMENT: label=%s, compound=%s, scores=%s, context='%s'",
		l.timestamp(), r.Label, sentiment.FormatScore(r.Compound), scores, snippet)
}

func (l *Log) timestamp() string {
	return l.now().Format(TimestampLayout)
}

func (l *Log) write(line string) {
	if err := l.appendLine(line); err != nil {
		metrics.RecordLogWriteFailure()
		l.logger.Warn("conversation log append failed", "path", l.path, "error", err)
	}
}

func (l *Log) appendLine(line string) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
