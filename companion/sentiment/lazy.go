package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Loader builds a live scorer. It runs at most once per Lazy.
type Loader func() (Scorer, error)

// Lazy defers scorer construction to first use. A failed load is logged once and the accessor
// serves Unavailable for the rest of its lifetime; no retry is attempted.
type Lazy struct {
	once   sync.Once
	load   Loader
	logger *slog.Logger

	scorer Scorer
	err    error
}

func NewLazy(load Loader, logger *slog.Logger) *Lazy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lazy{load: load, logger: logger}
}

func (l *Lazy) init() {
	l.once.Do(func() {
		l.scorer, l.err = l.safeLoad()
		if l.err != nil || l.scorer == nil {
			if l.err == nil {
				l.err = ErrUnavailable
			}
			l.logger.Warn("sentiment scorer unavailable, using keyword fallback", "error", l.err)
			l.scorer = Unavailable
		}
	})
}

func (l *Lazy) safeLoad() (s Scorer, err error) {
	if l.load == nil {
		return nil, ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("sentiment: loader panicked: %v", r)
		}
	}()
	return l.load()
}

func (l *Lazy) Analyze(ctx context.Context, text string) Result {
	l.init()
	return l.scorer.Analyze(ctx, text)
}

// Err returns the load error, initializing the scorer if needed. Nil means a live scorer is in use.
func (l *Lazy) Err() error {
	l.init()
	return l.err
}
