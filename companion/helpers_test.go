package companion

import (
	"context"
	"sync"

	"github.com/theimaginaryfoundation/comfort-bot/companion/convlog"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

type fakeScorer struct {
	mu     sync.Mutex
	result sentiment.Result
	calls  int
}

func (f *fakeScorer) Analyze(context.Context, string) sentiment.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

func (f *fakeScorer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingLog struct {
	mu         sync.Mutex
	turns      []convlog.Turn
	sentiments []sentiment.Result
	contexts   []string
}

func (r *recordingLog) AppendTurn(role, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, convlog.Turn{Role: role, Text: text})
}

func (r *recordingLog) AppendTurns(turns []convlog.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turns...)
}

func (r *recordingLog) AppendSentiment(res sentiment.Result, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sentiments = append(r.sentiments, res)
	r.contexts = append(r.contexts, context)
}

func testCatalog() CopingCatalog {
	return CopingCatalog{
		BucketSad:      {"sad-1", "sad-2"},
		BucketAnxious:  {"anxious-1"},
		BucketStressed: {"stressed-1"},
		BucketGeneral:  {"general-1", "general-2"},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
