package companion

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/theimaginaryfoundation/comfort-bot/companion/fileutils"
)

// EchoMax caps how much of the user's text is quoted back in a reflection.
const EchoMax = 160

// SafetyNote closes every non-crisis reply.
const SafetyNote = "_(Safety note: Just to remind you, I'm an AI and not a professional. " +
	"I can't diagnose or handle emergencies.)_"

var (
	baseOpeners = []string{
		"Thanks for sharing that with me.",
		"I'm glad you felt comfortable telling me this.",
		"I can see this is on your mind.",
		"It sounds like this really matters to you.",
	}
	negativeOpeners = []string{
		"It sounds like you're going through something tough.",
		"That does sound really heavy to carry on your own.",
		"It seems like things have been pretty hard lately.",
	}
	positiveOpeners = []string{
		"It sounds like there are some hopeful things happening for you.",
		"I'm happy to hear there's some positivity in how you're feeling.",
		"It seems like you're noticing some good things in your life.",
	}
	neutralOpeners = []string{
		"I hear you.",
		"Thanks for explaining what's going on.",
		"Got it, I understand what you're saying.",
	}

	// The echo template is index 0; its %s receives the cleaned text.
	validations = []string{
		"From what you said, it feels like: “%s”.",
		"You're not alone in feeling this way, even if it might feel like it.",
		"It's okay if this feels confusing or heavy.",
		"Feeling like this is completely valid.",
	}
)

const (
	negativeFollowUp = "If you feel okay sharing, what's the part that feels hardest right now?"
	positiveFollowUp = "What would you like to keep building on from these positive feelings?"
	neutralFollowUp  = "What part of this would you like to talk about a bit more?"
)

// Composer builds the four-section reply. Its random source is the only mutable state.
type Composer struct {
	catalog CopingCatalog

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewComposer uses rnd for every random pick. A nil rnd gets a randomly seeded source.
func NewComposer(catalog CopingCatalog, rnd *rand.Rand) *Composer {
	if catalog == nil {
		catalog = CopingCatalog{}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Composer{catalog: catalog, rnd: rnd}
}

// Compose returns reflection, coping suggestion, follow-up question and safety note separated by
// blank lines. No section contains a blank line itself.
func (c *Composer) Compose(text string, mood Mood) string {
	sections := []string{
		c.Reflection(text, mood),
		c.Suggestion(mood),
		FollowUp(mood),
		SafetyNote,
	}
	return strings.Join(sections, "\n\n")
}

// Reflection is a mood-specific opener followed by a validating sentence.
func (c *Composer) Reflection(text string, mood Mood) string {
	var openers []string
	switch mood {
	case MoodNegative:
		openers = negativeOpeners
	case MoodPositive:
		openers = positiveOpeners
	default:
		openers = append(append([]string{}, neutralOpeners...), baseOpeners...)
	}

	opener := c.pick(openers)
	validation := c.pick(validations)
	if strings.Contains(validation, "%s") {
		validation = fmt.Sprintf(validation, EchoText(text))
	}
	return opener + " " + validation
}

// Suggestion draws from the buckets the mood resolves to, or GenericSuggestion when they are empty.
func (c *Composer) Suggestion(mood Mood) string {
	pool := c.catalog.Suggestions(BucketsFor(mood)...)
	if len(pool) == 0 {
		return GenericSuggestion
	}
	return collapseSpace(c.pick(pool))
}

func FollowUp(mood Mood) string {
	switch mood {
	case MoodNegative:
		return negativeFollowUp
	case MoodPositive:
		return positiveFollowUp
	default:
		return neutralFollowUp
	}
}

// EchoText flattens whitespace and caps the text at EchoMax runes plus "...".
func EchoText(text string) string {
	return fileutils.Truncate(collapseSpace(text), EchoMax, "...")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (c *Composer) pick(pool []string) string {
	c.mu.Lock()
	i := c.rnd.IntN(len(pool))
	c.mu.Unlock()
	return pool[i]
}
