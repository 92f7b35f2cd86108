package companion

import "strings"

// CrisisPhrases are matched as case-insensitive substrings. Any match triggers the same override.
var CrisisPhrases = []string{
	"suicide",
	"kill myself",
	"end my life",
	"self harm",
	"self-harm",
	"cut myself",
	"no reason to live",
	"want to die",
	"give up on life",
}

// Disclaimer is the standing notice shown in the intro and in every crisis reply.
const Disclaimer = "I am an AI program and **not a licensed therapist or doctor**.\n" +
	"I can't diagnose, treat, or handle emergencies. " +
	"If you're in crisis, please reach out to a trusted person or local emergency services."

// CrisisMessage fully replaces the normal reply when a crisis phrase matches.
const CrisisMessage = "It sounds like you're going through something extremely painful.\n" +
	"Your safety matters. Please reach out to someone you trust or a professional.\n\n" +
	Disclaimer

// CrisisVerdict is the outcome of CheckCrisis. Message is empty unless IsCrisis.
type CrisisVerdict struct {
	IsCrisis bool
	Phrase   string
	Message  string
}

// CheckCrisis scans text for crisis phrases. It has no side effects; callers record the flag.
func CheckCrisis(text string) CrisisVerdict {
	lowered := strings.ToLower(text)
	for _, p := range CrisisPhrases {
		if strings.Contains(lowered, p) {
			return CrisisVerdict{IsCrisis: true, Phrase: p, Message: CrisisMessage}
		}
	}
	return CrisisVerdict{}
}
