package chatbot

import "strings"

// lowMoodKeywords drive the persistence check across the history window.
var lowMoodKeywords = []string{
	"sad", "down", "low", "unhappy", "depressed",
	"anxious", "anxiety", "worried", "hopeless",
}

// GoldResponder answers with the bounded window of prior turns as context.
// History arrives oldest first; only user turns are inspected.
type GoldResponder struct {
	cfg Config
}

func NewGoldResponder(cfg Config) *GoldResponder {
	return &GoldResponder{cfg: cfg}
}

func (r *GoldResponder) Respond(message string, history []Turn) Reply {
	rule, matched := matchRule(r.cfg, message)
	if !matched {
		rule = r.cfg.Fallback
	}
	reply := Reply{Text: rule.Reply, Suggestions: append([]string(nil), rule.Suggestions...)}

	if lowMoodStreak(message, history) {
		reply.Text = "I've noticed you've mentioned feeling low a few times recently. " + reply.Text
		reply.Suggestions = append(reply.Suggestions, "Consider booking a session with a psychologist")
	}

	return Reply{Text: reply.Text, Suggestions: dedupe(reply.Suggestions)}
}

// lowMoodStreak reports whether the current message plus the window contain at
// least two user turns with low-mood language.
func lowMoodStreak(message string, history []Turn) bool {
	count := 0
	if containsLowMood(message) {
		count++
	}
	for _, turn := range history {
		if turn.Sender != "user" {
			continue
		}
		if containsLowMood(turn.Content) {
			count++
		}
		if count >= 2 {
			return true
		}
	}
	return count >= 2
}

func containsLowMood(s string) bool {
	lowered := strings.ToLower(s)
	for _, kw := range lowMoodKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
