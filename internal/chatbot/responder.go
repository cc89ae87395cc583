package chatbot

import "strings"

// Turn is one prior conversation turn handed to a responder as context.
type Turn struct {
	Sender  string // "user" or "bot"
	Content string
}

type Reply struct {
	Text        string
	Suggestions []string
}

// Responder turns an inbound message (plus optional history) into a reply.
type Responder interface {
	Respond(message string, history []Turn) Reply
}

// matchRule returns the first rule whose keyword occurs in the message.
func matchRule(cfg Config, message string) (Rule, bool) {
	lowered := strings.ToLower(message)
	for _, rule := range cfg.Rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}
