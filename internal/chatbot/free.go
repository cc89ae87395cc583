package chatbot

// FreeResponder answers from the rule set alone. Its output is a pure
// function of the message; the history argument is never consulted.
type FreeResponder struct {
	cfg Config
}

func NewFreeResponder(cfg Config) *FreeResponder {
	return &FreeResponder{cfg: cfg}
}

func (r *FreeResponder) Respond(message string, _ []Turn) Reply {
	if rule, ok := matchRule(r.cfg, message); ok {
		return Reply{Text: rule.Reply, Suggestions: append([]string(nil), rule.Suggestions...)}
	}
	fb := r.cfg.Fallback
	return Reply{Text: fb.Reply, Suggestions: append([]string(nil), fb.Suggestions...)}
}
