package chatbot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emocare/emocare-backend/internal/logger"
)

// Config holds the rule set driving both responders. The trigger policy for
// the free-tier upsell and the gold-tier history window are configuration,
// not hardwired behavior.
type Config struct {
	// HistoryWindow is the number of most recent prior turns handed to the
	// gold responder, oldest first.
	HistoryWindow int `yaml:"history_window"`
	// UpsellAfter is the free-tier message count after which every response
	// carries the upsell suggestion. 0 disables the signal.
	UpsellAfter      int    `yaml:"upsell_after"`
	UpsellSuggestion string `yaml:"upsell_suggestion"`
	Rules            []Rule `yaml:"rules"`
	Fallback         Rule   `yaml:"fallback"`
}

type Rule struct {
	Keywords    []string `yaml:"keywords"`
	Reply       string   `yaml:"reply"`
	Suggestions []string `yaml:"suggestions"`
}

// DefaultConfig is the compiled-in rule set used when no YAML file is present.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:    10,
		UpsellAfter:      5,
		UpsellSuggestion: "Upgrade to Gold for deeper, history-aware conversations",
		Rules: []Rule{
			{
				Keywords: []string{"sad", "down", "low", "unhappy", "depressed"},
				Reply:    "I'm sorry you're feeling low. Would you like to note what happened today?",
				Suggestions: []string{
					"Log today's mood",
					"Try a short breathing exercise",
				},
			},
			{
				Keywords: []string{"anxious", "anxiety", "worried", "nervous", "stress", "stressed"},
				Reply:    "Feeling anxious is hard. A slow breath in for four counts and out for six can help right now.",
				Suggestions: []string{
					"Try a grounding exercise",
					"Write down what's worrying you",
				},
			},
			{
				Keywords: []string{"sleep", "tired", "insomnia", "exhausted"},
				Reply:    "Rest matters a lot for mood. Keeping a regular sleep window can make a real difference.",
				Suggestions: []string{
					"Log your sleep in tonight's entry",
				},
			},
			{
				Keywords: []string{"happy", "good", "great", "better"},
				Reply:    "That's lovely to hear. Noting what made today good helps you find it again later.",
				Suggestions: []string{
					"Log today's mood",
				},
			},
			{
				Keywords: []string{"help", "talk", "psychologist", "therapist", "appointment"},
				Reply:    "Talking to a professional can really help. You can browse psychologists and book a session here.",
				Suggestions: []string{
					"Browse psychologists",
					"Book an appointment",
				},
			},
		},
		Fallback: Rule{
			Reply: "Thank you for sharing. How are you feeling right now, on a scale of 1 to 5?",
			Suggestions: []string{
				"Log today's mood",
			},
		},
	}
}

// LoadConfig reads the rule set from path, falling back to the compiled-in
// defaults when the file is absent. A present-but-broken file is an error.
func LoadConfig(path string, log *logger.Logger) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if log != nil {
				log.Info("Chatbot config file not found, using defaults", "path", path)
			}
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read chatbot config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse chatbot config: %w", err)
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultConfig().HistoryWindow
	}
	return cfg, nil
}
