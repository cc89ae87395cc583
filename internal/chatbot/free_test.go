package chatbot

import (
	"reflect"
	"testing"
)

func TestFreeResponderMatchesRules(t *testing.T) {
	cfg := DefaultConfig()
	r := NewFreeResponder(cfg)

	cases := []struct {
		name    string
		message string
		want    Rule
	}{
		{"low mood keyword", "I've been feeling really sad lately", cfg.Rules[0]},
		{"anxiety keyword", "work has me so stressed", cfg.Rules[1]},
		{"case insensitive", "SO ANXIOUS today", cfg.Rules[1]},
		{"no match falls back", "the weather is fine", cfg.Fallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Respond(tc.message, nil)
			if got.Text != tc.want.Reply {
				t.Fatalf("text = %q, want %q", got.Text, tc.want.Reply)
			}
			if !reflect.DeepEqual(got.Suggestions, tc.want.Suggestions) {
				t.Fatalf("suggestions = %v, want %v", got.Suggestions, tc.want.Suggestions)
			}
		})
	}
}

func TestFreeResponderIgnoresHistory(t *testing.T) {
	r := NewFreeResponder(DefaultConfig())
	msg := "feeling sad again"

	histories := [][]Turn{
		nil,
		{},
		{{Sender: "user", Content: "I was sad yesterday"}, {Sender: "bot", Content: "I'm sorry to hear that"}},
		{{Sender: "user", Content: "everything is great"}},
	}
	first := r.Respond(msg, histories[0])
	for i, h := range histories[1:] {
		got := r.Respond(msg, h)
		if got.Text != first.Text || !reflect.DeepEqual(got.Suggestions, first.Suggestions) {
			t.Fatalf("history %d changed the reply: got %+v, want %+v", i+1, got, first)
		}
	}
}
