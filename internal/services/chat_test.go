package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/chatbot"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/types"
)

// recordingResponder captures the history it was handed.
type recordingResponder struct {
	reply     chatbot.Reply
	histories [][]chatbot.Turn
}

func (r *recordingResponder) Respond(_ string, history []chatbot.Turn) chatbot.Reply {
	r.histories = append(r.histories, history)
	return r.reply
}

// failSecondCreateRepo delegates to the real repo but fails the second Create
// inside a single request, which is the bot turn.
type failSecondCreateRepo struct {
	repos.ChatMessageRepo
	calls int
}

func (f *failSecondCreateRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.ChatMessage) ([]*types.ChatMessage, error) {
	f.calls++
	if f.calls == 2 {
		return nil, fmt.Errorf("simulated write failure")
	}
	return f.ChatMessageRepo.Create(ctx, tx, messages)
}

func TestChatSendMessageDualWrite(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	cfg := chatbot.DefaultConfig()
	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log),
		chatbot.NewFreeResponder(cfg), chatbot.NewGoldResponder(cfg), cfg, nil)

	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)
	userMsg, botMsg, _, err := svc.SendMessage(ctx, "I feel sad today")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if userMsg.Type != types.ChatMessageUser || botMsg.Type != types.ChatMessageBot {
		t.Fatalf("turn types wrong: %s / %s", userMsg.Type, botMsg.Type)
	}
	if botMsg.SenderID != uuid.Nil {
		t.Fatalf("bot sender = %s, want nil uuid", botMsg.SenderID)
	}

	var count int64
	if err := db.Model(&types.ChatMessage{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("persisted %d messages, want 2", count)
	}
}

func TestChatSendMessageRollsBackOnBotWriteFailure(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	cfg := chatbot.DefaultConfig()
	repo := &failSecondCreateRepo{ChatMessageRepo: repos.NewChatMessageRepo(db, log)}
	svc := NewChatService(db, log, repo,
		chatbot.NewFreeResponder(cfg), chatbot.NewGoldResponder(cfg), cfg, nil)

	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)
	_, _, _, err := svc.SendMessage(ctx, "hello")
	if !apierr.IsCode(err, apierr.CodePersistence) {
		t.Fatalf("err = %v, want persistence_failure", err)
	}

	// Neither turn survives; the transcript holds no orphaned user message.
	var count int64
	if err := db.Model(&types.ChatMessage{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("persisted %d messages after rollback, want 0", count)
	}
}

func TestChatFreeTierNeverSeesHistory(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	cfg := chatbot.DefaultConfig()
	free := &recordingResponder{reply: chatbot.Reply{Text: "ok"}}
	gold := &recordingResponder{reply: chatbot.Reply{Text: "ok"}}
	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log), free, gold, cfg, nil)

	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)
	for i := 0; i < 3; i++ {
		if _, _, _, err := svc.SendMessage(ctx, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("SendMessage %d: %v", i, err)
		}
	}
	if len(gold.histories) != 0 {
		t.Fatalf("gold responder invoked for a free principal")
	}
	for i, h := range free.histories {
		if h != nil {
			t.Fatalf("free responder got history on call %d: %v", i, h)
		}
	}
}

func TestChatGoldTierHistoryWindow(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierGold)
	cfg := chatbot.DefaultConfig()
	cfg.HistoryWindow = 4
	gold := &recordingResponder{reply: chatbot.Reply{Text: "ok"}}
	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log),
		chatbot.NewFreeResponder(cfg), gold, cfg, nil)

	ctx := ctxFor(user.ID, types.RoleUser, types.TierGold)
	for i := 0; i < 4; i++ {
		if _, _, _, err := svc.SendMessage(ctx, fmt.Sprintf("turn %d", i)); err != nil {
			t.Fatalf("SendMessage %d: %v", i, err)
		}
	}

	last := gold.histories[len(gold.histories)-1]
	if len(last) != cfg.HistoryWindow {
		t.Fatalf("window size = %d, want %d", len(last), cfg.HistoryWindow)
	}
	// Oldest first within the window.
	for i := 1; i < len(last); i++ {
		if last[i-1].Content > last[i].Content && last[i-1].Sender == last[i].Sender {
			t.Fatalf("window not oldest-first: %v", last)
		}
	}
}

func TestChatFreeTierUpsellAfterThreshold(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	cfg := chatbot.DefaultConfig()
	cfg.UpsellAfter = 2
	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log),
		chatbot.NewFreeResponder(cfg), chatbot.NewGoldResponder(cfg), cfg, NewMemoryUsageCounter())

	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)

	_, _, first, err := svc.SendMessage(ctx, "hello there")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if containsSuggestion(first, cfg.UpsellSuggestion) {
		t.Fatalf("upsell present before threshold: %v", first)
	}

	_, _, second, err := svc.SendMessage(ctx, "hello again")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !containsSuggestion(second, cfg.UpsellSuggestion) {
		t.Fatalf("upsell missing at threshold: %v", second)
	}
}

func containsSuggestion(suggestions []string, want string) bool {
	for _, s := range suggestions {
		if strings.Contains(s, want) {
			return true
		}
	}
	return false
}

func TestChatListMessagesOrderedAndScoped(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	other := seedUser(t, db, types.RoleUser, types.TierFree)
	cfg := chatbot.DefaultConfig()
	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log),
		chatbot.NewFreeResponder(cfg), chatbot.NewGoldResponder(cfg), cfg, nil)

	userCtx := ctxFor(user.ID, types.RoleUser, types.TierFree)
	otherCtx := ctxFor(other.ID, types.RoleUser, types.TierFree)

	if _, _, _, err := svc.SendMessage(userCtx, "mine"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, _, _, err := svc.SendMessage(otherCtx, "theirs"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	messages, err := svc.ListMessages(userCtx, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("len = %d, want 2 (one exchange)", len(messages))
	}
	if messages[0].Type != types.ChatMessageUser || messages[1].Type != types.ChatMessageBot {
		t.Fatalf("conversation out of order: %s, %s", messages[0].Type, messages[1].Type)
	}
	for _, m := range messages {
		if m.UserID != user.ID {
			t.Fatalf("leaked message for %s", m.UserID)
		}
	}
}

func TestChatSendMessageValidation(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	user := seedUser(t, db, types.RoleUser, types.TierFree)
	cfg := chatbot.DefaultConfig()
	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log),
		chatbot.NewFreeResponder(cfg), chatbot.NewGoldResponder(cfg), cfg, nil)

	if _, _, _, err := svc.SendMessage(context.Background(), "hi"); !apierr.IsCode(err, apierr.CodeUnauthenticated) {
		t.Fatalf("no principal: err = %v, want unauthenticated", err)
	}
	ctx := ctxFor(user.ID, types.RoleUser, types.TierFree)
	if _, _, _, err := svc.SendMessage(ctx, ""); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("empty content: err = %v, want invalid_argument", err)
	}
}
