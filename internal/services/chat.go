package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/chatbot"
	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/requestdata"
	"github.com/emocare/emocare-backend/internal/types"
)

// UsageCounter feeds the free-tier upsell signal. The redis client satisfies
// this; MemoryUsageCounter is the fallback when redis is not configured.
type UsageCounter interface {
	Incr(ctx context.Context, userID uuid.UUID) (int64, error)
}

type MemoryUsageCounter struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int64
}

func NewMemoryUsageCounter() *MemoryUsageCounter {
	return &MemoryUsageCounter{counts: make(map[uuid.UUID]int64)}
}

func (m *MemoryUsageCounter) Incr(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID]++
	return m.counts[userID], nil
}

type ChatService interface {
	// SendMessage persists the user turn and the bot turn atomically and
	// returns both. If the bot write fails, neither message survives.
	SendMessage(ctx context.Context, content string) (*types.ChatMessage, *types.ChatMessage, []string, error)
	ListMessages(ctx context.Context, limit int) ([]*types.ChatMessage, error)
}

type chatService struct {
	db            *gorm.DB
	log           *logger.Logger
	messageRepo   repos.ChatMessageRepo
	freeResponder chatbot.Responder
	goldResponder chatbot.Responder
	cfg           chatbot.Config
	usage         UsageCounter
}

func NewChatService(
	db *gorm.DB,
	baseLog *logger.Logger,
	messageRepo repos.ChatMessageRepo,
	freeResponder chatbot.Responder,
	goldResponder chatbot.Responder,
	cfg chatbot.Config,
	usage UsageCounter,
) ChatService {
	serviceLog := baseLog.With("service", "ChatService")
	if usage == nil {
		usage = NewMemoryUsageCounter()
	}
	return &chatService{
		db:            db,
		log:           serviceLog,
		messageRepo:   messageRepo,
		freeResponder: freeResponder,
		goldResponder: goldResponder,
		cfg:           cfg,
		usage:         usage,
	}
}

func (cs *chatService) SendMessage(ctx context.Context, content string) (*types.ChatMessage, *types.ChatMessage, []string, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, nil, nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if content == "" {
		return nil, nil, nil, apierr.InvalidArgument(fmt.Errorf("message content is required"))
	}

	gold := rd.Tier == types.TierGold

	// The history window is assembled from prior persisted turns, before this
	// message is written. Free-tier responses never see it.
	var history []chatbot.Turn
	if gold {
		recent, err := cs.messageRepo.ListRecentByUserID(ctx, nil, rd.UserID, cs.cfg.HistoryWindow)
		if err != nil {
			return nil, nil, nil, apierr.Persistence(fmt.Errorf("load history: %w", err))
		}
		history = toTurns(recent)
	}

	var reply chatbot.Reply
	if gold {
		reply = cs.goldResponder.Respond(content, history)
	} else {
		reply = cs.freeResponder.Respond(content, nil)
		count, err := cs.usage.Incr(ctx, rd.UserID)
		if err != nil {
			cs.log.Warn("Usage counter failed, skipping upsell signal", "error", err)
		} else if cs.cfg.UpsellAfter > 0 && count >= int64(cs.cfg.UpsellAfter) {
			reply.Suggestions = append(reply.Suggestions, cs.cfg.UpsellSuggestion)
		}
	}

	suggestionsJSON, err := json.Marshal(reply.Suggestions)
	if err != nil {
		return nil, nil, nil, apierr.Persistence(fmt.Errorf("encode suggestions: %w", err))
	}

	userMsg := &types.ChatMessage{
		ID:       uuid.New(),
		UserID:   rd.UserID,
		SenderID: rd.UserID,
		Type:     types.ChatMessageUser,
		Content:  content,
	}
	botMsg := &types.ChatMessage{
		ID:          uuid.New(),
		UserID:      rd.UserID,
		SenderID:    uuid.Nil,
		Type:        types.ChatMessageBot,
		Content:     reply.Text,
		Suggestions: datatypes.JSON(suggestionsJSON),
	}

	// Both turns commit or neither does; the transcript never shows a user
	// message whose response was silently dropped.
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.messageRepo.Create(ctx, tx, []*types.ChatMessage{userMsg}); err != nil {
			return fmt.Errorf("persist user message: %w", err)
		}
		if _, err := cs.messageRepo.Create(ctx, tx, []*types.ChatMessage{botMsg}); err != nil {
			return fmt.Errorf("persist bot message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, apierr.Persistence(err)
	}
	return userMsg, botMsg, reply.Suggestions, nil
}

func (cs *chatService) ListMessages(ctx context.Context, limit int) ([]*types.ChatMessage, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	messages, err := cs.messageRepo.ListByUserID(ctx, nil, rd.UserID, limit)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list messages: %w", err))
	}
	return messages, nil
}

// toTurns converts newest-first rows into an oldest-first turn window.
func toTurns(recent []*types.ChatMessage) []chatbot.Turn {
	turns := make([]chatbot.Turn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		turns = append(turns, chatbot.Turn{
			Sender:  string(recent[i].Type),
			Content: recent[i].Content,
		})
	}
	return turns
}
