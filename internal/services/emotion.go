package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/requestdata"
	"github.com/emocare/emocare-backend/internal/types"
)

type EmotionService interface {
	CreateEntry(ctx context.Context, level int, note string) (*types.EmotionEntry, error)
	ListEntries(ctx context.Context, limit int) ([]*types.EmotionEntry, error)
	// Stats partitions the caller's entries into the five levels. The buckets
	// always sum to Total; zero rows yield zero-valued buckets.
	Stats(ctx context.Context) (*types.EmotionStats, error)
}

type emotionService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.EmotionEntryRepo
}

func NewEmotionService(db *gorm.DB, baseLog *logger.Logger, entryRepo repos.EmotionEntryRepo) EmotionService {
	serviceLog := baseLog.With("service", "EmotionService")
	return &emotionService{db: db, log: serviceLog, entryRepo: entryRepo}
}

func (es *emotionService) CreateEntry(ctx context.Context, level int, note string) (*types.EmotionEntry, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if rd.Role != types.RoleUser {
		return nil, apierr.Forbidden(fmt.Errorf("only users log emotion entries"))
	}
	if level < types.EmotionLevelMin || level > types.EmotionLevelMax {
		return nil, apierr.InvalidArgument(fmt.Errorf("level must be between %d and %d", types.EmotionLevelMin, types.EmotionLevelMax))
	}
	entry := &types.EmotionEntry{
		ID:     uuid.New(),
		UserID: rd.UserID,
		Level:  level,
		Note:   note,
	}
	if _, err := es.entryRepo.Create(ctx, nil, []*types.EmotionEntry{entry}); err != nil {
		return nil, apierr.Persistence(fmt.Errorf("create entry: %w", err))
	}
	return entry, nil
}

func (es *emotionService) ListEntries(ctx context.Context, limit int) ([]*types.EmotionEntry, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	entries, err := es.entryRepo.ListByUserID(ctx, nil, rd.UserID, limit)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list entries: %w", err))
	}
	return entries, nil
}

func (es *emotionService) Stats(ctx context.Context) (*types.EmotionStats, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	counts, err := es.entryRepo.CountByLevel(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("count by level: %w", err))
	}
	stats := &types.EmotionStats{
		Level1: counts[1],
		Level2: counts[2],
		Level3: counts[3],
		Level4: counts[4],
		Level5: counts[5],
	}
	stats.Total = stats.Level1 + stats.Level2 + stats.Level3 + stats.Level4 + stats.Level5
	return stats, nil
}
