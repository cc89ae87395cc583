package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/types"
)

type EmotionEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.EmotionEntry) ([]*types.EmotionEntry, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.EmotionEntry, error)
	CountByLevel(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[int]int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type emotionEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmotionEntryRepo(db *gorm.DB, baseLog *logger.Logger) EmotionEntryRepo {
	repoLog := baseLog.With("repo", "EmotionEntryRepo")
	return &emotionEntryRepo{db: db, log: repoLog}
}

func (er *emotionEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.EmotionEntry) ([]*types.EmotionEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(entries) == 0 {
		return []*types.EmotionEntry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (er *emotionEntryRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.EmotionEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.EmotionEntry
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *emotionEntryRepo) CountByLevel(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[int]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var rows []struct {
		Level int
		Count int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.EmotionEntry{}).
		Select("level, count(*) as count").
		Where("user_id = ?", userID).
		Group("level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Level] = row.Count
	}
	return out, nil
}

func (er *emotionEntryRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.EmotionEntry{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
