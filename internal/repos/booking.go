package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/types"
)

type BookingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, bookings []*types.Booking) ([]*types.Booking, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, bookingIDs []uuid.UUID) ([]*types.Booking, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Booking, error)
	ListByPsychologistID(ctx context.Context, tx *gorm.DB, psychologistID uuid.UUID, limit int) ([]*types.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status types.BookingStatus) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
}

type bookingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookingRepo(db *gorm.DB, baseLog *logger.Logger) BookingRepo {
	repoLog := baseLog.With("repo", "BookingRepo")
	return &bookingRepo{db: db, log: repoLog}
}

func (br *bookingRepo) Create(ctx context.Context, tx *gorm.DB, bookings []*types.Booking) ([]*types.Booking, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if len(bookings) == 0 {
		return []*types.Booking{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (br *bookingRepo) GetByIDs(ctx context.Context, tx *gorm.DB, bookingIDs []uuid.UUID) ([]*types.Booking, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var results []*types.Booking
	if len(bookingIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", bookingIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookingRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Booking, error) {
	return br.list(ctx, tx, "user_id = ?", userID, limit)
}

func (br *bookingRepo) ListByPsychologistID(ctx context.Context, tx *gorm.DB, psychologistID uuid.UUID, limit int) ([]*types.Booking, error) {
	return br.list(ctx, tx, "psychologist_id = ?", psychologistID, limit)
}

func (br *bookingRepo) list(ctx context.Context, tx *gorm.DB, cond string, id uuid.UUID, limit int) ([]*types.Booking, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	q := transaction.WithContext(ctx).
		Where(cond, id).
		Order("date, time")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.Booking
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status types.BookingStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

func (br *bookingRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Booking{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (br *bookingRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Booking{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
