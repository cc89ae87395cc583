package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/requestdata"
	"github.com/emocare/emocare-backend/internal/types"
)

type AnalyticsService interface {
	AdminAnalytics(ctx context.Context) (*types.AnalyticsData, error)
}

type analyticsService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	bookingRepo repos.BookingRepo
	entryRepo   repos.EmotionEntryRepo
	messageRepo repos.ChatMessageRepo
}

func NewAnalyticsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	bookingRepo repos.BookingRepo,
	entryRepo repos.EmotionEntryRepo,
	messageRepo repos.ChatMessageRepo,
) AnalyticsService {
	serviceLog := baseLog.With("service", "AnalyticsService")
	return &analyticsService{
		db:          db,
		log:         serviceLog,
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		entryRepo:   entryRepo,
		messageRepo: messageRepo,
	}
}

// AdminAnalytics fans out the four independent counts concurrently; each is a
// single read, so no transaction spans them.
func (s *analyticsService) AdminAnalytics(ctx context.Context) (*types.AnalyticsData, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if rd.Role != types.RoleAdmin {
		return nil, apierr.Forbidden(fmt.Errorf("admin role required"))
	}

	data := &types.AnalyticsData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.userRepo.Count(gctx, nil)
		data.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.bookingRepo.Count(gctx, nil)
		data.TotalBookings = n
		return err
	})
	g.Go(func() error {
		n, err := s.entryRepo.Count(gctx, nil)
		data.TotalEmotionEntries = n
		return err
	})
	g.Go(func() error {
		n, err := s.messageRepo.Count(gctx, nil)
		data.TotalChatMessages = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.Persistence(fmt.Errorf("aggregate counts: %w", err))
	}

	byStatus, err := s.bookingRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("partition bookings: %w", err))
	}
	data.BookingsByStatus = byStatus
	return data, nil
}
