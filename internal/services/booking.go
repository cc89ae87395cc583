package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/requestdata"
	"github.com/emocare/emocare-backend/internal/types"
)

// BookingService owns the booking state machine. Who may request which edge
// is a precondition checked here, not by the state machine itself:
// cancel belongs to the owning user, confirm/complete to the assigned
// psychologist; admins may do either.
type BookingService interface {
	Create(ctx context.Context, psychologistID uuid.UUID, date time.Time, timeSlot, note string) (*types.Booking, error)
	Transition(ctx context.Context, bookingID uuid.UUID, target types.BookingStatus) (*types.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*types.Booking, error)
	ListForUser(ctx context.Context, limit int) ([]*types.Booking, error)
	ListForPsychologist(ctx context.Context, limit int) ([]*types.Booking, error)
}

type bookingService struct {
	db          *gorm.DB
	log         *logger.Logger
	bookingRepo repos.BookingRepo
	userRepo    repos.UserRepo
}

func NewBookingService(db *gorm.DB, baseLog *logger.Logger, bookingRepo repos.BookingRepo, userRepo repos.UserRepo) BookingService {
	serviceLog := baseLog.With("service", "BookingService")
	return &bookingService{db: db, log: serviceLog, bookingRepo: bookingRepo, userRepo: userRepo}
}

func (bs *bookingService) Create(ctx context.Context, psychologistID uuid.UUID, date time.Time, timeSlot, note string) (*types.Booking, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if rd.Role != types.RoleUser {
		return nil, apierr.Forbidden(fmt.Errorf("only users can create bookings"))
	}
	if psychologistID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("psychologist id is required"))
	}
	if date.IsZero() || timeSlot == "" {
		return nil, apierr.InvalidArgument(fmt.Errorf("date and time are required"))
	}

	psychologists, err := bs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{psychologistID})
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve psychologist: %w", err))
	}
	if len(psychologists) == 0 || psychologists[0].Role != types.RolePsychologist {
		return nil, apierr.NotFound(fmt.Errorf("psychologist not found"))
	}

	// No overlap check: two bookings for the same psychologist/date/time are
	// allowed, matching the behavior this service replaces.
	booking := &types.Booking{
		ID:             uuid.New(),
		UserID:         rd.UserID,
		PsychologistID: psychologistID,
		Date:           date,
		Time:           timeSlot,
		Status:         types.BookingPending,
		Note:           note,
	}
	if _, err := bs.bookingRepo.Create(ctx, nil, []*types.Booking{booking}); err != nil {
		return nil, apierr.Persistence(fmt.Errorf("create booking: %w", err))
	}
	return booking, nil
}

func (bs *bookingService) Transition(ctx context.Context, bookingID uuid.UUID, target types.BookingStatus) (*types.Booking, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if !target.Valid() {
		return nil, apierr.InvalidArgument(fmt.Errorf("unknown status %q", target))
	}

	var updated *types.Booking
	// Read-then-write in one transaction so the edge check observes the
	// latest persisted status.
	err := bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings, err := bs.bookingRepo.GetByIDs(ctx, tx, []uuid.UUID{bookingID})
		if err != nil {
			return apierr.Persistence(fmt.Errorf("load booking: %w", err))
		}
		if len(bookings) == 0 {
			return apierr.NotFound(fmt.Errorf("booking not found"))
		}
		booking := bookings[0]

		if !booking.Status.CanTransitionTo(target) {
			return apierr.InvalidTransition(fmt.Errorf("cannot move booking from %s to %s", booking.Status, target))
		}
		if err := bs.authorizeEdge(rd, booking, target); err != nil {
			return err
		}

		if err := bs.bookingRepo.UpdateStatus(ctx, tx, booking.ID, target); err != nil {
			return apierr.Persistence(fmt.Errorf("update booking status: %w", err))
		}
		booking.Status = target
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (bs *bookingService) Cancel(ctx context.Context, bookingID uuid.UUID) (*types.Booking, error) {
	return bs.Transition(ctx, bookingID, types.BookingCancelled)
}

// authorizeEdge checks the actor against the requested edge.
func (bs *bookingService) authorizeEdge(rd *requestdata.RequestData, booking *types.Booking, target types.BookingStatus) error {
	if rd.Role == types.RoleAdmin {
		return nil
	}
	switch target {
	case types.BookingCancelled:
		if rd.UserID == booking.UserID {
			return nil
		}
		return apierr.Forbidden(fmt.Errorf("only the booking owner can cancel"))
	case types.BookingConfirmed, types.BookingCompleted:
		if rd.Role == types.RolePsychologist && rd.UserID == booking.PsychologistID {
			return nil
		}
		return apierr.Forbidden(fmt.Errorf("only the assigned psychologist can %s a booking", target))
	default:
		return apierr.Forbidden(fmt.Errorf("no actor may set status %s", target))
	}
}

func (bs *bookingService) ListForUser(ctx context.Context, limit int) ([]*types.Booking, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	bookings, err := bs.bookingRepo.ListByUserID(ctx, nil, rd.UserID, limit)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list bookings: %w", err))
	}
	return bookings, nil
}

func (bs *bookingService) ListForPsychologist(ctx context.Context, limit int) ([]*types.Booking, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if rd.Role != types.RolePsychologist {
		return nil, apierr.Forbidden(fmt.Errorf("only psychologists can list assigned bookings"))
	}
	bookings, err := bs.bookingRepo.ListByPsychologistID(ctx, nil, rd.UserID, limit)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list bookings: %w", err))
	}
	return bookings, nil
}
