package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emocare/emocare-backend/internal/apierr"
	"github.com/emocare/emocare-backend/internal/repos"
	"github.com/emocare/emocare-backend/internal/types"
)

func newBookingService(t *testing.T) (BookingService, *bookingFixture) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	fx := &bookingFixture{
		db:           db,
		user:         seedUser(t, db, types.RoleUser, types.TierFree),
		psychologist: seedUser(t, db, types.RolePsychologist, types.TierNone),
		admin:        seedUser(t, db, types.RoleAdmin, types.TierNone),
	}
	svc := NewBookingService(db, log, repos.NewBookingRepo(db, log), repos.NewUserRepo(db, log))
	return svc, fx
}

type bookingFixture struct {
	db           *gorm.DB
	user         *types.User
	psychologist *types.User
	admin        *types.User
}

func (fx *bookingFixture) date() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestBookingCreate(t *testing.T) {
	svc, fx := newBookingService(t)
	ctx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)

	booking, err := svc.Create(ctx, fx.psychologist.ID, fx.date(), "10:00", "first session")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if booking.Status != types.BookingPending {
		t.Fatalf("status = %s, want pending", booking.Status)
	}
	if booking.UserID != fx.user.ID || booking.PsychologistID != fx.psychologist.ID {
		t.Fatalf("booking parties wrong: %+v", booking)
	}
}

func TestBookingCreateValidation(t *testing.T) {
	svc, fx := newBookingService(t)

	cases := []struct {
		name           string
		ctx            func() (uuid.UUID, types.Role, types.Tier)
		psychologistID func() uuid.UUID
		timeSlot       string
		wantCode       string
	}{
		{
			name:           "unknown psychologist",
			ctx:            func() (uuid.UUID, types.Role, types.Tier) { return fx.user.ID, types.RoleUser, types.TierFree },
			psychologistID: func() uuid.UUID { return uuid.New() },
			timeSlot:       "10:00",
			wantCode:       apierr.CodeNotFound,
		},
		{
			name:           "target is not a psychologist",
			ctx:            func() (uuid.UUID, types.Role, types.Tier) { return fx.user.ID, types.RoleUser, types.TierFree },
			psychologistID: func() uuid.UUID { return fx.admin.ID },
			timeSlot:       "10:00",
			wantCode:       apierr.CodeNotFound,
		},
		{
			name: "psychologist cannot create",
			ctx: func() (uuid.UUID, types.Role, types.Tier) {
				return fx.psychologist.ID, types.RolePsychologist, types.TierNone
			},
			psychologistID: func() uuid.UUID { return fx.psychologist.ID },
			timeSlot:       "10:00",
			wantCode:       apierr.CodeForbidden,
		},
		{
			name:           "missing time slot",
			ctx:            func() (uuid.UUID, types.Role, types.Tier) { return fx.user.ID, types.RoleUser, types.TierFree },
			psychologistID: func() uuid.UUID { return fx.psychologist.ID },
			timeSlot:       "",
			wantCode:       apierr.CodeInvalidArgument,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, role, tier := tc.ctx()
			_, err := svc.Create(ctxFor(id, role, tier), tc.psychologistID(), fx.date(), tc.timeSlot, "")
			if !apierr.IsCode(err, tc.wantCode) {
				t.Fatalf("err = %v, want code %s", err, tc.wantCode)
			}
		})
	}
}

func TestBookingLifecycle(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)
	psychCtx := ctxFor(fx.psychologist.ID, types.RolePsychologist, types.TierNone)

	booking, err := svc.Create(userCtx, fx.psychologist.ID, fx.date(), "10:00", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// pending -> confirmed by the assigned psychologist
	confirmed, err := svc.Transition(psychCtx, booking.ID, types.BookingConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != types.BookingConfirmed {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}

	// confirmed -> completed
	completed, err := svc.Transition(psychCtx, booking.ID, types.BookingCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != types.BookingCompleted {
		t.Fatalf("status = %s, want completed", completed.Status)
	}

	// completed is terminal
	_, err = svc.Cancel(userCtx, booking.ID)
	if !apierr.IsCode(err, apierr.CodeInvalidTransition) {
		t.Fatalf("cancel completed: err = %v, want invalid_transition", err)
	}
}

func TestBookingCancelAfterConfirm(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)
	psychCtx := ctxFor(fx.psychologist.ID, types.RolePsychologist, types.TierNone)

	booking, err := svc.Create(userCtx, fx.psychologist.ID, fx.date(), "14:00", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Transition(psychCtx, booking.ID, types.BookingConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	cancelled, err := svc.Cancel(userCtx, booking.ID)
	if err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
	if cancelled.Status != types.BookingCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// No completing a cancelled booking.
	if _, err := svc.Transition(psychCtx, booking.ID, types.BookingCompleted); !apierr.IsCode(err, apierr.CodeInvalidTransition) {
		t.Fatalf("complete cancelled: err = %v, want invalid_transition", err)
	}
}

func TestBookingCancelAuthorization(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)

	booking, err := svc.Create(userCtx, fx.psychologist.ID, fx.date(), "11:00", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A different user cannot cancel someone else's booking.
	stranger := ctxFor(uuid.New(), types.RoleUser, types.TierFree)
	if _, err := svc.Cancel(stranger, booking.ID); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("stranger cancel: err = %v, want forbidden", err)
	}

	// The owner can.
	cancelled, err := svc.Cancel(userCtx, booking.ID)
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if cancelled.Status != types.BookingCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancelled is terminal even for admins.
	adminCtx := ctxFor(fx.admin.ID, types.RoleAdmin, types.TierNone)
	if _, err := svc.Transition(adminCtx, booking.ID, types.BookingConfirmed); !apierr.IsCode(err, apierr.CodeInvalidTransition) {
		t.Fatalf("revive cancelled: err = %v, want invalid_transition", err)
	}
}

func TestBookingConfirmAuthorization(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)

	booking, err := svc.Create(userCtx, fx.psychologist.ID, fx.date(), "12:00", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The owning user cannot confirm their own booking.
	if _, err := svc.Transition(userCtx, booking.ID, types.BookingConfirmed); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("user confirm: err = %v, want forbidden", err)
	}

	// An unassigned psychologist cannot either.
	other := ctxFor(uuid.New(), types.RolePsychologist, types.TierNone)
	if _, err := svc.Transition(other, booking.ID, types.BookingConfirmed); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("other psychologist confirm: err = %v, want forbidden", err)
	}

	// Admins may take any legal edge.
	adminCtx := ctxFor(fx.admin.ID, types.RoleAdmin, types.TierNone)
	confirmed, err := svc.Transition(adminCtx, booking.ID, types.BookingConfirmed)
	if err != nil {
		t.Fatalf("admin confirm: %v", err)
	}
	if confirmed.Status != types.BookingConfirmed {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}
}

func TestBookingTransitionUnknownTarget(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)

	booking, err := svc.Create(userCtx, fx.psychologist.ID, fx.date(), "13:00", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Transition(userCtx, booking.ID, types.BookingStatus("archived")); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
}

func TestBookingTransitionNotFound(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)
	if _, err := svc.Cancel(userCtx, uuid.New()); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestBookingLists(t *testing.T) {
	svc, fx := newBookingService(t)
	userCtx := ctxFor(fx.user.ID, types.RoleUser, types.TierFree)
	psychCtx := ctxFor(fx.psychologist.ID, types.RolePsychologist, types.TierNone)

	for _, slot := range []string{"09:00", "10:00", "11:00"} {
		if _, err := svc.Create(userCtx, fx.psychologist.ID, fx.date(), slot, ""); err != nil {
			t.Fatalf("Create %s: %v", slot, err)
		}
	}

	mine, err := svc.ListForUser(userCtx, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("len = %d, want 3", len(mine))
	}
	for i := 1; i < len(mine); i++ {
		if mine[i-1].Time > mine[i].Time {
			t.Fatalf("bookings out of slot order: %s after %s", mine[i].Time, mine[i-1].Time)
		}
	}

	assigned, err := svc.ListForPsychologist(psychCtx, 2)
	if err != nil {
		t.Fatalf("ListForPsychologist: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("len = %d, want 2 (limit)", len(assigned))
	}

	// Role check on the psychologist listing.
	if _, err := svc.ListForPsychologist(userCtx, 0); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("user on psychologist listing: err = %v, want forbidden", err)
	}
}
