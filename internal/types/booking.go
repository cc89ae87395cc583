package types

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingEdges is the full set of legal status transitions. completed and
// cancelled have no outgoing edges.
var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is a legal edge from s.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingEdges[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(bookingEdges[s]) == 0 && s.Valid()
}

// Booking is never physically deleted; cancellation is a status transition.
type Booking struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	PsychologistID uuid.UUID     `gorm:"type:uuid;not null;index;column:psychologist_id" json:"psychologist_id"`
	Date           time.Time     `gorm:"not null;column:date" json:"date"`
	Time           string        `gorm:"not null;column:time" json:"time"`
	Status         BookingStatus `gorm:"not null;column:status" json:"status"`
	Note           string        `gorm:"column:note" json:"note,omitempty"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

func (Booking) TableName() string {
	return "booking"
}
