package types

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleUser         Role = "user"
	RolePsychologist Role = "psychologist"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RolePsychologist:
		return true
	}
	return false
}

type Tier string

const (
	TierFree Tier = "free"
	TierGold Tier = "gold"
	// TierNone marks principals whose role carries no tier (admins, psychologists).
	TierNone Tier = ""
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password       string    `gorm:"not null;column:password" json:"-"`
	FirstName      string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string    `gorm:"not null;column:last_name" json:"last_name"`
	Role           Role      `gorm:"not null;column:role" json:"role"`
	Tier           Tier      `gorm:"column:tier" json:"tier,omitempty"`
	Specialization string    `gorm:"column:specialization" json:"specialization,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
