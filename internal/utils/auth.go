package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/emocare/emocare-backend/internal/normalization"
	"github.com/emocare/emocare-backend/internal/types"
)

func NormalizeUserFields(user *types.User) {
	user.Email = normalization.ParseEmail(user.Email)
	user.FirstName = normalization.ParseInputString(user.FirstName)
	user.LastName = normalization.ParseInputString(user.LastName)
	user.Specialization = normalization.ParseInputString(user.Specialization)
	// tier only exists for plain users
	if user.Role != types.RoleUser {
		user.Tier = types.TierNone
	} else if user.Tier == types.TierNone {
		user.Tier = types.TierFree
	}
}

func ValidateRegistration(user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given")
	}
	if user.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	if user.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	if user.FirstName == "" {
		return fmt.Errorf("a first name is required to register")
	}
	if user.LastName == "" {
		return fmt.Errorf("a last name is required to register")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role %q", user.Role)
	}
	if user.Role == types.RoleAdmin {
		return fmt.Errorf("admin accounts cannot be self-registered")
	}
	return nil
}

func HashPassword(user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	return nil
}
