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

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	// UpgradeTier moves a plain user from free to gold. Idempotent.
	UpgradeTier(ctx context.Context) (*types.User, error)
	ListPsychologists(ctx context.Context) ([]*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("user not found"))
	}
	return users[0], nil
}

func (us *userService) UpgradeTier(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.Authenticated() {
		return nil, apierr.Unauthenticated(fmt.Errorf("no principal in context"))
	}
	if rd.Role != types.RoleUser {
		return nil, apierr.Forbidden(fmt.Errorf("only plain users carry a tier"))
	}
	var upgraded *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.UserID})
		if err != nil {
			return apierr.Persistence(fmt.Errorf("load user: %w", err))
		}
		if len(users) == 0 {
			return apierr.NotFound(fmt.Errorf("user not found"))
		}
		upgraded = users[0]
		if upgraded.Tier == types.TierGold {
			return nil
		}
		if err := us.userRepo.UpdateTier(ctx, tx, rd.UserID, types.TierGold); err != nil {
			return apierr.Persistence(fmt.Errorf("update tier: %w", err))
		}
		upgraded.Tier = types.TierGold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return upgraded, nil
}

func (us *userService) ListPsychologists(ctx context.Context) ([]*types.User, error) {
	psychologists, err := us.userRepo.ListByRole(ctx, nil, types.RolePsychologist)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list psychologists: %w", err))
	}
	return psychologists, nil
}
