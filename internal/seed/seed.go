package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/taluation/internal/app/models"
	appRepos "github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/config"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/auth"
	"github.com/yigit/taluation/internal/pkg/helpers"
)

// CreateDefaultData creates the bootstrap admin account if it doesn't exist. Admins
// cannot self-register, so this is the only way the first one comes to be. Nothing
// is created when no admin password is configured.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, cfg *config.Config, lgr zerolog.Logger) error {
	seedCfg := cfg.Seed
	if seedCfg.AdminUsername == "" || seedCfg.AdminPassword == "" {
		lgr.Info().Msg("No seed admin configured, skipping default data")
		return nil
	}

	_, err := repos.AccountRepository.GetByUsername(ctx, seedCfg.AdminUsername)
	if err == nil {
		lgr.Debug().Str("username", seedCfg.AdminUsername).Msg("Admin account already present")
		return nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := auth.HashPasswordWithCost(seedCfg.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := helpers.NowUTC()
	admin := &appModels.Account{
		ID:        uuid.New().String(),
		Username:  seedCfg.AdminUsername,
		Password:  hash,
		Email:     seedCfg.AdminEmail,
		Phone:     seedCfg.AdminPhone,
		Type:      appModels.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.AccountRepository.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Warn().Str("username", admin.Username).Msg("Admin email or phone already taken, skipping seed")
			return nil
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	lgr.Info().Str("username", admin.Username).Msg("Default admin account created")
	return nil
}
