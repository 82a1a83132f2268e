package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/db"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/helpers"
)

// AccountService handles account lookup, profile updates and deletion
type AccountService struct {
	db     *sqlx.DB
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	database *sqlx.DB,
	repos *repositories.Repositories,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		db:     database,
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// Get returns the account called name (the actor when empty). Owners and admins
// get the full profile, everyone else the redacted projection.
func (s *AccountService) Get(ctx context.Context, actor *models.Account, name string) (interface{}, error) {
	if name == "" {
		name = actor.Username
	}

	target, err := s.repos.AccountRepository.GetByUsername(ctx, name)
	if err != nil {
		return nil, err
	}

	if appauth.CanViewFullAccount(actor, target) {
		return dto.NewAccountResponse(target), nil
	}
	return dto.NewRedactedAccountResponse(target), nil
}

// List returns every account's full profile
func (s *AccountService) List(ctx context.Context, actor *models.Account) ([]*dto.AccountResponse, error) {
	if err := s.authz.ValidateAccountListing(actor); err != nil {
		return nil, err
	}

	accounts, err := s.repos.AccountRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		result = append(result, dto.NewAccountResponse(account))
	}
	return result, nil
}

// Update changes the profile fields set in req. Renaming an account signs it out.
func (s *AccountService) Update(ctx context.Context, actor *models.Account, req *dto.UpdateAccountRequest) (*dto.AccountResponse, error) {
	username := req.Username
	if username == "" {
		username = actor.Username
	}

	target, err := s.repos.AccountRepository.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateAccountModification(actor, target); err != nil {
		return nil, err
	}

	if req.Type != "" && models.RoleType(req.Type) != target.Type {
		if err := s.authz.ValidateRoleChange(actor); err != nil {
			return nil, err
		}
		target.Type = models.RoleType(req.Type)
	}

	var newName, newEmail, newPhone string
	if req.NewName != "" && req.NewName != target.Username {
		newName = req.NewName
	}
	if req.Email != "" && req.Email != target.Email {
		newEmail = req.Email
	}
	if req.Phone != "" && req.Phone != target.Phone {
		newPhone = req.Phone
	}

	conflict, err := s.repos.AccountRepository.ExistsConflicting(ctx, newName, newEmail, newPhone, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if conflict {
		return nil, apperrors.ErrAccountAlreadyExists
	}

	oldName := target.Username
	if newName != "" {
		target.Username = newName
	}
	if newEmail != "" {
		target.Email = newEmail
	}
	if newPhone != "" {
		target.Phone = newPhone
	}
	target.UpdatedAt = helpers.NowUTC()

	err = db.WithTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repos := s.repos.WithTx(tx)
		if newName != "" {
			if _, err := repos.TokenRepository.DeleteByUsername(ctx, oldName); err != nil {
				return err
			}
		}
		return repos.AccountRepository.Update(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("actor", actor.Username).
		Str("account", oldName).
		Str("newName", target.Username).
		Msg("Account updated")
	return dto.NewAccountResponse(target), nil
}

// Delete removes the account called username (the actor when empty) along with its
// token, its classes, their evaluations and its own evaluations
func (s *AccountService) Delete(ctx context.Context, actor *models.Account, username string) error {
	if username == "" {
		username = actor.Username
	}

	target, err := s.repos.AccountRepository.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateAccountModification(actor, target); err != nil {
		return err
	}

	err = db.WithTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repos := s.repos.WithTx(tx)
		if _, err := repos.EvaluationRepository.DeleteByTeacher(ctx, target.ID); err != nil {
			return err
		}
		if _, err := repos.EvaluationRepository.DeleteByStudent(ctx, target.ID); err != nil {
			return err
		}
		if _, err := repos.ClassRepository.DeleteByTeacher(ctx, target.ID); err != nil {
			return err
		}
		if _, err := repos.TokenRepository.DeleteByUsername(ctx, target.Username); err != nil {
			return err
		}
		return repos.AccountRepository.Delete(ctx, target.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("actor", actor.Username).Str("account", target.Username).Msg("Account deleted")
	return nil
}
