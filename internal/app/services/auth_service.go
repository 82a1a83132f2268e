package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/db"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/auth"
	"github.com/yigit/taluation/internal/pkg/helpers"
	"github.com/yigit/taluation/internal/pkg/validation"
)

// Auth failures reported to the caller
var (
	// ErrInvalidLogin is shared by unknown usernames and wrong passwords
	ErrInvalidLogin      = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid password.")
	ErrPasswordTooShort  = apperrors.NewCustomError(apperrors.ErrPasswordTooShort, "Password too short.")
	ErrPasswordTooLong   = apperrors.NewValidationError("Password too long.")
	ErrAdminRegistration = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "Cannot register an admin account.")
)

// AuthService handles authentication operations
type AuthService struct {
	db           *sqlx.DB
	repos        *repositories.Repositories
	tokenIssuer  *auth.TokenIssuer
	passwordCost int
	logger       zerolog.Logger

	// dummyHash is compared on unknown usernames so both login failures cost a bcrypt round
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	database *sqlx.DB,
	repos *repositories.Repositories,
	tokenIssuer *auth.TokenIssuer,
	passwordCost int,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		db:           database,
		repos:        repos,
		tokenIssuer:  tokenIssuer,
		passwordCost: passwordCost,
		logger:       logger,
	}
}

// Register creates a new student or teacher account
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RecordResponse, error) {
	role := models.RoleStudent
	if req.Type != "" {
		role = models.RoleType(req.Type)
	}
	if role == models.RoleAdmin {
		s.logger.Warn().Str("username", req.Username).Msg("Rejected admin self-registration")
		return nil, ErrAdminRegistration
	}

	exists, err := s.repos.AccountRepository.ExistsConflicting(ctx, req.Username, req.Email, req.Phone, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAccountAlreadyExists
	}

	if err := checkPasswordLength(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPasswordWithCost(req.Password, s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := helpers.NowUTC()
	account := &models.Account{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Password:  hash,
		Email:     req.Email,
		Phone:     req.Phone,
		Type:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The constraint still catches a concurrent registration that slipped past the check
	if err := s.repos.AccountRepository.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", account.Username).Str("type", string(role)).Msg("Account registered")
	return &dto.RecordResponse{ID: account.ID}, nil
}

// Login verifies the password and replaces the account's token with a new one
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.repos.AccountRepository.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			auth.CheckPassword(s.unknownUserHash(), req.Password)
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if !auth.CheckPassword(account.Password, req.Password) {
		s.logger.Info().Str("username", req.Username).Msg("Login failed")
		return nil, ErrInvalidLogin
	}

	token, err := s.tokenIssuer.Issue(account.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	err = db.WithTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repos := s.repos.WithTx(tx)
		if _, err := repos.TokenRepository.DeleteByUsername(ctx, account.Username); err != nil {
			return err
		}
		return repos.TokenRepository.Create(ctx, account.Username, token)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.Info().Str("username", account.Username).Msg("Login successful")
	return &dto.LoginResponse{Token: token}, nil
}

// Logout deletes the caller's token
func (s *AuthService) Logout(ctx context.Context) error {
	identity, ok := appauth.FromContext(ctx)
	if !ok {
		return apperrors.ErrUnauthenticated
	}

	if _, err := s.repos.TokenRepository.DeleteByUsername(ctx, identity.Username); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	s.logger.Info().Str("username", identity.Username).Msg("Logout successful")
	return nil
}

// ChangePassword replaces the caller's password after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, actor *models.Account, req *dto.ChangePasswordRequest) error {
	if !auth.CheckPassword(actor.Password, req.OldPassword) {
		return ErrInvalidLogin
	}
	if err := checkPasswordLength(req.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPasswordWithCost(req.NewPassword, s.passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repos.AccountRepository.UpdatePassword(ctx, actor.ID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("username", actor.Username).Msg("Password changed")
	return nil
}

func checkPasswordLength(password string) error {
	if !validation.IsValidPassword(password) {
		return ErrPasswordTooShort
	}
	if validation.IsPasswordTooLong(password) {
		return ErrPasswordTooLong
	}
	return nil
}

// unknownUserHash returns a hash at the service's cost that no password matches
func (s *AuthService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPasswordWithCost(uuid.New().String(), s.passwordCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to prepare unknown-user hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// ValidateToken reports whether (username, token) is a live token. It backs the
// auth gate.
func (s *AuthService) ValidateToken(ctx context.Context, username, token string) (bool, error) {
	return s.repos.TokenRepository.Exists(ctx, username, token)
}
