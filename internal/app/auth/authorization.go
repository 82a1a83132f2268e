package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/logger"
)

// Permission denials, each carrying the message shown to the caller
var (
	ErrAccountModifyDenied    = apperrors.NewForbiddenError("You are not allowed to modify this account.")
	ErrRoleChangeDenied       = apperrors.NewForbiddenError("Only admin can change an account's type.")
	ErrListAccountsDenied     = apperrors.NewForbiddenError("Only admin can list accounts.")
	ErrClassCreateDenied      = apperrors.NewForbiddenError("Only teacher can create a new class.")
	ErrClassModifyDenied      = apperrors.NewForbiddenError("You are not allowed to modify this class.")
	ErrTeacherAssignDenied    = apperrors.NewForbiddenError("Only admin can assign a class to another teacher.")
	ErrEvaluationCreateDenied = apperrors.NewForbiddenError("Only student can create an evaluation.")
	ErrEvaluationDeleteDenied = apperrors.NewForbiddenError("You are not allowed to delete this evaluation.")
)

// AuthorizationService resolves the acting account of a request and applies the
// permission rules to it
type AuthorizationService struct {
	accountRepo *repositories.AccountRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(accountRepo *repositories.AccountRepository) *AuthorizationService {
	return &AuthorizationService{
		accountRepo: accountRepo,
	}
}

// CurrentAccount loads the account behind the identity the auth gate attached to ctx
func (s *AuthorizationService) CurrentAccount(ctx context.Context) (*models.Account, error) {
	identity, ok := FromContext(ctx)
	if !ok || identity.Username == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	account, err := s.accountRepo.GetByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			logger.Warn().Str("username", identity.Username).Msg("Authenticated username has no account")
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load current account: %w", err)
	}
	return account, nil
}

// ValidateAccountModification fails unless actor may update or delete target
func (s *AuthorizationService) ValidateAccountModification(actor, target *models.Account) error {
	if !CanModifyAccount(actor, target) {
		logger.Warn().Str("actor", actor.Username).Str("target", target.Username).Msg("Account modification denied")
		return ErrAccountModifyDenied
	}
	return nil
}

// ValidateRoleChange fails unless actor may change account types
func (s *AuthorizationService) ValidateRoleChange(actor *models.Account) error {
	if !CanChangeRole(actor) {
		return ErrRoleChangeDenied
	}
	return nil
}

// ValidateAccountListing fails unless actor may list all accounts
func (s *AuthorizationService) ValidateAccountListing(actor *models.Account) error {
	if !CanListAccounts(actor) {
		return ErrListAccountsDenied
	}
	return nil
}

// ValidateClassCreation fails unless actor may create classes
func (s *AuthorizationService) ValidateClassCreation(actor *models.Account) error {
	if !CanCreateClass(actor) {
		return ErrClassCreateDenied
	}
	return nil
}

// ValidateTeacherAssignment fails unless actor may choose a class owner
func (s *AuthorizationService) ValidateTeacherAssignment(actor *models.Account) error {
	if !CanAssignTeacher(actor) {
		return ErrTeacherAssignDenied
	}
	return nil
}

// ValidateClassOwnership fails unless actor owns class or is an admin
func (s *AuthorizationService) ValidateClassOwnership(actor *models.Account, class *models.Class) error {
	if !CanModifyClass(actor, class) {
		logger.Warn().Str("actor", actor.Username).Str("classID", class.ID).Msg("Class modification denied")
		return ErrClassModifyDenied
	}
	return nil
}

// ValidateEvaluationCreation fails unless actor is a student
func (s *AuthorizationService) ValidateEvaluationCreation(actor *models.Account) error {
	if !CanCreateEvaluation(actor) {
		return ErrEvaluationCreateDenied
	}
	return nil
}

// ValidateEvaluationDeletion fails unless actor wrote evaluation or is an admin
func (s *AuthorizationService) ValidateEvaluationDeletion(actor *models.Account, evaluation *models.Evaluation) error {
	if !CanDeleteEvaluation(actor, evaluation) {
		return ErrEvaluationDeleteDenied
	}
	return nil
}
