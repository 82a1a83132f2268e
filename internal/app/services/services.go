package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/pkg/auth"
)

// Services defined in this package:
// - AuthService: registration, login, logout and password changes
// - AccountService: account lookup, update and cascading deletion
// - ClassService: class CRUD
// - EvaluationService: evaluation CRUD and score statistics

// ScoreRange is the inclusive range evaluation scores are clamped into
type ScoreRange struct {
	Min int
	Max int
}

// Services holds all the service instances
type Services struct {
	AuthService       *AuthService
	AccountService    *AccountService
	ClassService      *ClassService
	EvaluationService *EvaluationService
	Authorization     *appauth.AuthorizationService
}

// Dependencies groups what the services need from the outside
type Dependencies struct {
	DB           *sqlx.DB
	Repositories *repositories.Repositories
	TokenIssuer  *auth.TokenIssuer
	PasswordCost int
	ScoreRange   ScoreRange
	Logger       zerolog.Logger
}

// NewServices initializes all services
func NewServices(deps Dependencies) *Services {
	authz := appauth.NewAuthorizationService(deps.Repositories.AccountRepository)

	return &Services{
		AuthService: NewAuthService(deps.DB, deps.Repositories, deps.TokenIssuer, deps.PasswordCost,
			deps.Logger.With().Str("service", "auth").Logger()),
		AccountService: NewAccountService(deps.DB, deps.Repositories, authz,
			deps.Logger.With().Str("service", "account").Logger()),
		ClassService: NewClassService(deps.DB, deps.Repositories, authz,
			deps.Logger.With().Str("service", "class").Logger()),
		EvaluationService: NewEvaluationService(deps.Repositories, authz, deps.ScoreRange,
			deps.Logger.With().Str("service", "evaluation").Logger()),
		Authorization: authz,
	}
}
