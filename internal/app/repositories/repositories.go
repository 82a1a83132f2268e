package repositories

import (
	"github.com/jmoiron/sqlx"
)

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so every repository can run
// either standalone or inside a transaction.
type Queryer interface {
	sqlx.ExtContext
}

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository    *AccountRepository
	TokenRepository      *TokenRepository
	ClassRepository      *ClassRepository
	EvaluationRepository *EvaluationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db Queryer) *Repositories {
	return &Repositories{
		AccountRepository:    NewAccountRepository(db),
		TokenRepository:      NewTokenRepository(db),
		ClassRepository:      NewClassRepository(db),
		EvaluationRepository: NewEvaluationRepository(db),
	}
}

// WithTx returns a set of repositories bound to tx
func (r *Repositories) WithTx(tx *sqlx.Tx) *Repositories {
	return NewRepositories(tx)
}
