package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/dberrors"
	"github.com/yigit/taluation/internal/pkg/helpers"
	"github.com/yigit/taluation/internal/pkg/logger"
)

var accountColumns = []string{"id", "username", "password", "email", "phone", "type", "created_at", "updated_at"}

// AccountRepository handles account database operations
type AccountRepository struct {
	db Queryer
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db Queryer) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: helpers.StatementBuilder(db),
	}
}

// Create inserts a new account. ID and timestamps must already be set.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query, args, err := r.sb.Insert("accounts").
		Columns(accountColumns...).
		Values(account.ID, account.Username, account.Password, account.Email, account.Phone,
			account.Type, account.CreatedAt, account.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			logger.Warn().Str("username", account.Username).Msg("Attempted to create duplicate account")
			return apperrors.ErrAccountAlreadyExists
		}
		logger.Error().Err(err).Str("username", account.Username).Msg("Error executing create account query")
		return fmt.Errorf("error creating account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its identifier
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Account, error) {
	query, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	var account models.Account
	if err := sqlx.GetContext(ctx, r.db, &account, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row")
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}
	return &account, nil
}

// ExistsConflicting reports whether an account other than excludeID already uses
// any of the non-empty username, email or phone values.
func (r *AccountRepository) ExistsConflicting(ctx context.Context, username, email, phone, excludeID string) (bool, error) {
	or := squirrel.Or{}
	if username != "" {
		or = append(or, squirrel.Eq{"username": username})
	}
	if email != "" {
		or = append(or, squirrel.Eq{"email": email})
	}
	if phone != "" {
		or = append(or, squirrel.Eq{"phone": phone})
	}
	if len(or) == 0 {
		return false, nil
	}

	builder := r.sb.Select("COUNT(*)").From("accounts").Where(or)
	if excludeID != "" {
		builder = builder.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build account conflict query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error checking account conflicts")
		return false, fmt.Errorf("error checking account conflicts: %w", err)
	}
	return count > 0, nil
}

// List returns all accounts ordered by username
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	accounts := []*models.Account{}
	if err := sqlx.SelectContext(ctx, r.db, &accounts, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error listing accounts")
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	return accounts, nil
}

// Update writes the mutable profile fields of account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query, args, err := r.sb.Update("accounts").
		Set("username", account.Username).
		Set("email", account.Email).
		Set("phone", account.Phone).
		Set("type", account.Type).
		Set("updated_at", account.UpdatedAt).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update account query: %w", err)
	}

	return r.execOne(ctx, query, args, "update account")
}

// UpdatePassword replaces the stored password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query, args, err := r.sb.Update("accounts").
		Set("password", passwordHash).
		Set("updated_at", helpers.NowUTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	return r.execOne(ctx, query, args, "update password")
}

// Delete removes an account row
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete account query: %w", err)
	}

	return r.execOne(ctx, query, args, "delete account")
}

func (r *AccountRepository) execOne(ctx context.Context, query string, args []interface{}, op string) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrAccountAlreadyExists
		}
		logger.Error().Err(err).Str("operation", op).Msg("Error executing account query")
		return fmt.Errorf("error executing %s: %w", op, err)
	}

	return requireAffected(result, apperrors.ErrAccountNotFound)
}
