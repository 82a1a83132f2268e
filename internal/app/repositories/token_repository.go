package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/taluation/internal/pkg/helpers"
	"github.com/yigit/taluation/internal/pkg/logger"
)

// TokenRepository handles auth token database operations
type TokenRepository struct {
	db Queryer
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db Queryer) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: helpers.StatementBuilder(db),
	}
}

// Create stores token as the live token of username. The username is the primary
// key, so callers must delete any previous token first.
func (r *TokenRepository) Create(ctx context.Context, username, token string) error {
	query, args, err := r.sb.Insert("auth_tokens").
		Columns("username", "token", "created_at").
		Values(username, token, helpers.NowUTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// Exists reports whether (username, token) is a live token, matching both exactly
func (r *TokenRepository) Exists(ctx context.Context, username, token string) (bool, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("auth_tokens").
		Where(squirrel.Eq{"username": username, "token": token}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build token lookup query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error looking up token")
		return false, fmt.Errorf("error looking up token: %w", err)
	}
	return count > 0, nil
}

// DeleteByUsername removes the token of username, returning how many rows went away
func (r *TokenRepository) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	query, args, err := r.sb.Delete("auth_tokens").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete token query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error executing delete token query")
		return 0, fmt.Errorf("error deleting token: %w", err)
	}

	return result.RowsAffected()
}
