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

// EvaluationFilter narrows an evaluation listing; zero-value fields are ignored
type EvaluationFilter struct {
	ClassID   string
	StudentID string
}

// EvaluationRepository handles evaluation database operations
type EvaluationRepository struct {
	db Queryer
	sb squirrel.StatementBuilderType
}

// NewEvaluationRepository creates a new EvaluationRepository
func NewEvaluationRepository(db Queryer) *EvaluationRepository {
	return &EvaluationRepository{
		db: db,
		sb: helpers.StatementBuilder(db),
	}
}

func (r *EvaluationRepository) selectEvaluations() squirrel.SelectBuilder {
	return r.sb.Select(
		"e.id", "e.student_id", "e.class_id", "e.score", "e.comment", "e.created_at",
		"a.username AS student_username", "c.name AS class_name",
	).
		From("evaluations e").
		Join("accounts a ON a.id = e.student_id").
		Join("classes c ON c.id = e.class_id")
}

// Create inserts a new evaluation. A second evaluation for the same
// (student, class) pair is rejected by the unique constraint.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	query, args, err := r.sb.Insert("evaluations").
		Columns("id", "student_id", "class_id", "score", "comment", "created_at").
		Values(evaluation.ID, evaluation.StudentID, evaluation.ClassID, evaluation.Score,
			evaluation.Comment, evaluation.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create evaluation query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			logger.Warn().
				Str("studentID", evaluation.StudentID).
				Str("classID", evaluation.ClassID).
				Msg("Attempted to create duplicate evaluation")
			return apperrors.ErrEvaluationAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create evaluation query")
		return fmt.Errorf("error creating evaluation: %w", err)
	}
	return nil
}

// Exists reports whether studentID already evaluated classID
func (r *EvaluationRepository) Exists(ctx context.Context, studentID, classID string) (bool, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("evaluations").
		Where(squirrel.Eq{"student_id": studentID, "class_id": classID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build evaluation exists query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return false, fmt.Errorf("error checking evaluation: %w", err)
	}
	return count > 0, nil
}

// GetByID retrieves an evaluation by identifier
func (r *EvaluationRepository) GetByID(ctx context.Context, id string) (*models.Evaluation, error) {
	query, args, err := r.selectEvaluations().Where(squirrel.Eq{"e.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get evaluation query: %w", err)
	}

	var evaluation models.Evaluation
	if err := sqlx.GetContext(ctx, r.db, &evaluation, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrEvaluationNotFound
		}
		logger.Error().Err(err).Msg("Error scanning evaluation row")
		return nil, fmt.Errorf("error retrieving evaluation: %w", err)
	}
	return &evaluation, nil
}

// List returns the evaluations matching filter, newest first
func (r *EvaluationRepository) List(ctx context.Context, filter EvaluationFilter) ([]*models.Evaluation, error) {
	builder := r.selectEvaluations()
	if filter.ClassID != "" {
		builder = builder.Where(squirrel.Eq{"e.class_id": filter.ClassID})
	}
	if filter.StudentID != "" {
		builder = builder.Where(squirrel.Eq{"e.student_id": filter.StudentID})
	}

	query, args, err := builder.OrderBy("e.created_at DESC", "e.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list evaluations query: %w", err)
	}

	evaluations := []*models.Evaluation{}
	if err := sqlx.SelectContext(ctx, r.db, &evaluations, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error listing evaluations")
		return nil, fmt.Errorf("error listing evaluations: %w", err)
	}
	return evaluations, nil
}

// Scores returns the raw scores of a class, or of every evaluation when classID is empty
func (r *EvaluationRepository) Scores(ctx context.Context, classID string) ([]int, error) {
	builder := r.sb.Select("score").From("evaluations")
	if classID != "" {
		builder = builder.Where(squirrel.Eq{"class_id": classID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build scores query: %w", err)
	}

	scores := []int{}
	if err := sqlx.SelectContext(ctx, r.db, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("error loading scores: %w", err)
	}
	return scores, nil
}

// Delete removes an evaluation row
func (r *EvaluationRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("evaluations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete evaluation query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("evaluationID", id).Msg("Error executing delete evaluation query")
		return fmt.Errorf("error deleting evaluation: %w", err)
	}
	return requireAffected(result, apperrors.ErrEvaluationNotFound)
}

// DeleteByClass removes every evaluation of classID
func (r *EvaluationRepository) DeleteByClass(ctx context.Context, classID string) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"class_id": classID})
}

// DeleteByStudent removes every evaluation written by studentID
func (r *EvaluationRepository) DeleteByStudent(ctx context.Context, studentID string) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"student_id": studentID})
}

// DeleteByTeacher removes every evaluation of the classes owned by teacherID
func (r *EvaluationRepository) DeleteByTeacher(ctx context.Context, teacherID string) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Expr("class_id IN (SELECT id FROM classes WHERE teacher_id = ?)", teacherID))
}

func (r *EvaluationRepository) deleteWhere(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	query, args, err := r.sb.Delete("evaluations").Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete evaluations query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error deleting evaluations")
		return 0, fmt.Errorf("error deleting evaluations: %w", err)
	}
	return result.RowsAffected()
}
