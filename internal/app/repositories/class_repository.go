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

// ClassFilter narrows a class listing; zero-value fields are ignored
type ClassFilter struct {
	TeacherID string
}

// ClassRepository handles class database operations
type ClassRepository struct {
	db Queryer
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db Queryer) *ClassRepository {
	return &ClassRepository{
		db: db,
		sb: helpers.StatementBuilder(db),
	}
}

// selectClasses joins the owning teacher's username onto every row
func (r *ClassRepository) selectClasses() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.name", "c.teacher_id", "c.description", "c.category",
		"c.created_at", "c.updated_at", "a.username AS teacher_username",
	).
		From("classes c").
		Join("accounts a ON a.id = c.teacher_id")
}

// Create inserts a new class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	query, args, err := r.sb.Insert("classes").
		Columns("id", "name", "teacher_id", "description", "category", "created_at", "updated_at").
		Values(class.ID, class.Name, class.TeacherID, class.Description, class.Category,
			class.CreatedAt, class.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create class query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			logger.Warn().Str("name", class.Name).Msg("Attempted to create duplicate class")
			return apperrors.ErrClassAlreadyExists
		}
		logger.Error().Err(err).Str("name", class.Name).Msg("Error executing create class query")
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

// GetByID retrieves a class by identifier
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*models.Class, error) {
	return r.getOne(ctx, squirrel.Eq{"c.id": id})
}

// GetByName retrieves a class by its unique name
func (r *ClassRepository) GetByName(ctx context.Context, name string) (*models.Class, error) {
	return r.getOne(ctx, squirrel.Eq{"c.name": name})
}

func (r *ClassRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Class, error) {
	query, args, err := r.selectClasses().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	var class models.Class
	if err := sqlx.GetContext(ctx, r.db, &class, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Msg("Error scanning class row")
		return nil, fmt.Errorf("error retrieving class: %w", err)
	}
	return &class, nil
}

// List returns the classes matching filter ordered by name
func (r *ClassRepository) List(ctx context.Context, filter ClassFilter) ([]*models.Class, error) {
	builder := r.selectClasses()
	if filter.TeacherID != "" {
		builder = builder.Where(squirrel.Eq{"c.teacher_id": filter.TeacherID})
	}

	query, args, err := builder.OrderBy("c.name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}

	classes := []*models.Class{}
	if err := sqlx.SelectContext(ctx, r.db, &classes, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error listing classes")
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	return classes, nil
}

// Update writes the mutable fields of class
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	query, args, err := r.sb.Update("classes").
		Set("name", class.Name).
		Set("teacher_id", class.TeacherID).
		Set("description", class.Description).
		Set("category", class.Category).
		Set("updated_at", class.UpdatedAt).
		Where(squirrel.Eq{"id": class.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update class query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrClassAlreadyExists
		}
		logger.Error().Err(err).Str("classID", class.ID).Msg("Error executing update class query")
		return fmt.Errorf("error updating class: %w", err)
	}
	return requireAffected(result, apperrors.ErrClassNotFound)
}

// Delete removes a class row
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("classes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete class query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("classID", id).Msg("Error executing delete class query")
		return fmt.Errorf("error deleting class: %w", err)
	}
	return requireAffected(result, apperrors.ErrClassNotFound)
}

// DeleteByTeacher removes every class owned by teacherID
func (r *ClassRepository) DeleteByTeacher(ctx context.Context, teacherID string) (int64, error) {
	query, args, err := r.sb.Delete("classes").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete classes query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("teacherID", teacherID).Msg("Error deleting teacher classes")
		return 0, fmt.Errorf("error deleting classes: %w", err)
	}
	return result.RowsAffected()
}

// requireAffected maps "no row changed" to notFound
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
