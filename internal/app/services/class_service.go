package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

// ErrTeacherNotFound is returned when a class is assigned to a username that is not a teacher
var ErrTeacherNotFound = apperrors.NewResourceNotFoundError("Teacher not found.")

// ClassService handles class operations
type ClassService struct {
	db     *sqlx.DB
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(
	database *sqlx.DB,
	repos *repositories.Repositories,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *ClassService {
	return &ClassService{
		db:     database,
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// resolveTeacher returns the account that should own a class. Only admins may name
// someone other than themselves, and the named account must be a teacher.
func (s *ClassService) resolveTeacher(ctx context.Context, actor *models.Account, teacher string) (*models.Account, error) {
	if teacher == "" || teacher == actor.Username {
		return actor, nil
	}
	if err := s.authz.ValidateTeacherAssignment(actor); err != nil {
		return nil, err
	}

	account, err := s.repos.AccountRepository.GetByUsername(ctx, teacher)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	if account.Type != models.RoleTeacher {
		return nil, ErrTeacherNotFound
	}
	return account, nil
}

// Create adds a class owned by the actor, or by the named teacher when the actor is an admin
func (s *ClassService) Create(ctx context.Context, actor *models.Account, req *dto.CreateClassRequest) (*dto.RecordResponse, error) {
	if err := s.authz.ValidateClassCreation(actor); err != nil {
		return nil, err
	}

	teacher, err := s.resolveTeacher(ctx, actor, req.Teacher)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.ClassRepository.GetByName(ctx, req.Name); err == nil {
		return nil, apperrors.ErrClassAlreadyExists
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	now := helpers.NowUTC()
	class := &models.Class{
		ID:          uuid.New().String(),
		Name:        req.Name,
		TeacherID:   teacher.ID,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.ClassRepository.Create(ctx, class); err != nil {
		return nil, err
	}

	s.logger.Info().Str("class", class.Name).Str("teacher", teacher.Username).Msg("Class created")
	return &dto.RecordResponse{ID: class.ID}, nil
}

// Update changes the fields set in req
func (s *ClassService) Update(ctx context.Context, actor *models.Account, req *dto.UpdateClassRequest) (*models.Class, error) {
	class, err := s.repos.ClassRepository.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateClassOwnership(actor, class); err != nil {
		return nil, err
	}

	if req.Teacher != "" && req.Teacher != class.TeacherUsername {
		teacher, err := s.resolveTeacher(ctx, actor, req.Teacher)
		if err != nil {
			return nil, err
		}
		class.TeacherID = teacher.ID
		class.TeacherUsername = teacher.Username
	}
	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.Category != nil {
		class.Category = *req.Category
	}
	class.UpdatedAt = helpers.NowUTC()

	if err := s.repos.ClassRepository.Update(ctx, class); err != nil {
		return nil, err
	}

	s.logger.Info().Str("actor", actor.Username).Str("classID", class.ID).Msg("Class updated")
	return class, nil
}

// Delete removes a class and its evaluations
func (s *ClassService) Delete(ctx context.Context, actor *models.Account, id string) error {
	class, err := s.repos.ClassRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateClassOwnership(actor, class); err != nil {
		return err
	}

	err = db.WithTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repos := s.repos.WithTx(tx)
		if _, err := repos.EvaluationRepository.DeleteByClass(ctx, class.ID); err != nil {
			return err
		}
		return repos.ClassRepository.Delete(ctx, class.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("actor", actor.Username).Str("class", class.Name).Msg("Class deleted")
	return nil
}

// Get looks classes up by id or name (a single class), by teacher username, or
// returns them all
func (s *ClassService) Get(ctx context.Context, query *dto.ClassQuery) (interface{}, error) {
	switch {
	case query.ID != "":
		return s.repos.ClassRepository.GetByID(ctx, query.ID)
	case query.Name != "":
		return s.repos.ClassRepository.GetByName(ctx, query.Name)
	}

	filter := repositories.ClassFilter{}
	if query.Teacher != "" {
		teacher, err := s.repos.AccountRepository.GetByUsername(ctx, query.Teacher)
		if err != nil {
			return nil, err
		}
		filter.TeacherID = teacher.ID
	}
	return s.repos.ClassRepository.List(ctx, filter)
}
