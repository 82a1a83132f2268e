// Package importer bulk-loads JSON records into the database through the repositories
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/db"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/auth"
	"github.com/yigit/taluation/internal/pkg/helpers"
	"github.com/yigit/taluation/internal/pkg/validation"
)

// Importable tables
const (
	TableAccounts    = "accounts"
	TableClasses     = "classes"
	TableEvaluations = "evaluations"
)

// ErrUnknownTable is returned for a table name the importer does not handle
var ErrUnknownTable = errors.New("unknown table")

type accountRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
}

type classRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Teacher     string `json:"teacher"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type evaluationRecord struct {
	ID      string      `json:"id"`
	User    string      `json:"user"`
	Class   string      `json:"cls"`
	Score   json.Number `json:"score"`
	Comment string      `json:"comment"`
}

// Importer loads records into one table per call
type Importer struct {
	db           *sqlx.DB
	passwordCost int
	scoreRange   [2]int
	logger       zerolog.Logger
}

// New creates an Importer. Imported scores are clamped into [minScore, maxScore].
func New(database *sqlx.DB, passwordCost, minScore, maxScore int, logger zerolog.Logger) *Importer {
	return &Importer{
		db:           database,
		passwordCost: passwordCost,
		scoreRange:   [2]int{minScore, maxScore},
		logger:       logger,
	}
}

// Import reads a JSON array of records from r and inserts them into table inside a
// single transaction, returning how many were inserted. References use natural keys:
// classes name their teacher by username, evaluations name their student by
// username and their class by id or name.
func (im *Importer) Import(ctx context.Context, table string, r io.Reader) (int, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return 0, fmt.Errorf("failed to decode records: %w", err)
	}

	var insert func(ctx context.Context, repos *repositories.Repositories, record json.RawMessage) error
	switch strings.ToLower(table) {
	case TableAccounts:
		insert = im.insertAccount
	case TableClasses:
		insert = im.insertClass
	case TableEvaluations:
		insert = im.insertEvaluation
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	inserted := 0
	err := db.WithTransaction(ctx, im.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repos := repositories.NewRepositories(tx)
		for i, record := range raw {
			if err := insert(ctx, repos, record); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	im.logger.Info().Str("table", table).Int("count", inserted).Msg("Records imported")
	return inserted, nil
}

func recordID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func (im *Importer) insertAccount(ctx context.Context, repos *repositories.Repositories, raw json.RawMessage) error {
	var rec accountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	role := models.RoleType(rec.Type)
	if rec.Type == "" {
		role = models.RoleStudent
	}
	if !role.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid account type %q.", rec.Type))
	}
	if !validation.CompiledPatterns.Username.MatchString(rec.Username) {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid username %q.", rec.Username))
	}

	// Already-hashed passwords are kept as they are
	hash := rec.Password
	if !strings.HasPrefix(hash, "$2") {
		if validation.IsPasswordTooLong(rec.Password) {
			return apperrors.NewValidationError(fmt.Sprintf("Password of %q is too long.", rec.Username))
		}
		var err error
		hash, err = auth.HashPasswordWithCost(rec.Password, im.passwordCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	now := helpers.NowUTC()
	return repos.AccountRepository.Create(ctx, &models.Account{
		ID:        recordID(rec.ID),
		Username:  rec.Username,
		Password:  hash,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Type:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (im *Importer) insertClass(ctx context.Context, repos *repositories.Repositories, raw json.RawMessage) error {
	var rec classRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	if rec.Name == "" {
		return apperrors.NewValidationError("Class name is required.")
	}

	teacher, err := repos.AccountRepository.GetByUsername(ctx, rec.Teacher)
	if err != nil {
		return fmt.Errorf("teacher %q: %w", rec.Teacher, err)
	}

	now := helpers.NowUTC()
	return repos.ClassRepository.Create(ctx, &models.Class{
		ID:          recordID(rec.ID),
		Name:        rec.Name,
		TeacherID:   teacher.ID,
		Description: rec.Description,
		Category:    rec.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (im *Importer) insertEvaluation(ctx context.Context, repos *repositories.Repositories, raw json.RawMessage) error {
	var rec evaluationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}

	if rec.Score == "" {
		rec.Score = "0"
	}
	score, err := validation.ClampNumber(rec.Score, im.scoreRange[0], im.scoreRange[1])
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid score %q.", rec.Score))
	}

	student, err := repos.AccountRepository.GetByUsername(ctx, rec.User)
	if err != nil {
		return fmt.Errorf("student %q: %w", rec.User, err)
	}
	if student.Type != models.RoleStudent {
		return apperrors.NewValidationError(fmt.Sprintf("Account %q is not a student.", rec.User))
	}

	class, err := repos.ClassRepository.GetByID(ctx, rec.Class)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		class, err = repos.ClassRepository.GetByName(ctx, rec.Class)
	}
	if err != nil {
		return fmt.Errorf("class %q: %w", rec.Class, err)
	}

	return repos.EvaluationRepository.Create(ctx, &models.Evaluation{
		ID:        recordID(rec.ID),
		StudentID: student.ID,
		ClassID:   class.ID,
		Score:     score,
		Comment:   rec.Comment,
		CreatedAt: helpers.NowUTC(),
	})
}
