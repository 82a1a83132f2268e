package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/helpers"
	"github.com/yigit/taluation/internal/pkg/validation"
)

// ErrScoreNotInteger rejects fractional or non-numeric scores
var ErrScoreNotInteger = apperrors.NewValidationError("Score must be an integer.")

// EvaluationService handles evaluation operations
type EvaluationService struct {
	repos      *repositories.Repositories
	authz      *appauth.AuthorizationService
	scoreRange ScoreRange
	logger     zerolog.Logger
}

// NewEvaluationService creates a new EvaluationService
func NewEvaluationService(
	repos *repositories.Repositories,
	authz *appauth.AuthorizationService,
	scoreRange ScoreRange,
	logger zerolog.Logger,
) *EvaluationService {
	return &EvaluationService{
		repos:      repos,
		authz:      authz,
		scoreRange: scoreRange,
		logger:     logger,
	}
}

// Create records the actor's evaluation of a class. The score is clamped into the
// configured range; a second evaluation of the same class is rejected.
func (s *EvaluationService) Create(ctx context.Context, actor *models.Account, req *dto.CreateEvaluationRequest) (*dto.RecordResponse, error) {
	if err := s.authz.ValidateEvaluationCreation(actor); err != nil {
		return nil, err
	}

	score, err := validation.ClampNumber(*req.Score, s.scoreRange.Min, s.scoreRange.Max)
	if err != nil {
		return nil, ErrScoreNotInteger
	}

	class, err := s.repos.ClassRepository.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repos.EvaluationRepository.Exists(ctx, actor.ID, class.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEvaluationAlreadyExists
	}

	evaluation := &models.Evaluation{
		ID:        uuid.New().String(),
		StudentID: actor.ID,
		ClassID:   class.ID,
		Score:     score,
		Comment:   req.Comment,
		CreatedAt: helpers.NowUTC(),
	}
	if err := s.repos.EvaluationRepository.Create(ctx, evaluation); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("student", actor.Username).
		Str("class", class.Name).
		Int("score", evaluation.Score).
		Msg("Evaluation created")
	return &dto.RecordResponse{ID: evaluation.ID}, nil
}

// Delete removes an evaluation written by the actor, or any evaluation for admins
func (s *EvaluationService) Delete(ctx context.Context, actor *models.Account, id string) error {
	evaluation, err := s.repos.EvaluationRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateEvaluationDeletion(actor, evaluation); err != nil {
		return err
	}

	if err := s.repos.EvaluationRepository.Delete(ctx, evaluation.ID); err != nil {
		return err
	}

	s.logger.Info().Str("actor", actor.Username).Str("evaluationID", id).Msg("Evaluation deleted")
	return nil
}

// Get returns one evaluation by id, or the evaluations matching the class and
// student filters
func (s *EvaluationService) Get(ctx context.Context, query *dto.EvaluationQuery) (interface{}, error) {
	if query.ID != "" {
		return s.repos.EvaluationRepository.GetByID(ctx, query.ID)
	}

	filter := repositories.EvaluationFilter{ClassID: query.ClassID}
	if query.User != "" {
		student, err := s.repos.AccountRepository.GetByUsername(ctx, query.User)
		if err != nil {
			return nil, err
		}
		filter.StudentID = student.ID
	}
	return s.repos.EvaluationRepository.List(ctx, filter)
}

// Stats aggregates the scores of a class, or of every evaluation when classID is empty
func (s *EvaluationService) Stats(ctx context.Context, classID string) (*dto.EvaluationStats, error) {
	if classID != "" {
		if _, err := s.repos.ClassRepository.GetByID(ctx, classID); err != nil {
			return nil, err
		}
	}

	scores, err := s.repos.EvaluationRepository.Scores(ctx, classID)
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(scores, s.scoreRange)
	return &stats, nil
}

// ComputeStats summarizes scores. The histogram has a bucket for every integer in
// the range, so empty buckets are reported as zero.
func ComputeStats(scores []int, scoreRange ScoreRange) dto.EvaluationStats {
	stats := dto.EvaluationStats{
		Count:     len(scores),
		Histogram: make(map[int]int, scoreRange.Max-scoreRange.Min+1),
	}
	for score := scoreRange.Min; score <= scoreRange.Max; score++ {
		stats.Histogram[score] = 0
	}
	if len(scores) == 0 {
		return stats
	}

	sum := 0
	minScore, maxScore := scores[0], scores[0]
	for _, score := range scores {
		sum += score
		stats.Histogram[score]++
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}

	stats.Mean = float64(sum) / float64(len(scores))
	stats.Min = &minScore
	stats.Max = &maxScore
	return stats
}
