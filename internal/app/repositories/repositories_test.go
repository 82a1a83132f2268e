package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/db"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/testutil"
)

func newAccount(t *testing.T, repos *repositories.Repositories, username string, role models.RoleType) *models.Account {
	t.Helper()
	now := time.Now().UTC()
	account := &models.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  "hash",
		Email:     username + "@example.com",
		Phone:     "+1555" + uuid.NewString()[:6],
		Type:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repos.AccountRepository.Create(context.Background(), account))
	return account
}

func newClass(t *testing.T, repos *repositories.Repositories, name string, teacher *models.Account) *models.Class {
	t.Helper()
	now := time.Now().UTC()
	class := &models.Class{
		ID:        uuid.NewString(),
		Name:      name,
		TeacherID: teacher.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repos.ClassRepository.Create(context.Background(), class))
	return class
}

func newEvaluation(t *testing.T, repos *repositories.Repositories, student *models.Account, class *models.Class, score int) *models.Evaluation {
	t.Helper()
	evaluation := &models.Evaluation{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		ClassID:   class.ID,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.EvaluationRepository.Create(context.Background(), evaluation))
	return evaluation
}

func count(t *testing.T, database *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repos := repositories.NewRepositories(testutil.NewDB(t))

	alice := newAccount(t, repos, "alice", models.RoleStudent)

	got, err := repos.AccountRepository.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, models.RoleStudent, got.Type)
	assert.Equal(t, "hash", got.Password)

	_, err = repos.AccountRepository.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	dup := *alice
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repos.AccountRepository.Create(ctx, &dup), apperrors.ErrAccountAlreadyExists)

	conflict, err := repos.AccountRepository.ExistsConflicting(ctx, "someone", alice.Email, "", "")
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = repos.AccountRepository.ExistsConflicting(ctx, "alice", alice.Email, alice.Phone, alice.ID)
	require.NoError(t, err)
	assert.False(t, conflict, "an account never conflicts with itself")

	got.Email = "alice@new.example.com"
	require.NoError(t, repos.AccountRepository.Update(ctx, got))
	got, err = repos.AccountRepository.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", got.Email)

	require.NoError(t, repos.AccountRepository.UpdatePassword(ctx, alice.ID, "hash2"))
	got, err = repos.AccountRepository.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash2", got.Password)

	accounts, err := repos.AccountRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, repos.AccountRepository.Delete(ctx, alice.ID))
	assert.ErrorIs(t, repos.AccountRepository.Delete(ctx, alice.ID), apperrors.ErrAccountNotFound)
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	repos := repositories.NewRepositories(testutil.NewDB(t))
	newAccount(t, repos, "alice", models.RoleStudent)

	ok, err := repos.TokenRepository.Exists(ctx, "alice", "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repos.TokenRepository.Create(ctx, "alice", "tok"))

	ok, err = repos.TokenRepository.Exists(ctx, "alice", "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.TokenRepository.Exists(ctx, "alice", "other")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repos.TokenRepository.DeleteByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err = repos.TokenRepository.Exists(ctx, "alice", "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassRepository(t *testing.T) {
	ctx := context.Background()
	repos := repositories.NewRepositories(testutil.NewDB(t))

	bob := newAccount(t, repos, "bob", models.RoleTeacher)
	carol := newAccount(t, repos, "carol", models.RoleTeacher)
	os := newClass(t, repos, "Operating Systems", bob)
	newClass(t, repos, "Compilers", carol)

	got, err := repos.ClassRepository.GetByName(ctx, "Operating Systems")
	require.NoError(t, err)
	assert.Equal(t, os.ID, got.ID)
	assert.Equal(t, "bob", got.TeacherUsername)

	_, err = repos.ClassRepository.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	dup := *os
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repos.ClassRepository.Create(ctx, &dup), apperrors.ErrClassAlreadyExists)

	all, err := repos.ClassRepository.List(ctx, repositories.ClassFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byTeacher, err := repos.ClassRepository.List(ctx, repositories.ClassFilter{TeacherID: carol.ID})
	require.NoError(t, err)
	require.Len(t, byTeacher, 1)
	assert.Equal(t, "Compilers", byTeacher[0].Name)

	got.Description = "Kernels"
	got.TeacherID = carol.ID
	require.NoError(t, repos.ClassRepository.Update(ctx, got))
	got, err = repos.ClassRepository.GetByID(ctx, os.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kernels", got.Description)
	assert.Equal(t, "carol", got.TeacherUsername)

	n, err := repos.ClassRepository.DeleteByTeacher(ctx, carol.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.ErrorIs(t, repos.ClassRepository.Delete(ctx, os.ID), apperrors.ErrClassNotFound)
}

func TestEvaluationRepository(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repos := repositories.NewRepositories(database)

	bob := newAccount(t, repos, "bob", models.RoleTeacher)
	alice := newAccount(t, repos, "alice", models.RoleStudent)
	dave := newAccount(t, repos, "dave", models.RoleStudent)
	os := newClass(t, repos, "Operating Systems", bob)
	compilers := newClass(t, repos, "Compilers", bob)

	first := newEvaluation(t, repos, alice, os, 5)
	newEvaluation(t, repos, dave, os, 3)
	newEvaluation(t, repos, alice, compilers, 4)

	dup := *first
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repos.EvaluationRepository.Create(ctx, &dup), apperrors.ErrEvaluationAlreadyExists)

	exists, err := repos.EvaluationRepository.Exists(ctx, alice.ID, os.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repos.EvaluationRepository.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.StudentUsername)
	assert.Equal(t, "Operating Systems", got.ClassName)

	list, err := repos.EvaluationRepository.List(ctx, repositories.EvaluationFilter{ClassID: os.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repos.EvaluationRepository.List(ctx, repositories.EvaluationFilter{StudentID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	scores, err := repos.EvaluationRepository.Scores(ctx, os.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5, 3}, scores)

	scores, err = repos.EvaluationRepository.Scores(ctx, "")
	require.NoError(t, err)
	assert.Len(t, scores, 3)

	n, err := repos.EvaluationRepository.DeleteByStudent(ctx, dave.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repos.EvaluationRepository.DeleteByTeacher(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Zero(t, count(t, database, "evaluations"))

	assert.ErrorIs(t, repos.EvaluationRepository.Delete(ctx, first.ID), apperrors.ErrEvaluationNotFound)
}

func TestForeignKeysCascade(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repos := repositories.NewRepositories(database)

	bob := newAccount(t, repos, "bob", models.RoleTeacher)
	alice := newAccount(t, repos, "alice", models.RoleStudent)
	class := newClass(t, repos, "Operating Systems", bob)
	newEvaluation(t, repos, alice, class, 4)
	require.NoError(t, repos.TokenRepository.Create(ctx, "bob", "tok"))

	require.NoError(t, repos.AccountRepository.Delete(ctx, bob.ID))

	assert.Zero(t, count(t, database, "classes"))
	assert.Zero(t, count(t, database, "evaluations"))
	assert.Zero(t, count(t, database, "auth_tokens"))
}

func TestWithTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repos := repositories.NewRepositories(database)
	newAccount(t, repos, "alice", models.RoleStudent)

	err := db.WithTransaction(ctx, database, func(ctx context.Context, tx *sqlx.Tx) error {
		txRepos := repos.WithTx(tx)
		if err := txRepos.TokenRepository.Create(ctx, "alice", "tok"); err != nil {
			return err
		}
		return txRepos.TokenRepository.Create(ctx, "alice", "tok2")
	})
	require.Error(t, err)
	assert.Zero(t, count(t, database, "auth_tokens"))
}
