package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/repositories"
	"github.com/yigit/taluation/internal/pkg/apperrors"
	"github.com/yigit/taluation/internal/pkg/auth"
	"github.com/yigit/taluation/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	db       *sqlx.DB
	repos    *repositories.Repositories
	services *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := testutil.NewDB(t)
	repos := repositories.NewRepositories(database)
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{SecretKey: testutil.TestSecret, TokenIssuer: "test"})
	require.NoError(t, err)

	return &fixture{
		db:    database,
		repos: repos,
		services: NewServices(Dependencies{
			DB:           database,
			Repositories: repos,
			TokenIssuer:  issuer,
			PasswordCost: bcrypt.MinCost,
			ScoreRange:   ScoreRange{Min: 1, Max: 5},
			Logger:       zerolog.Nop(),
		}),
	}
}

// register creates an account and returns it as loaded from the store
func (f *fixture) register(t *testing.T, username string, role models.RoleType) *models.Account {
	t.Helper()
	ctx := context.Background()

	_, err := f.services.AuthService.Register(ctx, &dto.RegisterRequest{
		Username: username,
		Password: "password-" + username,
		Email:    username + "@example.com",
		Phone:    "+1555" + phoneSuffix(username),
		Type:     string(role),
	})
	require.NoError(t, err)

	account, err := f.repos.AccountRepository.GetByUsername(ctx, username)
	require.NoError(t, err)
	return account
}

// seedAdmin inserts an admin directly, as registration refuses admins
func (f *fixture) seedAdmin(t *testing.T) *models.Account {
	t.Helper()
	hash, err := auth.HashPasswordWithCost("password-admin", bcrypt.MinCost)
	require.NoError(t, err)

	admin := &models.Account{
		ID:       "admin-id",
		Username: "admin",
		Password: hash,
		Email:    "admin@example.com",
		Phone:    "+10000000000",
		Type:     models.RoleAdmin,
	}
	require.NoError(t, f.repos.AccountRepository.Create(context.Background(), admin))
	return admin
}

func phoneSuffix(username string) string {
	digits := make([]byte, 0, 7)
	for i := 0; i < 7; i++ {
		digits = append(digits, '0'+byte(int(username[i%len(username)])%10))
	}
	return string(digits)
}

func (f *fixture) createClass(t *testing.T, actor *models.Account, name string) string {
	t.Helper()
	rec, err := f.services.ClassService.Create(context.Background(), actor, &dto.CreateClassRequest{Name: name})
	require.NoError(t, err)
	return rec.ID
}

func (f *fixture) evaluate(t *testing.T, actor *models.Account, classID string, score int) (*dto.RecordResponse, error) {
	t.Helper()
	return f.evaluateNumber(t, actor, classID, json.Number(strconv.Itoa(score)))
}

func (f *fixture) evaluateNumber(t *testing.T, actor *models.Account, classID string, score json.Number) (*dto.RecordResponse, error) {
	t.Helper()
	return f.services.EvaluationService.Create(context.Background(), actor, &dto.CreateEvaluationRequest{
		ClassID: classID,
		Score:   &score,
	})
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", models.RoleStudent)
	assert.NotEqual(t, "password-alice", alice.Password)
	assert.True(t, auth.CheckPassword(alice.Password, "password-alice"))

	tests := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{
			name: "duplicate username",
			req:  dto.RegisterRequest{Username: "alice", Password: "long-enough", Email: "x@example.com", Phone: "+19999999999"},
			want: apperrors.ErrAccountAlreadyExists,
		},
		{
			name: "duplicate email",
			req:  dto.RegisterRequest{Username: "alicia", Password: "long-enough", Email: "alice@example.com", Phone: "+19999999999"},
			want: apperrors.ErrAccountAlreadyExists,
		},
		{
			name: "short password",
			req:  dto.RegisterRequest{Username: "bob", Password: "short", Email: "bob@example.com", Phone: "+19999999999"},
			want: ErrPasswordTooShort,
		},
		{
			name: "password longer than bcrypt accepts",
			req:  dto.RegisterRequest{Username: "bob", Password: strings.Repeat("x", 80), Email: "bob@example.com", Phone: "+19999999999"},
			want: ErrPasswordTooLong,
		},
		{
			name: "admin self-registration",
			req:  dto.RegisterRequest{Username: "root", Password: "long-enough", Email: "root@example.com", Phone: "+19999999999", Type: "admin"},
			want: ErrAdminRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.services.AuthService.Register(ctx, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin_ReplacesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", models.RoleStudent)

	_, err := f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, err = f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	first, err := f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password-alice"})
	require.NoError(t, err)
	second, err := f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password-alice"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	ok, err := f.services.AuthService.ValidateToken(ctx, "alice", first.Token)
	require.NoError(t, err)
	assert.False(t, ok, "a new login invalidates the previous token")

	ok, err = f.services.AuthService.ValidateToken(ctx, "alice", second.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	logoutCtx := appauth.WithIdentity(ctx, appauth.Identity{Username: "alice", Token: second.Token})
	require.NoError(t, f.services.AuthService.Logout(logoutCtx))
	ok, err = f.services.AuthService.ValidateToken(ctx, "alice", second.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_UnknownUserComparesDummyHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	hash := f.services.AuthService.dummyHash
	require.NotEmpty(t, hash)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, f.services.AuthService.passwordCost, cost)
	assert.False(t, auth.CheckPassword(hash, "whatever"))

	_, err = f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "ghost", Password: "other"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
	assert.Equal(t, hash, f.services.AuthService.dummyHash, "the hash is prepared once")
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)

	err := f.services.AuthService.ChangePassword(ctx, alice, &dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	err = f.services.AuthService.ChangePassword(ctx, alice, &dto.ChangePasswordRequest{OldPassword: "password-alice", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	err = f.services.AuthService.ChangePassword(ctx, alice,
		&dto.ChangePasswordRequest{OldPassword: "password-alice", NewPassword: strings.Repeat("x", 80)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, f.services.AuthService.ChangePassword(ctx, alice,
		&dto.ChangePasswordRequest{OldPassword: "password-alice", NewPassword: "new-password"}))

	_, err = f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "new-password"})
	assert.NoError(t, err)
}

func TestAccountService_GetProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)
	bob := f.register(t, "bob", models.RoleTeacher)
	admin := f.seedAdmin(t)

	view, err := f.services.AccountService.Get(ctx, alice, "")
	require.NoError(t, err)
	full, ok := view.(*dto.AccountResponse)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", full.Email)

	view, err = f.services.AccountService.Get(ctx, bob, "alice")
	require.NoError(t, err)
	redacted, ok := view.(*dto.RedactedAccountResponse)
	require.True(t, ok)
	assert.Equal(t, alice.ID, redacted.ID)

	view, err = f.services.AccountService.Get(ctx, admin, "alice")
	require.NoError(t, err)
	assert.IsType(t, &dto.AccountResponse{}, view)

	_, err = f.services.AccountService.Get(ctx, bob, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	_, err = f.services.AccountService.List(ctx, alice)
	assert.ErrorIs(t, err, appauth.ErrListAccountsDenied)
	all, err := f.services.AccountService.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAccountService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)
	bob := f.register(t, "bob", models.RoleTeacher)
	admin := f.seedAdmin(t)

	_, err := f.services.AccountService.Update(ctx, bob, &dto.UpdateAccountRequest{Username: "alice", Email: "b@example.com"})
	assert.ErrorIs(t, err, appauth.ErrAccountModifyDenied)

	_, err = f.services.AccountService.Update(ctx, alice, &dto.UpdateAccountRequest{Type: "teacher"})
	assert.ErrorIs(t, err, appauth.ErrRoleChangeDenied)

	_, err = f.services.AccountService.Update(ctx, alice, &dto.UpdateAccountRequest{NewName: "bob"})
	assert.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)

	login, err := f.services.AuthService.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password-alice"})
	require.NoError(t, err)

	updated, err := f.services.AccountService.Update(ctx, alice, &dto.UpdateAccountRequest{NewName: "alicia", Email: "alicia@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	assert.Equal(t, "alicia@example.com", updated.Email)

	ok, err := f.services.AuthService.ValidateToken(ctx, "alicia", login.Token)
	require.NoError(t, err)
	assert.False(t, ok, "renaming signs the account out")

	promoted, err := f.services.AccountService.Update(ctx, admin, &dto.UpdateAccountRequest{Username: "alicia", Type: "teacher"})
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleTeacher), promoted.Type)
}

func TestAccountService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)
	bob := f.register(t, "bob", models.RoleTeacher)

	classID := f.createClass(t, bob, "Operating Systems")
	_, err := f.evaluate(t, alice, classID, 4)
	require.NoError(t, err)

	assert.ErrorIs(t, f.services.AccountService.Delete(ctx, alice, "bob"), appauth.ErrAccountModifyDenied)

	require.NoError(t, f.services.AccountService.Delete(ctx, bob, ""))

	_, err = f.repos.ClassRepository.GetByID(ctx, classID)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
	scores, err := f.repos.EvaluationRepository.Scores(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, scores)

	_, err = f.repos.AccountRepository.GetByUsername(ctx, "alice")
	assert.NoError(t, err, "other accounts survive")
}

func TestClassService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)
	bob := f.register(t, "bob", models.RoleTeacher)
	carol := f.register(t, "carol", models.RoleTeacher)
	admin := f.seedAdmin(t)

	_, err := f.services.ClassService.Create(ctx, alice, &dto.CreateClassRequest{Name: "Nope"})
	assert.ErrorIs(t, err, appauth.ErrClassCreateDenied)

	classID := f.createClass(t, bob, "Operating Systems")

	_, err = f.services.ClassService.Create(ctx, carol, &dto.CreateClassRequest{Name: "Operating Systems"})
	assert.ErrorIs(t, err, apperrors.ErrClassAlreadyExists)

	_, err = f.services.ClassService.Create(ctx, bob, &dto.CreateClassRequest{Name: "Compilers", Teacher: "carol"})
	assert.ErrorIs(t, err, appauth.ErrTeacherAssignDenied)

	_, err = f.services.ClassService.Create(ctx, admin, &dto.CreateClassRequest{Name: "Compilers", Teacher: "alice"})
	assert.ErrorIs(t, err, ErrTeacherNotFound)

	rec, err := f.services.ClassService.Create(ctx, admin, &dto.CreateClassRequest{Name: "Compilers", Teacher: "carol"})
	require.NoError(t, err)

	_, err = f.services.ClassService.Update(ctx, carol, &dto.UpdateClassRequest{ID: classID, Name: "Mine"})
	assert.ErrorIs(t, err, appauth.ErrClassModifyDenied)

	desc := "Kernels and schedulers"
	class, err := f.services.ClassService.Update(ctx, bob, &dto.UpdateClassRequest{ID: classID, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Operating Systems", class.Name)
	assert.Equal(t, desc, class.Description)

	result, err := f.services.ClassService.Get(ctx, &dto.ClassQuery{Teacher: "carol"})
	require.NoError(t, err)
	classes, ok := result.([]*models.Class)
	require.True(t, ok)
	require.Len(t, classes, 1)
	assert.Equal(t, rec.ID, classes[0].ID)

	result, err = f.services.ClassService.Get(ctx, &dto.ClassQuery{Name: "Operating Systems"})
	require.NoError(t, err)
	assert.Equal(t, classID, result.(*models.Class).ID)

	_, err = f.evaluate(t, alice, classID, 3)
	require.NoError(t, err)
	require.NoError(t, f.services.ClassService.Delete(ctx, bob, classID))

	scores, err := f.repos.EvaluationRepository.Scores(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, scores)
	_, err = f.services.ClassService.Get(ctx, &dto.ClassQuery{ID: classID})
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestEvaluationService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)
	dave := f.register(t, "dave", models.RoleStudent)
	bob := f.register(t, "bob", models.RoleTeacher)
	classID := f.createClass(t, bob, "Operating Systems")

	_, err := f.evaluate(t, bob, classID, 5)
	assert.ErrorIs(t, err, appauth.ErrEvaluationCreateDenied)

	_, err = f.evaluate(t, alice, "missing", 5)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	high, err := f.evaluate(t, alice, classID, 99)
	require.NoError(t, err)
	_, err = f.evaluate(t, alice, classID, 3)
	assert.ErrorIs(t, err, apperrors.ErrEvaluationAlreadyExists)
	_, err = f.evaluate(t, dave, classID, -3)
	require.NoError(t, err)

	got, err := f.services.EvaluationService.Get(ctx, &dto.EvaluationQuery{ID: high.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, got.(*models.Evaluation).Score)

	list, err := f.services.EvaluationService.Get(ctx, &dto.EvaluationQuery{ClassID: classID, User: "dave"})
	require.NoError(t, err)
	evaluations := list.([]*models.Evaluation)
	require.Len(t, evaluations, 1)
	assert.Equal(t, 1, evaluations[0].Score)

	stats, err := f.services.EvaluationService.Stats(ctx, classID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 3.0, stats.Mean, 1e-9)
	assert.Equal(t, 5, *stats.Max)
	assert.Equal(t, 1, *stats.Min)

	_, err = f.services.EvaluationService.Stats(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	assert.ErrorIs(t, f.services.EvaluationService.Delete(ctx, dave, high.ID), appauth.ErrEvaluationDeleteDenied)
	require.NoError(t, f.services.EvaluationService.Delete(ctx, alice, high.ID))
	_, err = f.services.EvaluationService.Get(ctx, &dto.EvaluationQuery{ID: high.ID})
	assert.ErrorIs(t, err, apperrors.ErrEvaluationNotFound)
}

func TestEvaluationService_SaturatesScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", models.RoleStudent)
	dave := f.register(t, "dave", models.RoleStudent)
	erin := f.register(t, "erin", models.RoleStudent)
	bob := f.register(t, "bob", models.RoleTeacher)
	classID := f.createClass(t, bob, "Compilers")

	high, err := f.evaluateNumber(t, alice, classID, "100000000000000000000")
	require.NoError(t, err)
	low, err := f.evaluateNumber(t, dave, classID, "-100000000000000000000")
	require.NoError(t, err)

	got, err := f.services.EvaluationService.Get(ctx, &dto.EvaluationQuery{ID: high.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, got.(*models.Evaluation).Score)

	got, err = f.services.EvaluationService.Get(ctx, &dto.EvaluationQuery{ID: low.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, got.(*models.Evaluation).Score)

	_, err = f.evaluateNumber(t, erin, classID, "4.5")
	assert.ErrorIs(t, err, ErrScoreNotInteger)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestComputeStats(t *testing.T) {
	r := ScoreRange{Min: 1, Max: 5}

	empty := ComputeStats(nil, r)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Mean)
	assert.Nil(t, empty.Min)
	assert.Nil(t, empty.Max)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, empty.Histogram)

	stats := ComputeStats([]int{5, 4, 4, 1}, r)
	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 3.5, stats.Mean, 1e-9)
	assert.Equal(t, 1, *stats.Min)
	assert.Equal(t, 5, *stats.Max)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 2, 5: 1}, stats.Histogram)
}
