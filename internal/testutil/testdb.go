// Package testutil provides SQLite-backed fixtures for tests
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/taluation/internal/app/migrations"
	"github.com/yigit/taluation/internal/config"
	"github.com/yigit/taluation/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// TestSecret signs tokens in tests
const TestSecret = "test-secret"

// Config returns a configuration pointing at a fresh SQLite file under t.TempDir()
func Config(t testing.TB) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.APIPrefix = "/api"
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "taluation.db")
	cfg.Auth.TokenSecret = TestSecret
	cfg.Auth.Issuer = "taluation-test"
	cfg.Auth.ExcludedPaths = config.DefaultExcludedPaths(cfg.Server.APIPrefix)
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Evaluation.MinScore = 1
	cfg.Evaluation.MaxScore = 5
	cfg.Logging.Level = "disabled"
	cfg.Logging.Format = "json"
	return cfg
}

// OpenDB opens and migrates the database described by cfg, closing it when the test ends
func OpenDB(t testing.TB, cfg *config.Config) *sqlx.DB {
	t.Helper()

	database, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.NewMigrator(database, zerolog.Nop()).Migrate(context.Background()))
	return database
}

// NewDB returns a migrated SQLite database in a temporary directory
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	return OpenDB(t, Config(t))
}
