package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/taluation/internal/app/controllers"
	appMigrations "github.com/yigit/taluation/internal/app/migrations"
	appRepos "github.com/yigit/taluation/internal/app/repositories"
	appRoutes "github.com/yigit/taluation/internal/app/routes"
	appServices "github.com/yigit/taluation/internal/app/services"
	"github.com/yigit/taluation/internal/config"
	"github.com/yigit/taluation/internal/db"
	appMiddleware "github.com/yigit/taluation/internal/middleware"
	pkgAuth "github.com/yigit/taluation/internal/pkg/auth"
	"github.com/yigit/taluation/internal/pkg/logger"
	"github.com/yigit/taluation/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB                   *sqlx.DB
	Repos                *appRepos.Repositories
	Services             *appServices.Services
	TokenIssuer          *pkgAuth.TokenIssuer
	AuthMiddleware       *appMiddleware.AuthMiddleware
	AccountController    *appControllers.AccountController
	ClassController      *appControllers.ClassController
	EvaluationController *appControllers.EvaluationController
	HealthController     *appControllers.HealthController
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := SetupLogger(cfg)
	return cfg, lgr, nil
}

// SetupLogger configures the global logger from cfg and returns it
func SetupLogger(cfg *config.Config) zerolog.Logger {
	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := logger.Component("app")
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return lgr
}

// SetupDatabase opens the database, runs migrations and seeds default data. An
// unreachable database is logged and the returned handle is kept so the service
// starts degraded instead of exiting; only configuration errors are fatal.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*sqlx.DB, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to open database")
		return nil, err
	}

	if err := db.Ping(ctx, database); err != nil {
		lgr.Error().Err(err).Msg("Database unreachable, continuing in degraded state")
		return database, nil
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database, lgr.With().Str("component", "migrator").Logger())
	if err := migrator.Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, appRepos.NewRepositories(database), cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *sqlx.DB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(database)

	tokenIssuer, err := pkgAuth.NewTokenIssuer(pkgAuth.TokenConfig{
		SecretKey:   cfg.Auth.TokenSecret,
		TokenIssuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	deps.TokenIssuer = tokenIssuer

	deps.Services = appServices.NewServices(appServices.Dependencies{
		DB:           database,
		Repositories: deps.Repos,
		TokenIssuer:  tokenIssuer,
		PasswordCost: cfg.Auth.BcryptCost,
		ScoreRange: appServices.ScoreRange{
			Min: cfg.Evaluation.MinScore,
			Max: cfg.Evaluation.MaxScore,
		},
		Logger: lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(
		deps.Services.AuthService,
		cfg.Auth.ExcludedPaths,
		lgr.With().Str("component", "auth_gate").Logger(),
	)

	deps.AccountController = appControllers.NewAccountController(
		deps.Services.AuthService,
		deps.Services.AccountService,
		deps.Services.Authorization,
		lgr,
	)
	deps.ClassController = appControllers.NewClassController(deps.Services.ClassService, deps.Services.Authorization)
	deps.EvaluationController = appControllers.NewEvaluationController(deps.Services.EvaluationService, deps.Services.Authorization)
	deps.HealthController = appControllers.NewHealthController(database)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()))
	router.Use(deps.AuthMiddleware.Gate())

	appRoutes.SetupRouter(router, cfg.Server.APIPrefix, appRoutes.Controllers{
		Account:    deps.AccountController,
		Class:      deps.ClassController,
		Evaluation: deps.EvaluationController,
		Health:     deps.HealthController,
	})

	return router
}
