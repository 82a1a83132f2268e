package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/yigit/taluation/internal/bootstrap"
	"github.com/yigit/taluation/internal/config"
	"github.com/yigit/taluation/internal/pkg/helpers"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultIdleTimeout = 120 * time.Second
)

// Server owns the HTTP listener and the database handle behind it
type Server struct {
	config *config.Config
	http   *http.Server
	db     *sqlx.DB
	logger zerolog.Logger
}

// New wraps handler in an http.Server configured from cfg. database is closed on
// Shutdown and may be nil.
func New(cfg *config.Config, handler http.Handler, database *sqlx.DB, lgr zerolog.Logger) *Server {
	return &Server{
		config: cfg,
		db:     database,
		logger: lgr,
		http: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      handler,
			ReadTimeout:  helpers.ParseDuration(cfg.Server.ReadTimeout, defaultTimeout),
			WriteTimeout: helpers.ParseDuration(cfg.Server.WriteTimeout, defaultTimeout),
			IdleTimeout:  defaultIdleTimeout,
		},
	}
}

// Bootstrap loads configuration and wires the whole application into a Server
func Bootstrap(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return New(cfg, bootstrap.SetupRouter(cfg, deps, lgr), database, lgr), nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
func (s *Server) Run(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		listenErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.closeDB()
			return fmt.Errorf("error starting server: %w", err)
		}
		return s.closeDB()
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	// ctx is already done, so shutdown gets a fresh deadline
	return s.Shutdown(context.Background())
}

// Shutdown drains in-flight requests, then closes the database
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, helpers.ParseDuration(s.config.Server.ShutdownTimeout, defaultTimeout))
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	} else {
		s.logger.Info().Msg("HTTP server stopped")
	}

	if err := s.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) closeDB() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Database close error")
		return fmt.Errorf("database close: %w", err)
	}
	s.logger.Info().Msg("Database closed")
	return nil
}
