package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/taluation/internal/testutil"
)

func TestNew_AppliesTimeouts(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.Server.Port = "9999"
	cfg.Server.ReadTimeout = "3s"
	cfg.Server.WriteTimeout = "bogus"

	s := New(cfg, http.NotFoundHandler(), nil, zerolog.Nop())
	assert.Equal(t, ":9999", s.http.Addr)
	assert.Equal(t, 3*time.Second, s.http.ReadTimeout)
	assert.Equal(t, defaultTimeout, s.http.WriteTimeout)
}

func TestRun_StopsOnCancelAndClosesDB(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.Server.Port = "0"
	database := testutil.OpenDB(t, cfg)

	s := New(cfg, http.NotFoundHandler(), database, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Error(t, database.Ping())
}
