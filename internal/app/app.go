package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildchat/internal/config"
	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/metrics"
	transporthttp "github.com/vovakirdan/guildchat/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	acl, err := cfg.AccessTable()
	if err != nil {
		return nil, fmt.Errorf("build access table: %w", err)
	}
	policy, err := core.ParseSessionPolicy(cfg.SessionPolicy)
	if err != nil {
		return nil, fmt.Errorf("session policy: %w", err)
	}

	recorder := metrics.New()
	hub := core.NewHub(acl,
		core.WithLogger(logger),
		core.WithRecorder(recorder),
		core.WithSessionPolicy(policy),
	)
	server := transporthttp.NewServer(hub, cfg, logger, recorder.Handler())

	logger.Info().
		Int("servers", len(cfg.Servers)).
		Str("session_policy", string(policy)).
		Msg("access table loaded")

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	// Hijacked WebSocket connections are not tracked by Shutdown; they end
	// when their base context is cancelled.
	connCtx, closeConns := context.WithCancel(context.Background())
	defer closeConns()
	a.server.BaseContext = func(net.Listener) context.Context { return connCtx }
	a.server.RegisterOnShutdown(closeConns)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
