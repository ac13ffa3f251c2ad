package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/user-service/internal/bootstrap"
	"github.com/baechuer/user-service/internal/logger"
)

const shutdownTimeout = 15 * time.Second

// server is what Run needs from *http.Server.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

type builder func() (server, string, func(), error)

// Run serves until ctx is done or the listener fails, then drains in-flight
// requests. It returns the process exit code.
func Run(ctx context.Context, build builder, lg zerolog.Logger) int {
	srv, addr, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", addr).Msg("user service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		lg.Info().Msg("shutdown requested")
	case err := <-errCh:
		lg.Error().Err(err).Msg("listener failed")
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("drain timed out, closing connections")
		_ = srv.Close()
		return 1
	}

	lg.Info().Msg("shutdown complete")
	return 0
}

func buildServer() (server, string, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, "", nil, err
	}
	return srv, srv.Addr, cleanup, nil
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, buildServer, logger.Logger)
	stop()
	os.Exit(code)
}
