package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

type Runner func(ctx context.Context, logger zerolog.Logger) error

// Run executes run until it returns or the process receives SIGINT/SIGTERM,
// and reports the process exit code. On a signal the runner's context is
// cancelled and Run waits for it to finish its own shutdown.
func Run(serviceName, logLevel string, run Runner) int {
	logger := NewLogger(serviceName, logLevel)
	logger.Info().Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return wait(ctx, logger, run)
}

func wait(ctx context.Context, logger zerolog.Logger, run Runner) int {
	if err := run(ctx, logger); err != nil {
		logger.Error().Err(err).Msg("failed")
		return 1
	}

	if ctx.Err() != nil {
		logger.Info().Msg("shut down")
	} else {
		logger.Info().Msg("stopped")
	}
	return 0
}
