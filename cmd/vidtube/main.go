package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/romariotrain/vidtube/internal/app"
	"github.com/romariotrain/vidtube/internal/config"
)

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(app.Run("vidtube", cfg.LogLevel, func(ctx context.Context, logger zerolog.Logger) error {
		return run(ctx, cfg, logger)
	}))
}
