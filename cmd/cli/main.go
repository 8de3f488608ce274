package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/wlog/internal/client/cli"
	"github.com/dmitrijs2005/wlog/internal/client/config"
	"github.com/dmitrijs2005/wlog/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "cannot open log", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}

}
