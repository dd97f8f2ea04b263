package svcutil

import (
	"fmt"
	"io"
	"log/slog"

	cli "github.com/urfave/cli/v2"
)

// Builds the process JSON logger from the --log-level flag (error, warn, info, debug, or an
// offset like "info+2") and makes it the default.
func ConfigLogger(cctx *cli.Context, writer io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cctx.String("log-level"))); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger, nil
}
