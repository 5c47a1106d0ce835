// Command nyx is the cross-language static vulnerability scanner CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/nyx-scan/nyx/internal/cli"
)

func main() {
	level := slog.LevelWarn
	if os.Getenv("NYX_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	os.Exit(cli.Execute())
}
