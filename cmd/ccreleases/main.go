// Package main provides the ccreleases CLI application entry point.
// ccreleases renders the Claude Code changelog as a searchable release timeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"ccreleases/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.CreateRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
