package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/carohq/cmdai/internal/infrastructure/cli"
)

func main() {
	// Interrupts cancel the root context; the pipeline turns that into a
	// clean Cancelled outcome instead of a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.Options{
		ConfigPath: os.Getenv("CMDAI_CONFIG"),
		Verbose:    isVerbose(),
	}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		if !cli.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("CMDAI_DEBUG"), "1") || strings.EqualFold(os.Getenv("CMDAI_DEBUG"), "true")
}
