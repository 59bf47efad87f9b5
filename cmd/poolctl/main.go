// File: cmd/poolctl/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// poolctl runs a hybrid fork-join and actor workload on an InterThreadPool,
// serves Prometheus metrics and hot-reloads tuning from an HCL file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Minimal logger until the configured one is built.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run parses args and executes the workload. Results go to outW, logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	cfg, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	return newApp(cfg, outW, logW).Run(ctx)
}
