package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// cliConfig holds parsed command-line options. Empty strings defer to the
// config file.
type cliConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	MetricsAddr string
	Watch       bool
	Hold        bool
	Batches     int
	Items       int
}

// parseArgs returns the parsed options, whether to exit cleanly, or an ExitError.
func parseArgs(args []string, output io.Writer) (*cliConfig, bool, error) {
	fs := flag.NewFlagSet("poolctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
poolctl - run a hybrid fork-join and actor workload on a worker pool.

Usage:
  poolctl [options]

Options:
`)
		fs.PrintDefaults()
	}

	cfg := &cliConfig{}
	fs.StringVar(&cfg.ConfigPath, "config", "", "Path to an HCL pool config file.")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Logging level: debug, info, warn, error.")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log output format: text or json.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Address for the /metrics endpoint. Empty disables it.")
	fs.BoolVar(&cfg.Watch, "watch", false, "Reload tuning when the config file changes.")
	fs.BoolVar(&cfg.Hold, "hold", false, "Keep serving after the workload until interrupted.")
	fs.IntVar(&cfg.Batches, "batches", 16, "Number of batches pushed through the pipeline.")
	fs.IntVar(&cfg.Items, "items", 4096, "Items per batch.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid --log-format %q", cfg.LogFormat)}
	}
	if cfg.Batches <= 0 || cfg.Items <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "--batches and --items must be positive"}
	}
	if cfg.Watch && cfg.ConfigPath == "" {
		return nil, false, &ExitError{Code: 2, Message: "--watch requires --config"}
	}
	return cfg, false, nil
}
