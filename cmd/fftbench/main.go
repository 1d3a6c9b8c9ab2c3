package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fxnlabs/fftbench/internal/config"
	"github.com/fxnlabs/fftbench/internal/logger"
	"github.com/fxnlabs/fftbench/internal/metrics"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// app holds what the Before hook loads for the commands.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *cli.App {
	a := &app{cfg: config.Default(), log: zap.NewNop(), stdout: stdout, stderr: stderr}
	return &cli.App{
		Name:      "fftbench",
		Usage:     "Benchmark batched 1-D complex FFTs on the GPU and the CPU",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"FFTBENCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "verbosity",
				Usage:   "Log level: debug, info, warn or error",
				EnvVars: []string{"FFTBENCH_VERBOSITY"},
			},
			&cli.StringFlag{
				Name:    "metrics-textfile",
				Usage:   "Write Prometheus metrics to `FILE` on exit",
				EnvVars: []string{"FFTBENCH_METRICS_TEXTFILE"},
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				cfg, err := config.LoadConfig(path)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				a.cfg = cfg
			}
			if c.IsSet("verbosity") {
				a.cfg.Logger.Verbosity = c.String("verbosity")
			}
			if c.IsSet("metrics-textfile") {
				a.cfg.Metrics.Textfile = c.String("metrics-textfile")
			}
			zapLogger, err := logger.New(a.cfg.Logger.Verbosity)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			a.log = zapLogger.Named("fftbench")
			return nil
		},
		After: func(c *cli.Context) error {
			defer a.log.Sync() //nolint:errcheck
			if path := a.cfg.Metrics.Textfile; path != "" {
				if err := metrics.WriteTextfile(path); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
				a.log.Debug("wrote metrics", zap.String("path", path))
			}
			return nil
		},
		Commands: []*cli.Command{
			a.gpuCommand(),
			a.cpuCommand(),
			a.sweepCommand(),
			a.compareCommand(),
			a.configCommand(),
		},
	}
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).Run(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
