package main

import (
	"fmt"
	"os"

	"github.com/fxnlabs/fftbench/fixtures"
	"github.com/fxnlabs/fftbench/internal/bench"
	"github.com/fxnlabs/fftbench/internal/cpufft"
	"github.com/fxnlabs/fftbench/internal/gpu"
	"github.com/fxnlabs/fftbench/internal/gpu/sim"
	"github.com/fxnlabs/fftbench/internal/report"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func batchFlag() cli.Flag {
	return &cli.IntFlag{Name: "batch", Usage: "Number of transforms per run", Required: true}
}

func lengthFlag() cli.Flag {
	return &cli.IntFlag{Name: "length", Usage: "Samples per transform", Required: true}
}

func simulateFlag() cli.Flag {
	return &cli.BoolFlag{Name: "simulate", Usage: "Run on the in-process simulated accelerator instead of CUDA"}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{Name: "output", Usage: "Write results to `FILE` instead of stdout"}
}

// positive rejects non-positive values of the named int flags.
func positive(c *cli.Context, names ...string) error {
	for _, name := range names {
		if v := c.Int(name); v <= 0 {
			return fmt.Errorf("--%s must be a positive integer, got %d", name, v)
		}
	}
	return nil
}

// openDevice returns the accelerator the GPU commands run on.
func (a *app) openDevice(simulate bool) (*gpu.Device, error) {
	var rt gpu.Runtime
	if simulate {
		rt = sim.New()
	} else {
		native, err := gpu.NewNativeRuntime()
		if err != nil {
			return nil, fmt.Errorf("%w (use --simulate to run without CUDA)", err)
		}
		rt = native
	}
	dev := gpu.NewDevice(rt, a.log.Named("gpu"))
	info, err := dev.Info()
	if err != nil {
		return nil, fmt.Errorf("query device: %w", err)
	}
	a.log.Info("using device",
		zap.String("name", info.Name),
		zap.String("backend", info.Backend),
		zap.String("compute_capability", info.ComputeCapability),
		zap.Int64("total_memory", info.TotalMemory),
		zap.Int64("free_memory", info.FreeMemory))
	return dev, nil
}

func (a *app) gpuCommand() *cli.Command {
	return &cli.Command{
		Name:  "gpu",
		Usage: "Time one batched forward transform on the accelerator",
		Flags: []cli.Flag{
			batchFlag(),
			lengthFlag(),
			simulateFlag(),
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Check that every transformed signal peaks at its input frequency",
			},
		},
		Action: func(c *cli.Context) error {
			if err := positive(c, "batch", "length"); err != nil {
				return err
			}
			dev, err := a.openDevice(c.Bool("simulate"))
			if err != nil {
				return err
			}
			driver := bench.NewGPUDriver(dev, a.log.Named("bench"), bench.WithVerify(c.Bool("verify")))
			res, err := driver.Run(bench.Params{Batch: c.Int("batch"), Length: c.Int("length")})
			if err != nil {
				return err
			}
			return report.WriteCSV(a.stdout, bench.PathGPU, []bench.Result{res})
		},
	}
}

func (a *app) cpuCommand() *cli.Command {
	return &cli.Command{
		Name:  "cpu",
		Usage: "Time one batched forward transform on a host worker pool",
		Flags: []cli.Flag{
			batchFlag(),
			lengthFlag(),
			&cli.IntFlag{
				Name:     "threads",
				Usage:    "Number of worker goroutines",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if err := positive(c, "batch", "length", "threads"); err != nil {
				return err
			}
			a.log.Info("host", zap.Stringer("cpu", cpufft.Host()))
			driver := bench.NewCPUDriver(c.Int("threads"), a.log.Named("bench"))
			res, err := driver.Run(bench.Params{Batch: c.Int("batch"), Length: c.Int("length")})
			if err != nil {
				return err
			}
			return report.WriteCSV(a.stdout, bench.PathCPU, []bench.Result{res})
		},
	}
}

func (a *app) sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Run every configured case",
		Subcommands: []*cli.Command{
			{
				Name:  "gpu",
				Usage: "Sweep the accelerator",
				Flags: []cli.Flag{simulateFlag(), outputFlag()},
				Action: func(c *cli.Context) error {
					dev, err := a.openDevice(c.Bool("simulate"))
					if err != nil {
						return err
					}
					renderBanner(a.stderr, "GPU Sweep")
					driver := bench.NewGPUDriver(dev, a.log.Named("bench"))
					cases := a.cfg.Sweep.Cases
					results := bench.Sweep(driver, cases, a.log, a.progress(len(cases)))
					return a.writeResults(c.String("output"), bench.PathGPU, results)
				},
			},
			{
				Name:  "cpu",
				Usage: "Sweep the host, keeping the best thread count per case",
				Flags: []cli.Flag{outputFlag()},
				Action: func(c *cli.Context) error {
					renderBanner(a.stderr, "CPU Sweep")
					fmt.Fprintf(a.stderr, "Host: %s\n\n", cpufft.Host())
					cases, threads := a.cfg.Sweep.Cases, a.cfg.Sweep.Threads
					results := bench.SweepCPU(cases, threads, a.log, a.progress(len(cases)*len(threads)))
					return a.writeResults(c.String("output"), bench.PathCPU, results)
				},
			},
		},
	}
}

// progress prints one line per attempted run to stderr.
func (a *app) progress(total int) bench.Progress {
	done := 0
	return func(p bench.Params, res bench.Result, err error) {
		done++
		if err != nil {
			fmt.Fprintf(a.stderr, "[%d/%d] batch=%d length=%d: failed: %v\n", done, total, p.Batch, p.Length, err)
			return
		}
		line := fmt.Sprintf("[%d/%d] batch=%d length=%d", done, total, p.Batch, p.Length)
		if res.Threads > 0 {
			line += fmt.Sprintf(" threads=%d", res.Threads)
		}
		fmt.Fprintf(a.stderr, "%s: %.3f ms, %.1f GFLOPS\n", line, res.TimeMs, res.GFLOPS)
	}
}

func (a *app) writeResults(flagPath string, path bench.Path, results []bench.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no %s case succeeded", path)
	}
	dest := flagPath
	if dest == "" {
		dest = a.cfg.Sweep.Output
	}
	if dest == "" {
		return report.WriteCSV(a.stdout, path, results)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, path, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info("wrote results", zap.String("path", dest), zap.Int("cases", len(results)))
	return nil
}

func (a *app) compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Render a markdown table comparing CPU and GPU sweep results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cpu", Usage: "CPU results `FILE`", Required: true},
			&cli.StringFlag{Name: "gpu", Usage: "GPU results `FILE`", Required: true},
		},
		Action: func(c *cli.Context) error {
			cpuResults, err := readResults(c.String("cpu"), bench.PathCPU)
			if err != nil {
				return err
			}
			gpuResults, err := readResults(c.String("gpu"), bench.PathGPU)
			if err != nil {
				return err
			}
			rows := report.Compare(cpuResults, gpuResults)
			if len(rows) == 0 {
				return fmt.Errorf("no case appears in both %s and %s", c.String("cpu"), c.String("gpu"))
			}
			return report.WriteMarkdown(a.stdout, rows)
		},
	}
}

func readResults(name string, want bench.Path) ([]bench.Result, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	path, results, err := report.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if path != want {
		return nil, fmt.Errorf("%s: holds %s results, want %s", name, path, want)
	}
	return results, nil
}

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print a configuration file with the default settings",
		Action: func(c *cli.Context) error {
			_, err := a.stdout.Write(fixtures.ConfigTemplate)
			return err
		},
	}
}
