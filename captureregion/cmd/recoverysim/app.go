package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"go.viam.com/pushrecovery/captureregion"
	"go.viam.com/pushrecovery/captureregion/regionplot"
	"go.viam.com/pushrecovery/control"
	"go.viam.com/pushrecovery/logging"
	"go.viam.com/pushrecovery/stepconstraint"
)

const (
	flagScenario    = "scenario"
	flagConstraints = "constraints"
	flagPlot        = "plot"
	flagIterations  = "iterations"
	flagFrequency   = "frequency"
	flagDuration    = "duration"
	flagWorkers     = "workers"
	flagDebug       = "debug"
	flagLogFile     = "log-file"

	plotSize     = 8 * vg.Inch
	logFileMaxMB = 64
)

func newApp() *cli.App {
	var logger logging.Logger
	var logFile *logging.FileAppender
	scenarioFlag := &cli.StringFlag{
		Name:      flagScenario,
		Aliases:   []string{"s"},
		Usage:     "planning problem to solve, as JSON `FILE`",
		Required:  true,
		TakesFile: true,
	}
	constraintsFlag := &cli.StringFlag{
		Name:      flagConstraints,
		Usage:     "step constraint regions, as JSON `FILE`",
		TakesFile: true,
	}

	return &cli.App{
		Name:  "recoverysim",
		Usage: "plan push recovery steps",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:      flagLogFile,
				Usage:     "also write JSON logs to `FILE`, rotated as it grows",
				TakesFile: true,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("recoverysim")
			} else {
				logger = logging.NewLogger("recoverysim")
			}
			if path := c.String(flagLogFile); path != "" {
				logFile = logging.NewFileAppender(path, logFileMaxMB)
				logger.AddAppender(logFile)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if logFile == nil {
				return nil
			}
			return logFile.Close()
		},
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "plan recovery steps once and print them",
				Flags: []cli.Flag{
					scenarioFlag,
					constraintsFlag,
					&cli.StringFlag{
						Name:      flagPlot,
						Usage:     "save a figure of the plan to `FILE` (png, svg or pdf)",
						TakesFile: true,
					},
				},
				Action: func(c *cli.Context) error {
					return planAction(c, logger)
				},
			},
			{
				Name:  "bench",
				Usage: "time repeated planning of a scenario",
				Flags: []cli.Flag{
					scenarioFlag,
					constraintsFlag,
					&cli.IntFlag{
						Name:  flagIterations,
						Usage: "number of plans to time",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  flagWorkers,
						Usage: "number of calculators planning concurrently",
						Value: 1,
					},
				},
				Action: func(c *cli.Context) error {
					return benchAction(c, logger)
				},
			},
			{
				Name:  "run",
				Usage: "plan periodically, reloading constraint regions when their file changes",
				Flags: []cli.Flag{
					scenarioFlag,
					constraintsFlag,
					&cli.Float64Flag{
						Name:  flagFrequency,
						Usage: "planning rate in Hz",
						Value: 100,
					},
					&cli.DurationFlag{
						Name:  flagDuration,
						Usage: "how long to run, forever when zero",
					},
				},
				Action: func(c *cli.Context) error {
					return runAction(c, logger)
				},
			},
		},
	}
}

// newCalculator builds the calculator of a scenario, constrained by the regions in the
// constraints file when one is given.
func newCalculator(s *scenario, constraintsPath string, logger logging.Logger) (*captureregion.RecoveryStepCalculator, error) {
	calc, err := captureregion.NewRecoveryStepCalculator(s.Planner, nil, logger.Sublogger("planner"))
	if err != nil {
		return nil, err
	}
	if constraintsPath != "" {
		cfg, err := stepconstraint.ReadFileConfig(constraintsPath)
		if err != nil {
			return nil, err
		}
		calc.SetConstraintRegionProvider(stepconstraint.StaticProvider(cfg.Regions()))
	}
	return calc, nil
}

func planAction(c *cli.Context, logger logging.Logger) error {
	s, err := readScenario(c.String(flagScenario))
	if err != nil {
		return err
	}
	calc, err := newCalculator(s, c.String(flagConstraints), logger)
	if err != nil {
		return err
	}
	state := s.state()
	if _, err := calc.ComputeRecoverySteps(state.SwingSide, state.NextTransferDuration, state.MinSwingTime, state.MaxSwingTime,
		state.StancePose, state.ICP, state.Omega0, state.FootPolygon); err != nil {
		return errors.Wrap(err, "cannot plan recovery steps")
	}
	plan := calc.Snapshot()
	fmt.Fprintln(c.App.Writer, plan.String())

	if path := c.String(flagPlot); path != "" {
		if err := regionplot.RenderPlan(plan, path, plotSize, plotSize); err != nil {
			return err
		}
		logger.Infow("saved plan figure", "path", path)
	}
	return nil
}

func benchAction(c *cli.Context, logger logging.Logger) error {
	iterations := c.Int(flagIterations)
	if iterations < 1 {
		return errors.Errorf("--%s must be positive, got %d", flagIterations, iterations)
	}
	workers := c.Int(flagWorkers)
	if workers < 1 {
		return errors.Errorf("--%s must be positive, got %d", flagWorkers, workers)
	}
	workers = min(workers, iterations)
	s, err := readScenario(c.String(flagScenario))
	if err != nil {
		return err
	}
	// a calculator is not safe for concurrent use, so every worker gets its own
	calcs := make([]*captureregion.RecoveryStepCalculator, workers)
	for i := range calcs {
		if calcs[i], err = newCalculator(s, c.String(flagConstraints), logger); err != nil {
			return err
		}
	}
	state := s.state()

	durations := make([][]float64, workers)
	group, ctx := errgroup.WithContext(c.Context)
	for w := 0; w < workers; w++ {
		w := w
		group.Go(func() error {
			calc := calcs[w]
			for i := w; i < iterations; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				if _, err := calc.ComputeRecoverySteps(state.SwingSide, state.NextTransferDuration, state.MinSwingTime,
					state.MaxSwingTime, state.StancePose, state.ICP, state.Omega0, state.FootPolygon); err != nil {
					return errors.Wrap(err, "cannot plan recovery steps")
				}
				durations[w] = append(durations[w], float64(time.Since(start).Microseconds()))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	summary, err := summarize(lo.Flatten(durations))
	if err != nil {
		return err
	}
	calc := calcs[0]
	fmt.Fprintf(c.App.Writer, "%d plans, %d steps, capturable: %t\n", iterations, calc.NumberOfRecoverySteps(), calc.IsStateCapturable())
	fmt.Fprintf(c.App.Writer, "mean %.1fus  p50 %.1fus  p99 %.1fus  max %.1fus\n", summary.mean, summary.p50, summary.p99, summary.max)
	return nil
}

type benchSummary struct {
	mean, p50, p99, max float64
}

func summarize(durations []float64) (benchSummary, error) {
	var summary benchSummary
	data := stats.LoadRawData(durations)
	var err error
	if summary.mean, err = data.Mean(); err != nil {
		return summary, errors.Wrap(err, "cannot compute mean")
	}
	if summary.p50, err = data.Percentile(50); err != nil {
		return summary, errors.Wrap(err, "cannot compute median")
	}
	if summary.p99, err = data.Percentile(99); err != nil {
		return summary, errors.Wrap(err, "cannot compute 99th percentile")
	}
	if summary.max, err = data.Max(); err != nil {
		return summary, errors.Wrap(err, "cannot compute max")
	}
	return summary, nil
}

func runAction(c *cli.Context, logger logging.Logger) error {
	s, err := readScenario(c.String(flagScenario))
	if err != nil {
		return err
	}
	calc, err := newCalculator(s, "", logger)
	if err != nil {
		return err
	}
	if path := c.String(flagConstraints); path != "" {
		provider, err := stepconstraint.NewFileProvider(path, logger.Sublogger("constraints"))
		if err != nil {
			return err
		}
		defer func() {
			if err := provider.Close(); err != nil {
				logger.Warnw("cannot close constraint provider", "error", err)
			}
		}()
		calc.SetConstraintRegionProvider(provider.Provider())
	}

	state := s.state()
	source := control.StateSourceFunc(func(context.Context) (*control.RecoveryState, error) {
		return state, nil
	})
	loop, err := control.NewRecoveryLoop(control.LoopConfig{Frequency: c.Float64(flagFrequency)}, calc, source, nil, logger.Sublogger("loop"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if duration := c.Duration(flagDuration); duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	if err := loop.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	loop.Stop()

	plan := loop.LatestPlan()
	if plan == nil {
		return errors.New("no plan was computed")
	}
	fmt.Fprintf(c.App.Writer, "%d plans\n", loop.TickCount())
	fmt.Fprintln(c.App.Writer, plan.String())
	return nil
}
