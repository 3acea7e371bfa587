package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sensoriumtl/trellis"
	"github.com/sensoriumtl/trellis/internal/examplecalc"
	"github.com/sensoriumtl/trellis/metrics"
	"github.com/sensoriumtl/trellis/observers"
)

func runDemo() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		slog.Warn("unrecognised log level, defaulting to info", "value", cfg.LogLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	slog.Info("trellis-demo starting",
		"dimensions", cfg.Dimensions,
		"step_size", cfg.StepSize,
		"max_iter", cfg.MaxIter,
		"tolerance", cfg.Tolerance,
	)

	diagonal := make(examplecalc.Vector, cfg.Dimensions)
	target := make(examplecalc.Vector, cfg.Dimensions)
	start := make(examplecalc.Vector, cfg.Dimensions)
	for i := range diagonal {
		diagonal[i] = float64(i + 1)
		target[i] = 1.0
		start[i] = 0.0
	}

	problem := examplecalc.Problem{Diagonal: diagonal, Target: target}
	calc := examplecalc.QuadraticCalculation{}

	var provider metrics.Provider = metrics.NewNoopProvider()
	if cfg.MetricsEnable {
		provider = metrics.NewBasicProvider()
	}

	builder := trellis.BuildFor[examplecalc.Problem, float64, examplecalc.Vector, *examplecalc.State, examplecalc.Vector](
		calc,
		problem,
		func() *examplecalc.State { return examplecalc.NewState(start, cfg.StepSize) },
	).
		Configure(func(s *trellis.State[float64, examplecalc.Vector, *examplecalc.State]) {
			s.SetMaxIter(cfg.MaxIter)
			s.SetRelativeTolerance(cfg.Tolerance)
		}).
		AttachObserver(observers.NewTerminal[float64, examplecalc.Vector, *examplecalc.State](logger, slog.LevelInfo), trellis.Every(100)).
		AttachObserver(observers.NewTerminal[float64, examplecalc.Vector, *examplecalc.State](logger, slog.LevelInfo), trellis.OnExit()).
		WithMetrics(provider)

	if cfg.OutputFile != "" {
		format := observers.FormatJSON
		if cfg.OutputFormat == "csv" {
			format = observers.FormatCSV
		}
		fileObs := observers.NewFile[float64, examplecalc.Vector, *examplecalc.State](observers.FileOptions{
			Filename:   cfg.OutputFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		}, format)
		defer fileObs.Close()
		builder = builder.AttachObserver(fileObs, trellis.Always())
	}

	runner, err := builder.Finalise()
	if err != nil {
		return fmt.Errorf("failed to build runner: %w", err)
	}

	output, err := runner.Run(context.Background())
	if err != nil {
		if runErr, ok := err.(*trellis.RunError[float64, examplecalc.Vector, *examplecalc.State, examplecalc.Vector]); ok {
			slog.Error("calculation terminated abnormally",
				"cause", runErr.Cause.String(),
				"err", runErr.Err,
			)
			return runErr
		}
		return err
	}

	slog.Info("calculation converged",
		"result", output.Result,
		"iterations", output.State.Iter(),
		"best_error", output.State.BestError(),
	)
	return nil
}
