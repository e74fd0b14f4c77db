package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mrz1836/reasonkernel/internal/adapters/metricsagg"
	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/config"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/engine"
	"github.com/mrz1836/reasonkernel/internal/steps"
	"github.com/mrz1836/reasonkernel/internal/trace"
)

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, global *GlobalFlags) {
	var problemPath, traceOutPath, traceID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "execute a problem spec through the reasoning engine",
		Long: `Run loads a ProblemSpec from a JSON file, executes it to completion
through the fixed reasoning graph, and writes the resulting hash-chained
trace as NDJSON.

Examples:
  enginectl run --problem problem.json --trace-out trace.ndjson
  enginectl run --problem problem.json --trace-id req-42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), global, problemPath, traceOutPath, traceID)
		},
	}

	cmd.Flags().StringVar(&problemPath, "problem", "", "path to a ProblemSpec JSON file (required)")
	cmd.Flags().StringVar(&traceOutPath, "trace-out", "", "path to write the NDJSON trace (defaults to <trace.dir>/<trace-id>.ndjson)")
	cmd.Flags().StringVar(&traceID, "trace-id", "", "trace identifier (defaults to a generated UUID)")
	_ = cmd.MarkFlagRequired("problem")

	root.AddCommand(cmd)
}

func runRun(ctx context.Context, global *GlobalFlags, problemPath, traceOutPath, traceID string) error {
	logger := Logger()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}

	problem, err := loadProblemSpec(problemPath)
	if err != nil {
		return err
	}

	if traceID == "" {
		traceID = uuid.NewString()
	}
	if traceOutPath == "" {
		traceOutPath = filepath.Join(cfg.Trace.Dir, traceID+".ndjson")
	}
	if err := os.MkdirAll(filepath.Dir(traceOutPath), 0o755); err != nil { //nolint:mnd // standard directory mode
		return fmt.Errorf("create trace directory: %w", err)
	}

	f, err := os.Create(traceOutPath) //nolint:gosec // operator-supplied output path
	if err != nil {
		return fmt.Errorf("create trace file %s: %w", traceOutPath, err)
	}
	defer func() { _ = f.Close() }()

	prov, err := buildProvider(cfg.Provider)
	if err != nil {
		return err
	}

	writer := trace.NewWriter(f, logger)
	agg := metricsagg.NewAggregator()
	runner := engine.New(clock.RealClock{}, steps.Dependencies{Provider: prov}, engine.WithMetrics(agg))

	result, err := runner.Run(ctx, problem, writer, traceID)
	if err != nil {
		return fmt.Errorf("run engine: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}

	snapshot := agg.Snapshot()
	logger.Debug().
		Int("runs_started", snapshot.RunsStarted).
		Int("loop_iterations", snapshot.LoopIterations).
		Int("steps_recorded", len(snapshot.Steps)).
		Msg("run metrics recorded")

	return printResult(global.Output, result)
}

func loadProblemSpec(path string) (domain.ProblemSpec, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied problem path
	if err != nil {
		return domain.ProblemSpec{}, fmt.Errorf("read problem spec %s: %w", path, err)
	}

	var problem domain.ProblemSpec
	if err := json.Unmarshal(raw, &problem); err != nil {
		return domain.ProblemSpec{}, fmt.Errorf("parse problem spec %s: %w", path, err)
	}
	return problem, nil
}

func printResult(output string, result engine.Result) error {
	if output == OutputText {
		fmt.Printf("status: %s\n", result.FinalState.Status)
		fmt.Printf("step_index: %d\n", result.FinalState.StepIndex)
		fmt.Printf("trace_id: %s\n", result.FinalState.Metadata.TraceID)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.FinalState)
}
