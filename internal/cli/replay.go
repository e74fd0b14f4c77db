package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/reasonkernel/internal/trace"
)

// AddReplayCommand adds the replay command to the root command.
func AddReplayCommand(root *cobra.Command, global *GlobalFlags) {
	var tracePath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "verify a trace's hash chain without re-executing the engine",
		Long: `Replay re-walks every record of a previously written NDJSON trace,
recomputing each record's hash and confirming the prev_hash chain and
monotonic index, without invoking the engine or any collaborator.

Examples:
  enginectl replay --trace trace.ndjson`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd.Context(), global, tracePath)
		},
	}

	cmd.Flags().StringVar(&tracePath, "trace", "", "path to an NDJSON trace file (required)")
	_ = cmd.MarkFlagRequired("trace")

	root.AddCommand(cmd)
}

func runReplay(_ context.Context, global *GlobalFlags, tracePath string) error {
	f, err := os.Open(tracePath) //nolint:gosec // operator-supplied trace path
	if err != nil {
		return fmt.Errorf("open trace file %s: %w", tracePath, err)
	}
	defer func() { _ = f.Close() }()

	verifyErr := trace.Verify(f)
	if global.Output == OutputText {
		if verifyErr != nil {
			fmt.Printf("trace chain invalid: %v\n", verifyErr)
		} else {
			fmt.Println("trace chain valid")
		}
		return verifyErr
	}

	status := "valid"
	message := ""
	if verifyErr != nil {
		status = "invalid"
		message = verifyErr.Error()
	}
	fmt.Printf(`{"status":%q,"message":%q}`+"\n", status, message)
	return verifyErr
}
