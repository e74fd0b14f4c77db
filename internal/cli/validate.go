package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/reasonkernel/internal/schema"
)

// AddValidateCommand adds the validate command to the root command.
func AddValidateCommand(root *cobra.Command, global *GlobalFlags) {
	var problemPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "check a problem spec against the structural schema",
		Long: `Validate loads a ProblemSpec from a JSON file and checks it against
the structural schema without executing the engine: version format, loop
settings, and stop-condition grammar.

Examples:
  enginectl validate --problem problem.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), global, problemPath)
		},
	}

	cmd.Flags().StringVar(&problemPath, "problem", "", "path to a ProblemSpec JSON file (required)")
	_ = cmd.MarkFlagRequired("problem")

	root.AddCommand(cmd)
}

func runValidate(_ context.Context, global *GlobalFlags, problemPath string) error {
	problem, err := loadProblemSpec(problemPath)
	if err != nil {
		return err
	}

	result := schema.ValidateProblemSpec(problem)
	if result.Valid() {
		if global.Output == OutputText {
			fmt.Println("valid")
		} else {
			fmt.Println(`{"valid":true}`)
		}
		return nil
	}

	if global.Output == OutputText {
		fmt.Printf("invalid: %v\n", result.Err())
	} else {
		fmt.Printf(`{"valid":false,"error":%q}`+"\n", result.Err().Error())
	}
	return result.Err()
}
