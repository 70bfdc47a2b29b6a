package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/meridian-ai/meridian/internal/config"
	"github.com/meridian-ai/meridian/internal/eval"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the evaluation suite against the pipeline",
	Long: `Run an evaluation suite and report how well the planner classifies
queries and how often runs take the expected path.

Without --suite the built-in suite of ten canonical queries runs:
five complex research requests, three simple metric lookups and two
edge cases. Custom suites are YAML files with the same case schema.

The approval gate is always off during evaluation; a suspended case
would count as a failure.`,
	Example: `  # Built-in suite
  meridian eval

  # Only the simple lookup cases
  meridian eval --category simple

  # Custom suite, four cases at a time
  meridian eval --suite suites/earnings.yaml --parallel 4`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

var (
	evalSuiteFile string
	evalCategory  string
	evalParallel  int
)

func init() {
	evalCmd.Flags().StringVar(&evalSuiteFile, "suite", "", "Path to a YAML suite file (default: built-in suite)")
	evalCmd.Flags().StringVar(&evalCategory, "category", "", "Only run cases in this category")
	evalCmd.Flags().IntVar(&evalParallel, "parallel", 1, "Number of cases to run concurrently")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	suite := eval.DefaultSuite()
	if evalSuiteFile != "" {
		loaded, err := eval.LoadSuite(evalSuiteFile)
		if err != nil {
			return err
		}
		suite = loaded
	}
	if evalCategory != "" {
		suite = suite.Filter(evalCategory)
	}

	coord, err := newCoordinator(func(cfg *config.Config) {
		cfg.Engine.RequireApproval = false
	})
	if err != nil {
		return err
	}

	runner := eval.NewRunner(coord,
		eval.WithParallelism(evalParallel),
		eval.WithLogger(appLogger),
	)

	summary, err := runner.Run(ctx, suite)
	if err != nil {
		return err
	}

	if globalFlags.OutputFormat() == internal.FormatJSON {
		formatter := internal.NewFormatter(internal.FormatJSON, cmd.OutOrStdout())
		if err := formatter.PrintJSON(summary); err != nil {
			return err
		}
	} else {
		if err := printEvalTable(cmd, summary); err != nil {
			return err
		}
		cmd.Println()
		cmd.Println(summary.String())
	}

	if summary.Failed > 0 {
		return internal.NewCLIError(internal.ExitEvalFailed,
			fmt.Sprintf("%d of %d cases failed", summary.Failed, summary.Total))
	}
	return nil
}

func printEvalTable(cmd *cobra.Command, summary *eval.Summary) error {
	headers := []string{"case", "result", "complexity", "path", "quality", "time"}
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		result := "pass"
		switch {
		case res.Err != nil:
			result = "error"
		case !res.Passed():
			result = "fail"
		}
		rows = append(rows, []string{
			res.Case.ID,
			result,
			res.Complexity,
			res.Path,
			strconv.Itoa(res.QualityScore),
			res.Duration.Round(time.Millisecond).String(),
		})
	}

	formatter := internal.NewFormatter(internal.FormatText, cmd.OutOrStdout())
	if err := formatter.PrintTable(headers, rows); err != nil {
		return err
	}

	// Case errors print after the table so the grid stays aligned.
	for _, res := range summary.Results {
		if res.Err != nil {
			cmd.PrintErrf("%s: %v\n", res.Case.ID, res.Err)
		}
	}
	return nil
}
