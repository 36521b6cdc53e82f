package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/performance"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Record lesson results",
}

var resultsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a lesson result read from a JSON file (- for stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		file, _ := cmd.Flags().GetString("file")

		result, err := readResult(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.PerformanceLog().Append(ctx, result); err != nil {
			return fmt.Errorf("append result: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s (%.0f%%)\n", result.LessonID, result.Percentage())
		return nil
	},
}

func readResult(stdin io.Reader, file string) (performance.LessonResult, error) {
	var result performance.LessonResult

	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return result, fmt.Errorf("open result file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return result, fmt.Errorf("decode result: %w", err)
	}
	if result.Skill == "" || result.Level == "" {
		return result, fmt.Errorf("result needs a skill and a level")
	}
	if result.MaxScore <= 0 || result.Score < 0 {
		return result, fmt.Errorf("result needs a non-negative score and a positive maxScore")
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}
	return result, nil
}

func init() {
	resultsAddCmd.Flags().StringP("file", "f", "-", "Result JSON file")
	resultsCmd.AddCommand(resultsAddCmd)
}
