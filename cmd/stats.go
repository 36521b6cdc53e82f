package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/performance"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the learner's performance summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		skill, _ := cmd.Flags().GetString("skill")
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		perf := performance.Summarize(ctx, st.PerformanceLog(), curriculum.Skill(skill), logger)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), perf)
		}
		printPerformance(cmd.OutOrStdout(), perf)
		return nil
	},
}

func printPerformance(w io.Writer, perf performance.UserPerformance) {
	if perf.CompletedLessons == 0 {
		fmt.Fprintln(w, "No lesson results recorded yet.")
		return
	}

	fmt.Fprintf(w, "Lessons completed: %d\n", perf.CompletedLessons)
	fmt.Fprintf(w, "Average score:     %.1f%%\n", perf.AverageScore)
	fmt.Fprintf(w, "Trend:             %s\n", perf.Trend())
	fmt.Fprintf(w, "Weak areas:        %s\n", listOrNone(perf.WeakAreas))
	fmt.Fprintf(w, "Strong areas:      %s\n", listOrNone(perf.StrongAreas))

	if len(perf.SkillBreakdown) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s  %9s  %8s  %s\n", "Skill", "Completed", "Average", "Last")
	fmt.Fprintln(w, strings.Repeat("─", 52))
	for _, s := range curriculum.AllSkills() {
		sp, ok := perf.SkillBreakdown[s]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-12s  %9d  %7.1f%%  %s\n",
			s.DisplayName(),
			sp.CompletedLessons,
			sp.AverageScore,
			sp.LastCompleted.Local().Format("2006-01-02 15:04"),
		)
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func init() {
	statsCmd.Flags().StringP("skill", "s", "", "Only summarize this skill")
	statsCmd.Flags().Bool("json", false, "Print the summary as JSON")
}
