package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/lessons"
	"github.com/abhisek/fluentz/internal/performance"
)

var nextIndexCmd = &cobra.Command{
	Use:   "next-index [completed-id...]",
	Short: "Print the next lesson number for a skill and level",
	Long: "Counts the completed lesson ids that belong to the skill and level and prints " +
		"the number of the next lesson. Without ids, the recorded results are used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		skill, level := skillLevelFlags(cmd)

		completed := args
		if len(completed) == 0 {
			ids, err := recordedLessonIDs(cmd)
			if err != nil {
				return err
			}
			completed = ids
		}

		fmt.Fprintln(cmd.OutOrStdout(), lessons.NextLessonIndex(completed, skill, level))
		return nil
	},
}

func recordedLessonIDs(cmd *cobra.Command) ([]string, error) {
	st, err := openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer st.Close()

	results, err := st.PerformanceLog().Results(cmd.Context())
	if err != nil {
		logger.WithError(err).Warn("performance log unreadable, treating as empty")
		return nil, nil
	}

	return lo.Map(results, func(r performance.LessonResult, _ int) string {
		return r.LessonID
	}), nil
}

func init() {
	addSkillLevelFlags(nextIndexCmd)
}
