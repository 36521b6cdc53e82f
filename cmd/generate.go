package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/lessons"
	"github.com/abhisek/fluentz/internal/performance"
	"github.com/abhisek/fluentz/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one lesson and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		skill, level := skillLevelFlags(cmd)
		number, _ := cmd.Flags().GetInt("lesson")
		personalize, _ := cmd.Flags().GetBool("personalize")

		if number < 1 {
			return fmt.Errorf("--lesson must be at least 1")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pipeline, err := newPipeline(ctx, st)
		if err != nil {
			return err
		}

		lesson, err := pipeline.GenerateOne(ctx, lessons.LessonRequest{
			Skill:        skill,
			Level:        level,
			LessonNumber: number,
			Performance:  learnerPerformance(cmd, st, skill, personalize),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), lesson)
	},
}

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Generate consecutive lessons and print them as a JSON array",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		skill, level := skillLevelFlags(cmd)
		start, _ := cmd.Flags().GetInt("start")
		count, _ := cmd.Flags().GetInt("count")
		modeName, _ := cmd.Flags().GetString("mode")
		personalize, _ := cmd.Flags().GetBool("personalize")

		mode, err := lessons.ParseMode(modeName)
		if err != nil {
			return err
		}
		if start < 1 || count < 1 {
			return fmt.Errorf("--start and --count must be at least 1")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pipeline, err := newPipeline(ctx, st)
		if err != nil {
			return err
		}

		generated, err := pipeline.GenerateMany(ctx, lessons.SequenceRequest{
			Skill:       skill,
			Level:       level,
			StartIndex:  start,
			Count:       count,
			Performance: learnerPerformance(cmd, st, skill, personalize),
			Mode:        mode,
		})
		if err != nil {
			return err
		}
		if len(generated) < count {
			logger.Warnf("Generated %d of %d lessons", len(generated), count)
		}
		return printJSON(cmd.OutOrStdout(), generated)
	},
}

// learnerPerformance summarizes the stored results for skill when
// personalize is set.
func learnerPerformance(cmd *cobra.Command, st *store.Store, skill curriculum.Skill, personalize bool) *performance.UserPerformance {
	if !personalize {
		return nil
	}
	perf := performance.Summarize(cmd.Context(), st.PerformanceLog(), skill, logger)
	return &perf
}

func skillLevelFlags(cmd *cobra.Command) (curriculum.Skill, curriculum.Level) {
	skill, _ := cmd.Flags().GetString("skill")
	level, _ := cmd.Flags().GetString("level")
	return curriculum.Skill(skill), curriculum.Level(level)
}

func addSkillLevelFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("skill", "s", string(curriculum.SkillReading), "Skill (listening, reading, speaking, writing, grammar, vocabulary)")
	cmd.Flags().StringP("level", "l", string(curriculum.LevelBeginner), "Level (beginner, intermediate, advanced)")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	addSkillLevelFlags(generateCmd)
	generateCmd.Flags().IntP("lesson", "n", 1, "Lesson number")
	generateCmd.Flags().Bool("personalize", false, "Adapt difficulty to recorded results")

	addSkillLevelFlags(sequenceCmd)
	sequenceCmd.Flags().Int("start", 1, "First lesson number")
	sequenceCmd.Flags().IntP("count", "c", 3, "Number of lessons")
	sequenceCmd.Flags().StringP("mode", "m", string(lessons.ModeBestEffort), "Failure policy: best-effort or strict")
	sequenceCmd.Flags().Bool("personalize", false, "Adapt difficulty to recorded results")
}
