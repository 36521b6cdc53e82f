package lessons

import (
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/fluentz/internal/curriculum"
)

// NextLessonIndex returns the index of the next lesson for skill and
// level: the number of completed ids containing "skill-level", plus one.
func NextLessonIndex(completed []string, skill curriculum.Skill, level curriculum.Level) int {
	prefix := string(skill) + "-" + string(level)
	return lo.CountBy(completed, func(id string) bool {
		return strings.Contains(id, prefix)
	}) + 1
}
