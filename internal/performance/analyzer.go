package performance

import (
	"sort"
	"time"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/samber/lo"
)

const (
	// RecentWindow is the number of most recent lesson scores kept.
	RecentWindow = 10

	// WeakThreshold: topics scoring below this are weak areas.
	WeakThreshold = 70.0

	// StrongThreshold: topics scoring at or above this are strong areas.
	StrongThreshold = 85.0

	// MaxAreas caps the weak and strong area lists.
	MaxAreas = 3
)

// Compute builds a UserPerformance from a result log in insertion order.
// A non-empty skill restricts the averages, recent scores and topic areas
// to that skill; the skill breakdown always covers the whole log.
//
// Topics need no minimum number of observations: a single answer is
// enough to classify a topic as weak or strong.
func Compute(results []LessonResult, skill curriculum.Skill) UserPerformance {
	filtered := results
	if skill != "" {
		filtered = lo.Filter(results, func(r LessonResult, _ int) bool {
			return r.Skill == skill
		})
	}

	if len(filtered) == 0 {
		return emptyPerformance()
	}

	percentages := lo.Map(filtered, func(r LessonResult, _ int) float64 {
		return r.Percentage()
	})

	recent := percentages
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}

	weak, strong := classifyTopics(aggregateTopics(filtered))

	return UserPerformance{
		AverageScore:     mean(percentages),
		CompletedLessons: len(filtered),
		WeakAreas:        weak,
		StrongAreas:      strong,
		RecentScores:     append([]float64{}, recent...),
		SkillBreakdown:   skillBreakdown(results),
	}
}

func emptyPerformance() UserPerformance {
	return UserPerformance{
		WeakAreas:      []string{},
		StrongAreas:    []string{},
		RecentScores:   []float64{},
		SkillBreakdown: map[curriculum.Skill]SkillPerformance{},
	}
}

// topicTally counts correct answers for one topic.
type topicTally struct {
	topic   string
	correct int
	total   int
}

func (t topicTally) score() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.total) * 100
}

// aggregateTopics tallies every question by topic, in first-seen order.
func aggregateTopics(results []LessonResult) []topicTally {
	index := make(map[string]int)
	var tallies []topicTally

	for _, r := range results {
		for _, q := range r.Questions {
			key := q.TopicKey()
			i, ok := index[key]
			if !ok {
				i = len(tallies)
				index[key] = i
				tallies = append(tallies, topicTally{topic: key})
			}
			tallies[i].total++
			if q.Correct {
				tallies[i].correct++
			}
		}
	}
	return tallies
}

// classifyTopics splits tallies into weak (ascending) and strong
// (descending) areas, each capped at MaxAreas.
func classifyTopics(tallies []topicTally) (weak, strong []string) {
	var weakT, strongT []topicTally
	for _, t := range tallies {
		switch s := t.score(); {
		case s < WeakThreshold:
			weakT = append(weakT, t)
		case s >= StrongThreshold:
			strongT = append(strongT, t)
		}
	}

	sort.SliceStable(weakT, func(i, j int) bool { return weakT[i].score() < weakT[j].score() })
	sort.SliceStable(strongT, func(i, j int) bool { return strongT[i].score() > strongT[j].score() })

	return topicNames(weakT), topicNames(strongT)
}

func topicNames(tallies []topicTally) []string {
	if len(tallies) > MaxAreas {
		tallies = tallies[:MaxAreas]
	}
	return lo.Map(tallies, func(t topicTally, _ int) string { return t.topic })
}

// skillBreakdown summarizes each known skill that has at least one result.
func skillBreakdown(results []LessonResult) map[curriculum.Skill]SkillPerformance {
	out := make(map[curriculum.Skill]SkillPerformance)

	for _, skill := range curriculum.AllSkills() {
		skillResults := lo.Filter(results, func(r LessonResult, _ int) bool {
			return r.Skill == skill
		})
		if len(skillResults) == 0 {
			continue
		}

		var last time.Time
		topics := make(map[string][]float64)
		for _, r := range skillResults {
			if r.CompletedAt.After(last) {
				last = r.CompletedAt
			}
			for _, q := range r.Questions {
				key := q.TopicKey()
				topics[key] = append(topics[key], q.Percentage())
			}
		}

		out[skill] = SkillPerformance{
			AverageScore: mean(lo.Map(skillResults, func(r LessonResult, _ int) float64 {
				return r.Percentage()
			})),
			CompletedLessons: len(skillResults),
			LastCompleted:    last,
			TopicScores:      topics,
		}
	}
	return out
}
