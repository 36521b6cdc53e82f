package curriculum

// Level is a proficiency level controlling content length and difficulty.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// AllLevels returns all levels from easiest to hardest.
func AllLevels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Known reports whether l is one of the fixed level tags.
func (l Level) Known() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// Range is an inclusive numeric range used in prompt parameters.
type Range struct {
	Min int
	Max int
}

// LevelParams holds the per-level content sizing used when prompting.
type LevelParams struct {
	PassageWords    Range // reading passage length
	AudioWords      Range // listening transcript length
	SpeakingSecs    Range // expected speaking duration
	WritingWords    Range // writing task word count
	VocabularySize  int   // words per vocabulary lesson
	GrammarExamples int   // example sentences per grammar lesson
	Questions       int   // questions per lesson
	Description     string
}

var levelParams = map[Level]LevelParams{
	LevelBeginner: {
		PassageWords:    Range{150, 250},
		AudioWords:      Range{80, 150},
		SpeakingSecs:    Range{30, 60},
		WritingWords:    Range{50, 100},
		VocabularySize:  5,
		GrammarExamples: 4,
		Questions:       5,
		Description:     "simple, high-frequency vocabulary and short present-tense sentences (CEFR A1-A2)",
	},
	LevelIntermediate: {
		PassageWords:    Range{250, 400},
		AudioWords:      Range{150, 250},
		SpeakingSecs:    Range{60, 120},
		WritingWords:    Range{100, 200},
		VocabularySize:  8,
		GrammarExamples: 5,
		Questions:       6,
		Description:     "everyday topics, mixed tenses and some idiomatic expressions (CEFR B1-B2)",
	},
	LevelAdvanced: {
		PassageWords:    Range{400, 600},
		AudioWords:      Range{250, 400},
		SpeakingSecs:    Range{120, 180},
		WritingWords:    Range{200, 350},
		VocabularySize:  10,
		GrammarExamples: 6,
		Questions:       8,
		Description:     "abstract topics, complex structures and nuanced vocabulary (CEFR C1-C2)",
	},
}

// Params returns the content sizing for l. Unrecognized levels get the
// beginner parameters.
func (l Level) Params() LevelParams {
	if p, ok := levelParams[l]; ok {
		return p
	}
	return levelParams[LevelBeginner]
}

// pointsPerQuestion is the per-question point base by level.
var pointsPerQuestion = map[Level]int{
	LevelBeginner:     10,
	LevelIntermediate: 15,
	LevelAdvanced:     20,
}

// PointsPerQuestion returns the point value of one question at level l.
// Unrecognized levels use the beginner base.
func PointsPerQuestion(l Level) int {
	if p, ok := pointsPerQuestion[l]; ok {
		return p
	}
	return pointsPerQuestion[LevelBeginner]
}
