package lessons

import (
	"fmt"
	"strings"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/performance"
)

// PromptInput is everything the prompt depends on.
type PromptInput struct {
	Skill        curriculum.Skill
	Level        curriculum.Level
	LessonNumber int
	Difficulty   Difficulty

	// Performance is optional; it is rendered only when it has at least
	// one completed lesson.
	Performance *performance.UserPerformance

	// Language is the language being learned.
	Language string
}

// shape is everything that varies by skill: the task wording, the output
// fields and their schema, and the content type the payload decodes into.
// Nothing outside this registry branches on skill for output shape.
type shape struct {
	schema     *llm.Schema
	task       func(b *strings.Builder, in PromptInput, p curriculum.LevelParams)
	example    string
	newContent func() Content
}

var shapes = map[curriculum.Skill]shape{
	curriculum.SkillListening: {
		schema: ListeningSchema,
		task: func(b *strings.Builder, in PromptInput, p curriculum.LevelParams) {
			fmt.Fprintf(b, "Create listening lesson #%d for a %s learner of %s.\n", in.LessonNumber, in.Level, in.Language)
			fmt.Fprintf(b, "Write a natural spoken monologue or dialogue of %d-%d words that will be played as audio.\n", p.AudioWords.Min, p.AudioWords.Max)
			fmt.Fprintf(b, "Then write %d questions that can only be answered by listening to it.\n", p.Questions)
		},
		example:    `"audioText": "Full transcript of the audio..."`,
		newContent: func() Content { return &ListeningContent{} },
	},
	curriculum.SkillReading: {
		schema: ReadingSchema,
		task: func(b *strings.Builder, in PromptInput, p curriculum.LevelParams) {
			fmt.Fprintf(b, "Create reading lesson #%d for a %s learner of %s.\n", in.LessonNumber, in.Level, in.Language)
			fmt.Fprintf(b, "Write an engaging reading passage of %d-%d words on an everyday or cultural topic.\n", p.PassageWords.Min, p.PassageWords.Max)
			fmt.Fprintf(b, "Then write %d comprehension questions mixing detail, vocabulary-in-context and inference.\n", p.Questions)
		},
		example:    `"text": "The reading passage..."`,
		newContent: func() Content { return &ReadingContent{} },
	},
	curriculum.SkillSpeaking: {
		schema: SpeakingSchema,
		task: func(b *strings.Builder, in PromptInput, p curriculum.LevelParams) {
			fmt.Fprintf(b, "Create speaking lesson #%d for a %s learner of %s.\n", in.LessonNumber, in.Level, in.Language)
			fmt.Fprintf(b, "Give clear instructions and 3 speaking prompts. The learner should speak for %d-%d seconds in total.\n", p.SpeakingSecs.Min, p.SpeakingSecs.Max)
			fmt.Fprintf(b, "Then write %d questions that check the useful phrases and pronunciation points of the task.\n", p.Questions)
		},
		example:    `"instructions": "What the learner should do...", "prompts": ["Prompt 1", "Prompt 2", "Prompt 3"], "expectedDuration": 60`,
		newContent: func() Content { return &SpeakingContent{} },
	},
	curriculum.SkillWriting: {
		schema: WritingSchema,
		task: func(b *strings.Builder, in PromptInput, p curriculum.LevelParams) {
			fmt.Fprintf(b, "Create writing lesson #%d for a %s learner of %s.\n", in.LessonNumber, in.Level, in.Language)
			fmt.Fprintf(b, "Give a writing prompt and step-by-step instructions for a text of %d-%d words.\n", p.WritingWords.Min, p.WritingWords.Max)
			fmt.Fprintf(b, "Then write %d questions on the structures and vocabulary the task needs.\n", p.Questions)
		},
		example:    `"prompt": "The writing task...", "instructions": ["Step 1", "Step 2"], "minWords": 50, "maxWords": 100`,
		newContent: func() Content { return &WritingContent{} },
	},
	curriculum.SkillGrammar: {
		schema: GrammarSchema,
		task: func(b *strings.Builder, in PromptInput, p curriculum.LevelParams) {
			fmt.Fprintf(b, "Create grammar lesson #%d for a %s learner of %s.\n", in.LessonNumber, in.Level, in.Language)
			fmt.Fprintf(b, "Explain one grammar point clearly and give %d example sentences.\n", p.GrammarExamples)
			fmt.Fprintf(b, "Then write %d practice questions on that grammar point.\n", p.Questions)
		},
		example:    `"explanation": "How the grammar point works...", "examples": ["Example 1", "Example 2"]`,
		newContent: func() Content { return &GrammarContent{} },
	},
	curriculum.SkillVocabulary: {
		schema: VocabularySchema,
		task: func(b *strings.Builder, in PromptInput, p curriculum.LevelParams) {
			fmt.Fprintf(b, "Create vocabulary lesson #%d for a %s learner of %s.\n", in.LessonNumber, in.Level, in.Language)
			fmt.Fprintf(b, "Teach %d thematically related words, each with a definition, an example sentence, synonyms and a pronunciation guide.\n", p.VocabularySize)
			fmt.Fprintf(b, "Then write %d questions practising those words.\n", p.Questions)
		},
		example:    `"words": [{"word": "...", "definition": "...", "example": "...", "synonyms": ["..."], "pronunciation": "..."}]`,
		newContent: func() Content { return &VocabularyContent{} },
	},
}

// shapeFor returns the shape of skill. Unrecognized skills get the
// reading shape.
func shapeFor(skill curriculum.Skill) shape {
	return shapes[skill.Shape()]
}

// SchemaFor returns the JSON schema of the lesson object for skill.
func SchemaFor(skill curriculum.Skill) *llm.Schema {
	return shapeFor(skill).schema
}

// BuildPrompt renders the single user message sent to the model.
func BuildPrompt(in PromptInput) string {
	if in.Language == "" {
		in.Language = DefaultLanguage
	}
	params := in.Level.Params()
	s := shapeFor(in.Skill)

	var b strings.Builder

	s.task(&b, in, params)
	fmt.Fprintf(&b, "Level guidance: %s.\n", params.Description)

	if in.Performance.HasHistory() {
		writePerformance(&b, in.Performance)
	}

	fmt.Fprintf(&b, "\nDifficulty: %s\n", in.Difficulty.Instruction())

	writeOutputContract(&b, s, curriculum.PointsPerQuestion(in.Level))

	return b.String()
}

func writePerformance(b *strings.Builder, perf *performance.UserPerformance) {
	weak := "none"
	if len(perf.WeakAreas) > 0 {
		weak = strings.Join(perf.WeakAreas, ", ")
	}

	b.WriteString("\nLearner performance:\n")
	fmt.Fprintf(b, "- Average score: %.0f%%\n", perf.AverageScore)
	fmt.Fprintf(b, "- Lessons completed: %d\n", perf.CompletedLessons)
	fmt.Fprintf(b, "- Trend: %s\n", perf.Trend())
	fmt.Fprintf(b, "- Weak areas: %s\n", weak)
	b.WriteString("Give extra practice on the weak areas where it fits the lesson.\n")
}

func writeOutputContract(b *strings.Builder, s shape, points int) {
	b.WriteString(`
Output format:
Respond with exactly one JSON object and nothing else. No markdown, no commentary.
The object must have this shape:
{
  "title": "Lesson title",
  `)
	b.WriteString(s.example)
	fmt.Fprintf(b, `,
  "questions": [
    {
      "id": "q1",
      "type": "mcq",
      "question": "Question text",
      "options": ["A", "B", "C", "D"],
      "correctAnswer": 0,
      "points": %d,
      "explanation": "Why this is correct"
    }
  ]
}
Question rules:
- "type" is one of "mcq", "true-false", "fill-blank", "open".
- "correctAnswer" is the 0-based option index for "mcq", a boolean for "true-false", and a string otherwise.
- "options" is required for "mcq" and omitted otherwise.
- Every question is worth %d points.
`, points, points)
}
