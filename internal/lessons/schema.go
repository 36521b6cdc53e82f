package lessons

import (
	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/llm"
)

// questionSchema is shared by every lesson shape.
var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type": "string",
		},
		"type": map[string]any{
			"type": "string",
			"enum": questionTypeEnum(),
		},
		"question": map[string]any{
			"type":        "string",
			"description": "The question text shown to the learner",
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Answer options, required for mcq",
		},
		"correctAnswer": map[string]any{
			"type":        []any{"string", "number", "boolean"},
			"description": "Option index for mcq, boolean for true-false, text otherwise",
		},
		"points": map[string]any{
			"type":    "number",
			"minimum": 0,
		},
		"explanation": map[string]any{
			"type":        "string",
			"description": "Why the answer is correct",
		},
	},
	"required": []any{"id", "type", "question", "correctAnswer", "points"},
}

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// lessonSchema builds the object schema for one skill: the shared title
// and questions plus the skill's own fields.
func lessonSchema(skill curriculum.Skill, fields map[string]any) *llm.Schema {
	props := map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "Short lesson title",
		},
		"questions": map[string]any{
			"type":     "array",
			"items":    questionSchema,
			"minItems": 1,
		},
	}
	required := []any{"title", "questions"}
	for name, def := range fields {
		props[name] = def
		required = append(required, name)
	}

	return &llm.Schema{
		Name:        string(skill) + "-lesson",
		Description: "A " + string(skill) + " lesson with comprehension questions",
		Definition: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

var (
	ListeningSchema = lessonSchema(curriculum.SkillListening, map[string]any{
		"audioText": map[string]any{"type": "string", "description": "Transcript to be read aloud"},
	})

	ReadingSchema = lessonSchema(curriculum.SkillReading, map[string]any{
		"text": map[string]any{"type": "string", "description": "The reading passage"},
	})

	GrammarSchema = lessonSchema(curriculum.SkillGrammar, map[string]any{
		"explanation": map[string]any{"type": "string"},
		"examples":    stringList,
	})

	VocabularySchema = lessonSchema(curriculum.SkillVocabulary, map[string]any{
		"words": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"word":          map[string]any{"type": "string"},
					"definition":    map[string]any{"type": "string"},
					"example":       map[string]any{"type": "string"},
					"synonyms":      stringList,
					"pronunciation": map[string]any{"type": "string"},
				},
				"required": []any{"word", "definition", "example", "synonyms", "pronunciation"},
			},
		},
	})

	WritingSchema = lessonSchema(curriculum.SkillWriting, map[string]any{
		"prompt":       map[string]any{"type": "string"},
		"instructions": stringList,
		"minWords":     map[string]any{"type": "integer", "minimum": 0},
		"maxWords":     map[string]any{"type": "integer", "minimum": 0},
	})

	SpeakingSchema = lessonSchema(curriculum.SkillSpeaking, map[string]any{
		"instructions":     map[string]any{"type": "string"},
		"prompts":          stringList,
		"expectedDuration": map[string]any{"type": "integer", "minimum": 0, "description": "Seconds"},
	})
)

func questionTypeEnum() []any {
	types := QuestionTypes()
	enum := make([]any, len(types))
	for i, t := range types {
		enum[i] = string(t)
	}
	return enum
}
