package lessons

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/fluentz/internal/curriculum"
)

// QuestionType is the closed set of question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "mcq"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionFillBlank      QuestionType = "fill-blank"
	QuestionOpen           QuestionType = "open"
)

// QuestionTypes lists every question type.
func QuestionTypes() []QuestionType {
	return []QuestionType{QuestionMultipleChoice, QuestionTrueFalse, QuestionFillBlank, QuestionOpen}
}

// GeneratedQuestion is one question of a generated lesson.
type GeneratedQuestion struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer Answer       `json:"correctAnswer"`
	Points        float64      `json:"points"`
	Explanation   string       `json:"explanation,omitempty"`
}

// normalize turns a multiple-choice answer given as option text into the
// option's index.
func (q *GeneratedQuestion) normalize() {
	if q.Type != QuestionMultipleChoice || q.CorrectAnswer.Kind != AnswerText {
		return
	}
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer.Text {
			q.CorrectAnswer = IndexAnswer(i)
			return
		}
	}
}

// VocabularyWord is one entry of a vocabulary lesson.
type VocabularyWord struct {
	Word          string   `json:"word"`
	Definition    string   `json:"definition"`
	Example       string   `json:"example"`
	Synonyms      []string `json:"synonyms"`
	Pronunciation string   `json:"pronunciation"`
}

// Content is the skill-specific part of a lesson. The concrete type is
// one of the *XxxContent types in this package.
type Content interface {
	Skill() curriculum.Skill
	content()
}

// ListeningContent carries the text to be read aloud or synthesized.
type ListeningContent struct {
	AudioText string `json:"audioText"`
}

// ReadingContent carries the reading passage.
type ReadingContent struct {
	Text string `json:"text"`
}

// GrammarContent explains one grammar point with example sentences.
type GrammarContent struct {
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
}

// VocabularyContent lists the words taught by the lesson.
type VocabularyContent struct {
	Words []VocabularyWord `json:"words"`
}

// WritingContent is a writing task with word-count bounds.
type WritingContent struct {
	Prompt       string   `json:"prompt"`
	Instructions []string `json:"instructions"`
	MinWords     int      `json:"minWords"`
	MaxWords     int      `json:"maxWords"`
}

// SpeakingContent is a speaking task. ExpectedDuration is in seconds.
type SpeakingContent struct {
	Instructions     string   `json:"instructions"`
	Prompts          []string `json:"prompts"`
	ExpectedDuration int      `json:"expectedDuration"`
}

func (*ListeningContent) Skill() curriculum.Skill  { return curriculum.SkillListening }
func (*ReadingContent) Skill() curriculum.Skill    { return curriculum.SkillReading }
func (*GrammarContent) Skill() curriculum.Skill    { return curriculum.SkillGrammar }
func (*VocabularyContent) Skill() curriculum.Skill { return curriculum.SkillVocabulary }
func (*WritingContent) Skill() curriculum.Skill    { return curriculum.SkillWriting }
func (*SpeakingContent) Skill() curriculum.Skill   { return curriculum.SkillSpeaking }

func (*ListeningContent) content()  {}
func (*ReadingContent) content()    {}
func (*GrammarContent) content()    {}
func (*VocabularyContent) content() {}
func (*WritingContent) content()    {}
func (*SpeakingContent) content()   {}

// GeneratedLesson is the output of one successful generation call.
type GeneratedLesson struct {
	ID           string
	Skill        curriculum.Skill
	Level        curriculum.Level
	LessonNumber int
	Title        string
	Content      Content
	Questions    []GeneratedQuestion
	TotalPoints  int
	GeneratedAt  time.Time
}

// MarshalJSON flattens the skill-specific content fields into the lesson
// object, matching the shape the model was asked to produce.
func (l GeneratedLesson) MarshalJSON() ([]byte, error) {
	out := map[string]any{}

	if l.Content != nil {
		raw, err := json.Marshal(l.Content)
		if err != nil {
			return nil, fmt.Errorf("marshal %s content: %w", l.Content.Skill(), err)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
	}

	questions := l.Questions
	if questions == nil {
		questions = []GeneratedQuestion{}
	}

	out["id"] = l.ID
	out["skill"] = l.Skill
	out["level"] = l.Level
	out["lessonNumber"] = l.LessonNumber
	out["title"] = l.Title
	out["questions"] = questions
	out["totalPoints"] = l.TotalPoints
	out["generatedAt"] = l.GeneratedAt

	return json.Marshal(out)
}
