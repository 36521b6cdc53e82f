package lessons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/llm"
)

func questionsJSON(n int) string {
	qs := make([]string, n)
	for i := range qs {
		qs[i] = fmt.Sprintf(`{"id":"q%d","type":"mcq","question":"Pick one","options":["a","b","c"],"correctAnswer":%d,"points":10}`, i+1, i%3)
	}
	return "[" + strings.Join(qs, ",") + "]"
}

func readingLessonJSON(n int) string {
	return `{"title":"At the market","text":"Maria goes to the market.","questions":` + questionsJSON(n) + `}`
}

func newTestGenerator(responses ...llm.MockResponse) (*Generator, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	g := NewGenerator(mock, DefaultConfig())
	g.now = func() time.Time { return time.UnixMilli(1760000000000) }
	return g, mock
}

func readingRequest(level curriculum.Level, n int) LessonRequest {
	return LessonRequest{Skill: curriculum.SkillReading, Level: level, LessonNumber: n}
}

func TestGenerate_Reading(t *testing.T) {
	g, mock := newTestGenerator(llm.MockResponse{
		Text: "Here is your lesson:\n" + readingLessonJSON(5),
	})

	lesson, err := g.Generate(context.Background(), readingRequest(curriculum.LevelAdvanced, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lesson.ID != "reading-advanced-3" {
		t.Errorf("ID = %q", lesson.ID)
	}
	if lesson.Title != "At the market" {
		t.Errorf("Title = %q", lesson.Title)
	}
	if lesson.TotalPoints != 100 {
		t.Errorf("TotalPoints = %d, want 100", lesson.TotalPoints)
	}
	if len(lesson.Questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(lesson.Questions))
	}
	if lesson.Questions[1].CorrectAnswer != IndexAnswer(1) {
		t.Errorf("question 2 answer = %+v", lesson.Questions[1].CorrectAnswer)
	}

	content, ok := lesson.Content.(*ReadingContent)
	if !ok {
		t.Fatalf("content is %T, want *ReadingContent", lesson.Content)
	}
	if content.Text != "Maria goes to the market." {
		t.Errorf("Text = %q", content.Text)
	}
	if !lesson.GeneratedAt.Equal(time.UnixMilli(1760000000000)) {
		t.Errorf("GeneratedAt = %v", lesson.GeneratedAt)
	}

	call := mock.Calls[0]
	if call.MaxTokens != 4096 || call.Temperature != 0.7 {
		t.Errorf("request settings = %d/%v", call.MaxTokens, call.Temperature)
	}
	if call.Schema != nil {
		t.Error("schema should not be sent unless native schema is enabled")
	}
	if !strings.Contains(mock.Prompts()[0], "reading lesson #3") {
		t.Error("prompt was not built for the request")
	}
}

func TestGenerate_PointsByLevel(t *testing.T) {
	tests := []struct {
		level curriculum.Level
		n     int
		want  int
	}{
		{curriculum.LevelBeginner, 5, 50},
		{curriculum.LevelIntermediate, 4, 60},
		{curriculum.LevelAdvanced, 5, 100},
		{"expert", 3, 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			g, _ := newTestGenerator(llm.MockResponse{Text: readingLessonJSON(tt.n)})
			lesson, err := g.Generate(context.Background(), readingRequest(tt.level, 1))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lesson.TotalPoints != tt.want {
				t.Errorf("TotalPoints = %d, want %d", lesson.TotalPoints, tt.want)
			}
		})
	}
}

func TestGenerate_SkillContent(t *testing.T) {
	qs := questionsJSON(1)
	tests := []struct {
		skill curriculum.Skill
		body  string
		check func(t *testing.T, c Content)
	}{
		{curriculum.SkillListening, `"audioText":"Good morning!"`, func(t *testing.T, c Content) {
			if c.(*ListeningContent).AudioText != "Good morning!" {
				t.Errorf("audio text = %q", c.(*ListeningContent).AudioText)
			}
		}},
		{curriculum.SkillGrammar, `"explanation":"Past simple","examples":["I went","She saw"]`, func(t *testing.T, c Content) {
			if got := c.(*GrammarContent).Examples; len(got) != 2 {
				t.Errorf("examples = %v", got)
			}
		}},
		{curriculum.SkillVocabulary, `"words":[{"word":"ephemeral","definition":"short-lived","example":"An ephemeral joy.","synonyms":["fleeting"],"pronunciation":"ih-FEM-er-uhl"}]`, func(t *testing.T, c Content) {
			words := c.(*VocabularyContent).Words
			if len(words) != 1 || words[0].Synonyms[0] != "fleeting" {
				t.Errorf("words = %+v", words)
			}
		}},
		{curriculum.SkillWriting, `"prompt":"Describe your town","instructions":["Plan","Write"],"minWords":50,"maxWords":100`, func(t *testing.T, c Content) {
			w := c.(*WritingContent)
			if w.MinWords != 50 || w.MaxWords != 100 {
				t.Errorf("word bounds = %d-%d", w.MinWords, w.MaxWords)
			}
		}},
		{curriculum.SkillSpeaking, `"instructions":"Talk about food","prompts":["Breakfast?"],"expectedDuration":60`, func(t *testing.T, c Content) {
			if c.(*SpeakingContent).ExpectedDuration != 60 {
				t.Errorf("duration = %d", c.(*SpeakingContent).ExpectedDuration)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.skill), func(t *testing.T) {
			g, _ := newTestGenerator(llm.MockResponse{
				Text: `{"title":"T",` + tt.body + `,"questions":` + qs + `}`,
			})
			lesson, err := g.Generate(context.Background(), LessonRequest{
				Skill: tt.skill, Level: curriculum.LevelBeginner, LessonNumber: 1,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lesson.Content.Skill() != tt.skill {
				t.Fatalf("content skill = %s", lesson.Content.Skill())
			}
			tt.check(t, lesson.Content)
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
		want error
	}{
		{"transport", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}}, ErrTransportFailure},
		{"rate limit", llm.MockResponse{Err: &llm.ErrRateLimit{}}, ErrTransportFailure},
		{"deadline", llm.MockResponse{Err: context.DeadlineExceeded}, ErrTransportFailure},
		{"empty output", llm.MockResponse{Err: &llm.ErrInvalidResponse{Err: errors.New("empty")}}, ErrInvalidResponseFormat},
		{"truncated", llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Content: `{"title":"T","text":"cut`}}, ErrMalformedPayload},
		{"prose only", llm.MockResponse{Text: "Sorry, I can't produce that lesson."}, ErrInvalidResponseFormat},
		{"not JSON", llm.MockResponse{Text: "Here: {title: 'x', questions: []}"}, ErrMalformedPayload},
		{"missing content field", llm.MockResponse{Text: `{"title":"T","questions":` + questionsJSON(1) + `}`}, ErrMalformedPayload},
		{"no questions", llm.MockResponse{Text: `{"title":"T","text":"x","questions":[]}`}, ErrMalformedPayload},
		{"bad question type", llm.MockResponse{Text: `{"title":"T","text":"x","questions":[{"id":"q1","type":"essay","question":"?","correctAnswer":"x","points":1}]}`}, ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGenerator(tt.resp)
			_, err := g.Generate(context.Background(), readingRequest(curriculum.LevelBeginner, 7))
			if err == nil {
				t.Fatal("expected error")
			}

			if !errors.Is(err, ErrGenerationFailed) {
				t.Errorf("error does not match ErrGenerationFailed: %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Kind(err) = %v, want %v", Kind(err), tt.want)
			}

			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("error is %T, want *GenerationError", err)
			}
			if genErr.LessonNumber != 7 || genErr.Skill != curriculum.SkillReading {
				t.Errorf("GenerationError = %+v", genErr)
			}
		})
	}
}

func TestGenerate_Options(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: readingLessonJSON(1)})
	g := NewGenerator(mock, Config{
		MaxTokens:    1000,
		Temperature:  0.2,
		UniqueIDs:    true,
		NativeSchema: true,
	})
	g.now = func() time.Time { return time.UnixMilli(1760000000123) }

	lesson, err := g.Generate(context.Background(), readingRequest(curriculum.LevelBeginner, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.ID != "reading-beginner-2-1760000000123" {
		t.Errorf("ID = %q", lesson.ID)
	}
	if mock.Calls[0].Schema != ReadingSchema {
		t.Error("native schema not passed to the provider")
	}
	if !strings.Contains(mock.Prompts()[0], "learner of English") {
		t.Error("empty language should default to English")
	}
}

func TestGenerate_Purpose(t *testing.T) {
	var purpose string
	p := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		purpose = llm.PurposeFrom(ctx)
		return &llm.Response{Text: readingLessonJSON(1)}, nil
	})

	g := NewGenerator(p, DefaultConfig())
	if _, err := g.Generate(context.Background(), LessonRequest{Skill: "pronunciation", Level: curriculum.LevelBeginner, LessonNumber: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purpose != "lesson-reading" {
		t.Errorf("purpose = %q, want lesson-reading", purpose)
	}
}

func TestGeneratedLesson_MarshalJSON(t *testing.T) {
	g, _ := newTestGenerator(llm.MockResponse{Text: readingLessonJSON(2)})
	lesson, err := g.Generate(context.Background(), readingRequest(curriculum.LevelBeginner, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := json.Marshal(lesson)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "skill", "level", "lessonNumber", "title", "text", "questions", "totalPoints", "generatedAt"} {
		if _, ok := out[key]; !ok {
			t.Errorf("missing key %q in %s", key, raw)
		}
	}
	if out["totalPoints"] != float64(20) {
		t.Errorf("totalPoints = %v", out["totalPoints"])
	}
}

type providerFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
