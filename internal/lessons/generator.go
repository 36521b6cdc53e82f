package lessons

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/performance"
)

// LessonRequest identifies one lesson to generate.
type LessonRequest struct {
	Skill        curriculum.Skill
	Level        curriculum.Level
	LessonNumber int

	// Performance personalizes the lesson when it has history.
	Performance *performance.UserPerformance
}

// Generator turns a LessonRequest into a GeneratedLesson with one model
// call.
type Generator struct {
	provider llm.Provider
	cfg      Config
	now      func() time.Time
}

// NewGenerator creates a lesson generator.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg, now: time.Now}
}

// lessonPayload is the part of the model object shared by every skill.
type lessonPayload struct {
	Title     string              `json:"title"`
	Questions []GeneratedQuestion `json:"questions"`
}

// Generate builds the prompt, calls the model and decodes the lesson.
// Every failure is a *GenerationError.
func (g *Generator) Generate(ctx context.Context, req LessonRequest) (*GeneratedLesson, error) {
	lesson, err := g.generate(ctx, req)
	if err != nil {
		return nil, &GenerationError{
			Skill:        req.Skill,
			Level:        req.Level,
			LessonNumber: req.LessonNumber,
			Err:          err,
		}
	}
	return lesson, nil
}

func (g *Generator) generate(ctx context.Context, req LessonRequest) (*GeneratedLesson, error) {
	ctx = llm.WithPurpose(ctx, "lesson-"+string(req.Skill.Shape()))
	s := shapeFor(req.Skill)

	prompt := BuildPrompt(PromptInput{
		Skill:        req.Skill,
		Level:        req.Level,
		LessonNumber: req.LessonNumber,
		Difficulty:   Adapt(req.Performance),
		Performance:  req.Performance,
		Language:     g.cfg.Language,
	})

	llmReq := llm.UserPrompt(prompt)
	llmReq.MaxTokens = g.cfg.MaxTokens
	llmReq.Temperature = g.cfg.Temperature
	if g.cfg.NativeSchema {
		llmReq.Schema = s.schema
	}

	resp, err := g.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	raw, err := ExtractObject(resp.Text)
	if err != nil {
		return nil, err
	}

	payload, content, err := decodePayload(s, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	generatedAt := g.now()
	return &GeneratedLesson{
		ID:           g.lessonID(req, generatedAt),
		Skill:        req.Skill,
		Level:        req.Level,
		LessonNumber: req.LessonNumber,
		Title:        payload.Title,
		Content:      content,
		Questions:    payload.Questions,
		TotalPoints:  curriculum.PointsPerQuestion(req.Level) * len(payload.Questions),
		GeneratedAt:  generatedAt,
	}, nil
}

// decodePayload validates raw against the shape schema and decodes the
// shared fields and the skill content.
func decodePayload(s shape, raw string) (*lessonPayload, Content, error) {
	if err := llm.ValidateJSON(s.schema, []byte(raw)); err != nil {
		return nil, nil, err
	}

	var payload lessonPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, nil, fmt.Errorf("decode lesson: %w", err)
	}
	for i := range payload.Questions {
		payload.Questions[i].normalize()
	}

	content := s.newContent()
	if err := json.Unmarshal([]byte(raw), content); err != nil {
		return nil, nil, fmt.Errorf("decode %s content: %w", content.Skill(), err)
	}

	return &payload, content, nil
}

// lessonID is skill-level-lessonNumber, suffixed with the generation time
// when unique ids are enabled.
func (g *Generator) lessonID(req LessonRequest, at time.Time) string {
	id := fmt.Sprintf("%s-%s-%d", req.Skill, req.Level, req.LessonNumber)
	if g.cfg.UniqueIDs {
		id = fmt.Sprintf("%s-%d", id, at.UnixMilli())
	}
	return id
}
