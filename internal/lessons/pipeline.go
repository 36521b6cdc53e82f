package lessons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/performance"
)

// Mode is the failure policy of a batch generation.
type Mode string

const (
	// ModeBestEffort logs and skips failed indexes.
	ModeBestEffort Mode = "best-effort"

	// ModeStrict aborts on the first failure and returns no lessons.
	ModeStrict Mode = "strict"
)

// ParseMode parses a mode name. The empty string is best-effort.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBestEffort:
		return ModeBestEffort, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeBestEffort, ModeStrict)
}

// LessonGenerator produces a single lesson.
type LessonGenerator interface {
	Generate(ctx context.Context, req LessonRequest) (*GeneratedLesson, error)
}

// SequenceRequest asks for Count consecutive lessons starting at
// StartIndex.
type SequenceRequest struct {
	Skill       curriculum.Skill
	Level       curriculum.Level
	StartIndex  int
	Count       int
	Performance *performance.UserPerformance
	Mode        Mode
}

// Pipeline runs lesson generation one call at a time with a pacing delay
// between consecutive calls.
type Pipeline struct {
	gen    LessonGenerator
	pacing time.Duration
	logger logrus.FieldLogger

	sleep    func(ctx context.Context, d time.Duration) error
	newRunID func() string
}

// NewPipeline creates a pipeline over gen.
func NewPipeline(gen LessonGenerator, pacing time.Duration, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		gen:      gen,
		pacing:   pacing,
		logger:   logger,
		sleep:    sleepContext,
		newRunID: uuid.NewString,
	}
}

// GenerateOne generates a single lesson.
func (p *Pipeline) GenerateOne(ctx context.Context, req LessonRequest) (*GeneratedLesson, error) {
	return p.gen.Generate(ctx, req)
}

// GenerateMany generates req.Count lessons in index order. Index i+1 is
// requested only after index i has finished.
//
// In best-effort mode failures are logged and skipped, and the result may
// be shorter than Count or empty. In strict mode the first failure is
// returned and lessons already generated are discarded. If ctx is done
// between items, the context error is returned in either mode.
func (p *Pipeline) GenerateMany(ctx context.Context, req SequenceRequest) ([]*GeneratedLesson, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeBestEffort
	}

	log := p.logger.WithFields(logrus.Fields{
		"skill":  req.Skill,
		"level":  req.Level,
		"mode":   mode,
		"run_id": p.newRunID(),
	})

	lessons := make([]*GeneratedLesson, 0, max(req.Count, 0))
	for i := 0; i < req.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := req.StartIndex + i
		lesson, err := p.gen.Generate(ctx, LessonRequest{
			Skill:        req.Skill,
			Level:        req.Level,
			LessonNumber: n,
			Performance:  req.Performance,
		})
		switch {
		case err == nil:
			lessons = append(lessons, lesson)
		case mode == ModeStrict:
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			log.WithError(err).WithField("lesson", n).Warn("Skipping lesson that failed to generate")
		}

		if i < req.Count-1 && p.pacing > 0 {
			if err := p.sleep(ctx, p.pacing); err != nil {
				return nil, err
			}
		}
	}

	log.WithField("generated", len(lessons)).Debug("Lesson batch finished")
	return lessons, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
