package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/lessons"
	"github.com/abhisek/fluentz/internal/performance"
)

type lessonRequest struct {
	Skill        curriculum.Skill `json:"skill"`
	Level        curriculum.Level `json:"level"`
	LessonNumber int              `json:"lessonNumber"`
	Personalize  bool             `json:"personalize"`
}

type batchRequest struct {
	Skill       curriculum.Skill `json:"skill"`
	Level       curriculum.Level `json:"level"`
	StartIndex  int              `json:"startIndex"`
	Count       int              `json:"count"`
	Mode        string           `json:"mode"`
	Personalize bool             `json:"personalize"`
}

type nextIndexRequest struct {
	CompletedIDs []string         `json:"completedIds"`
	Skill        curriculum.Skill `json:"skill"`
	Level        curriculum.Level `json:"level"`
}

type nextIndexResponse struct {
	NextIndex int `json:"nextIndex"`
}

func validateTarget(skill curriculum.Skill, level curriculum.Level) error {
	if skill == "" {
		return errors.New("skill is required")
	}
	if level == "" {
		return errors.New("level is required")
	}
	return nil
}

// performanceFor returns the learner summary for skill when personalize
// is set, and nil otherwise.
func (s *Server) performanceFor(ctx context.Context, skill curriculum.Skill, personalize bool) *performance.UserPerformance {
	if !personalize {
		return nil
	}
	perf := performance.Summarize(ctx, s.results, skill, s.logger)
	return &perf
}

func (s *Server) generateLesson(w http.ResponseWriter, r *http.Request) {
	var req lessonRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := validateTarget(req.Skill, req.Level); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.LessonNumber < 1 {
		badRequest(w, "lessonNumber must be at least 1")
		return
	}

	lesson, err := s.pipeline.GenerateOne(r.Context(), lessons.LessonRequest{
		Skill:        req.Skill,
		Level:        req.Level,
		LessonNumber: req.LessonNumber,
		Performance:  s.performanceFor(r.Context(), req.Skill, req.Personalize),
	})
	if err != nil {
		s.generationFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) generateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := validateTarget(req.Skill, req.Level); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.StartIndex < 1 {
		badRequest(w, "startIndex must be at least 1")
		return
	}
	if req.Count < 1 || req.Count > MaxBatch {
		badRequest(w, fmt.Sprintf("count must be between 1 and %d", MaxBatch))
		return
	}
	mode, err := lessons.ParseMode(req.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	generated, err := s.pipeline.GenerateMany(r.Context(), lessons.SequenceRequest{
		Skill:       req.Skill,
		Level:       req.Level,
		StartIndex:  req.StartIndex,
		Count:       req.Count,
		Performance: s.performanceFor(r.Context(), req.Skill, req.Personalize),
		Mode:        mode,
	})
	if err != nil {
		s.generationFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generated)
}

func (s *Server) nextIndex(w http.ResponseWriter, r *http.Request) {
	var req nextIndexRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := validateTarget(req.Skill, req.Level); err != nil {
		badRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, nextIndexResponse{
		NextIndex: lessons.NextLessonIndex(req.CompletedIDs, req.Skill, req.Level),
	})
}

func (s *Server) getPerformance(w http.ResponseWriter, r *http.Request) {
	skill := curriculum.Skill(r.URL.Query().Get("skill"))
	writeJSON(w, http.StatusOK, performance.Summarize(r.Context(), s.results, skill, s.logger))
}

func (s *Server) appendResult(w http.ResponseWriter, r *http.Request) {
	var result performance.LessonResult
	if err := decodeBody(r, &result); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := validateTarget(result.Skill, result.Level); err != nil {
		badRequest(w, err.Error())
		return
	}
	if result.MaxScore <= 0 || result.Score < 0 {
		badRequest(w, "score must be non-negative and maxScore positive")
		return
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = s.now()
	}

	if err := s.results.Append(r.Context(), result); err != nil {
		s.logger.WithError(err).Error("Failed to append lesson result")
		writeMessage(w, http.StatusInternalServerError, "error", "failed to record result")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// generationFailed reports a failed generation. The failure kind is
// logged; clients only see the generic message.
func (s *Server) generationFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		writeMessage(w, http.StatusServiceUnavailable, "error", "request cancelled")
		return
	}

	s.logger.WithError(err).WithField("kind", lessons.Kind(err)).Warn("Lesson generation failed")
	writeMessage(w, http.StatusBadGateway, "error", lessons.ErrGenerationFailed.Error())
}
