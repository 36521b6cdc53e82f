// Package api exposes lesson generation and performance tracking over
// HTTP for UI clients.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/fluentz/internal/lessons"
	"github.com/abhisek/fluentz/internal/performance"
)

// MaxBatch bounds the lesson count of one batch request.
const MaxBatch = 20

// Options configures the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string

	// AccessLog receives combined-format access logs when set.
	AccessLog io.Writer
}

// Server serves the lesson and performance endpoints.
type Server struct {
	pipeline *lessons.Pipeline
	results  performance.Log
	logger   logrus.FieldLogger
	opts     Options
	now      func() time.Time
}

// NewServer creates the HTTP surface over a pipeline and a result log.
func NewServer(pipeline *lessons.Pipeline, results performance.Log, logger logrus.FieldLogger, opts Options) *Server {
	return &Server{
		pipeline: pipeline,
		results:  results,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/lessons", s.generateLesson).Methods(http.MethodPost)
	api.HandleFunc("/lessons/batch", s.generateBatch).Methods(http.MethodPost)
	api.HandleFunc("/lessons/next-index", s.nextIndex).Methods(http.MethodPost)
	api.HandleFunc("/performance", s.getPerformance).Methods(http.MethodGet)
	api.HandleFunc("/results", s.appendResult).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "notfound", "no such endpoint")
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "error", "method not allowed")
	})
	// Subrouters answer unmatched requests themselves.
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = notFound
		router.MethodNotAllowedHandler = notAllowed
	}

	var h http.Handler = r
	if len(s.opts.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.opts.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}
	if s.opts.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(s.opts.AccessLog, h)
	}
	return h
}
