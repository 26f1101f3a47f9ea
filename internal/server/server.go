// Package server exposes the calendar engine over HTTP. Read-only queries
// plus an explicit refresh trigger; all responses use the standard
// success/error envelope.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/username/cn-calendar/internal/engine"
	"github.com/username/cn-calendar/internal/schedule"
)

// Server bundles the engine, the schedule cache and the HTTP plumbing.
type Server struct {
	engine *engine.Engine
	cache  *schedule.Cache
	logger *zap.Logger
}

func New(eng *engine.Engine, cache *schedule.Cache, logger *zap.Logger) *Server {
	return &Server{engine: eng, cache: cache, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/day/today", s.handleToday)
		r.Get("/day/{date}", s.handleDayDetail)
		r.Get("/classify/{date}", s.handleClassify)
		r.Get("/nearest/holiday", s.handleNearestHoliday)
		r.Get("/nearest/festival", s.handleNearestFestival)
		r.Get("/nearest/term", s.handleNearestTerm)
		r.Get("/anniversaries", s.handleAnniversaries)
		r.Post("/refresh/{year}", s.handleRefresh)
	})
	return r
}

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", wrapped.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"status": "healthy"})
}
