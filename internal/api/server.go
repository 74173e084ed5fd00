// Package api exposes the calculation engine, the methodology library and
// stored calculations over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/impact-cli/internal/engine"
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/store"
)

// Options tunes the HTTP surface. A zero RateLimit disables rate limiting.
type Options struct {
	RateLimit      float64
	RateBurst      int
	CORSOrigins    []string
	DefaultID      string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

const defaultMaxBodyBytes = 4 << 20

// Server holds the dependencies shared by every handler. The store is
// optional; without it save requests and calculation lookups fail with 503.
type Server struct {
	engine  *engine.Engine
	lib     *methodology.Library
	store   store.Store
	opts    Options
	limiter *rate.Limiter
}

// New creates a Server.
func New(eng *engine.Engine, lib *methodology.Library, st store.Store, opts Options) *Server {
	if opts.DefaultID == "" {
		opts.DefaultID = methodology.DefaultID
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{engine: eng, lib: lib, store: st, opts: opts}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Get("/methodologies", s.handleListMethodologies)
		r.Get("/methodologies/{id}", s.handleGetMethodology)
		r.Get("/methodologies/{id}/versions/{version}", s.handleGetMethodology)

		r.Post("/calculations", s.handleCalculate)
		r.Get("/calculations", s.handleListCalculations)
		r.Get("/calculations/{id}", s.handleGetCalculation)
	})

	return r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
