// Package http serves the upload page, the report view and the JSON API.
package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
	"gastos/internal/session"
	appweb "gastos/web"
)

// Config holds the HTTP settings taken from the application config.
type Config struct {
	Addr               string
	MaxUploadBytes     int64
	AllowedExtensions  []string
	RateLimitPerMinute int
}

// Server wraps http.Server with the dashboard's routes and dependencies.
type Server struct {
	http.Server

	cfg       Config
	templates *template.Template
	service   *services.ExpenseService
	sessions  *session.Manager
	ready     func(context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector

	logger      *log.Logger
	limitLog    *log.Logger
	templateLog *log.Logger

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and mounts every route.
// ready may be nil, in which case /readyz always succeeds.
func NewServer(cfg Config, svc *services.ExpenseService, sessions *session.Manager, ready func(context.Context) error, logger *log.Logger) (*Server, error) {
	templateLog := logger.WithComponent(log.ComponentTemplate)
	t, err := parseTemplates(appweb.TemplatesFS)
	if err != nil {
		templateLog.Error("Failed to parse templates", log.FieldOperation, log.OpParse, log.FieldError, err)
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		templates: t,
		service:   svc,
		sessions:  sessions,
		ready:     ready,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		detector:    security.NewDetector(),
		logger:      logger.WithComponent(log.ComponentHTTP),
		limitLog:    logger.WithComponent(log.ComponentRateLimit),
		templateLog: templateLog,
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware)
	r.Use(log.Middleware(s.logger, trace.RequestIDFromRequest))
	r.Use(s.detector.Middleware(s.logger))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Get("/report", s.handleReport)
	r.Get("/ui/report", s.handleReportPartial)

	r.Route("/api", func(r chi.Router) {
		r.Get("/breakdown", s.handleBreakdown)
		r.Get("/imports", s.handleImports)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
		r.Post("/upload", s.handleUpload)
		r.Post("/transactions/{id}/category", s.handleSetCategory)
		r.Post("/transactions/{id}/identifier", s.handleSetIdentifier)
		r.Post("/transactions/{id}/recurring", s.handleToggleRecurring)
	})

	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.limitLog.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldRequestID, trace.GetRequestID(r.Context()),
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorFragment(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes a named template into a buffer first so a failing template
// never leaves a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := s.templates.ExecuteTemplate(buf, name, data); err != nil {
		s.logRenderError(r.Context(), name, err)
		ErrorFragment(http.StatusInternalServerError, "Could not render page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logRenderError(ctx context.Context, name string, err error) {
	s.templateLog.ErrorContext(ctx, "Template execution failed",
		log.FieldRequestID, trace.GetRequestID(ctx),
		log.FieldOperation, log.OpRender,
		log.FieldError, err,
		"template", name)
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
