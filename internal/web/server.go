package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/floorplan/internal/service"
)

type Server struct {
	service *service.AreaService
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(svc *service.AreaService, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/areas", http.StatusSeeOther)
	})
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /areas", s.handleListAreas)
	s.mux.HandleFunc("POST /areas", s.handleCreateArea)
	s.mux.HandleFunc("GET /areas/{id}", s.handleGetArea)
	s.mux.HandleFunc("DELETE /areas/{id}", s.handleDeleteArea)
	s.mux.HandleFunc("GET /areas/{id}/plan", s.handleGetPlan)
	s.mux.HandleFunc("POST /areas/{id}/close", s.handleClosePlan)
	s.mux.HandleFunc("GET /areas/{id}/scene", s.handleGetScene)
	s.mux.HandleFunc("POST /areas/{id}/save", s.handleSave)
	s.mux.HandleFunc("GET /areas/{id}/dirty", s.handleDirty)

	s.mux.HandleFunc("POST /areas/{id}/tables", s.handleAddTable)
	s.mux.HandleFunc("DELETE /areas/{id}/tables/{tid}", s.handleRemoveTable)
	s.mux.HandleFunc("PUT /areas/{id}/tables/{tid}/position", s.handleMoveTable)
	s.mux.HandleFunc("PUT /areas/{id}/tables/{tid}/size", s.handleResizeTable)
	s.mux.HandleFunc("PUT /areas/{id}/tables/{tid}/status", s.handleSetStatus)
	s.mux.HandleFunc("POST /areas/{id}/tables/{tid}/assignment", s.handleAssign)
	s.mux.HandleFunc("DELETE /areas/{id}/tables/{tid}/assignment", s.handleUnassign)

	s.mux.HandleFunc("POST /areas/{id}/select", s.handleSelect)
	s.mux.HandleFunc("PUT /areas/{id}/highlight", s.handleHighlight)
	s.mux.HandleFunc("POST /areas/{id}/pointer/{action}", s.handlePointer)
}

// securityHeaders sets the response headers every API reply carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// Handler returns a ready http.Server for addr. Callers own its lifecycle.
func (s *Server) Handler(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"open_plans": len(s.service.OpenPlans()),
	})
}
