package receipt

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// defaultMaxUploadBytes bounds a multipart upload when no limit is configured
const defaultMaxUploadBytes = int64(50 << 20)

// Server handles HTTP requests for extraction runs
type Server struct {
	service        *Service
	basicAuth      BasicAuth
	maxUploadBytes int64
	mux            *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// ServerConfig configures a Server
type ServerConfig struct {
	Auth           BasicAuth
	MaxUploadBytes int64
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, cfg ServerConfig) *Server {
	return NewServerWithMux(service, cfg, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, cfg ServerConfig, mux *http.ServeMux) *Server {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	s := &Server{
		service:        service,
		basicAuth:      cfg.Auth,
		maxUploadBytes: maxUpload,
		mux:            mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}
	return user == s.basicAuth.Username && pass == s.basicAuth.Password
}

// corsMiddleware adds CORS headers and answers preflight requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="NFC-e Extractor"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/runs/{id}/documents/{index}/file", s.requireAuth(s.handleGetReceiptFile))
	s.mux.HandleFunc("GET /api/runs/{id}/summary", s.requireAuth(s.handleGetSummary))
	s.mux.HandleFunc("GET /api/runs/{id}/export", s.requireAuth(s.handleExport))
	s.mux.HandleFunc("GET /api/runs/{id}", s.requireAuth(s.handleGetRun))
	s.mux.HandleFunc("DELETE /api/runs/{id}", s.requireAuth(s.handleDeleteRun))
	s.mux.HandleFunc("GET /api/runs", s.requireAuth(s.handleListRuns))
	s.mux.HandleFunc("POST /api/runs", s.requireAuth(s.handleCreateRun))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the server's routes wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}
