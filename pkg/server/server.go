package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mysticlabs/tiktrend/internal/store"
)

// Server is the read-only HTTP projection of the trend store.
type Server struct {
	store         store.Store
	port          int
	allowedOrigin string
}

// New creates a new HTTP server. allowedOrigin is the single development
// origin granted cross-origin access (the dashboard dev server).
func New(s store.Store, port int, allowedOrigin string) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:         s,
		port:          port,
		allowedOrigin: allowedOrigin,
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/trends", s.handleTrends)
	mux.HandleFunc("/trends/history", s.handleHistory)
	return s.cors(mux)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	return http.ListenAndServe(addr, s.Handler())
}

// cors grants the configured development origin permissive access and
// answers preflight requests. No other origin is echoed back.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "*")
			w.Header().Set("Access-Control-Allow-Headers", "*")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// trendView is the projection served to the dashboard.
type trendView struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Stage   string `json:"stage"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	trends, err := s.store.ListTrends(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Always an array, even when the table is empty.
	views := make([]trendView, 0, len(trends))
	for _, t := range trends {
		views = append(views, trendView{
			Name:    t.Name,
			Score:   t.Score,
			Stage:   t.Stage,
			Summary: t.Summary,
			URL:     t.URL,
		})
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = t
		}
	}

	samples, err := s.store.ListHistory(r.Context(), name, since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if samples == nil {
		samples = []store.HistorySample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
