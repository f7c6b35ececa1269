// Package server is the thin read-only query facade over the produced
// aggregate table, plus the rule-based item scoring endpoint. It never
// writes; the pipeline owns all mutation.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/store"
)

// Server serves vendor aggregates from the store and nutrition lookups
// from the raw feed files.
type Server struct {
	store          store.Store
	vendorFeedPath string
	corpusPath     string

	mu    sync.Mutex
	cache map[string]cachedFile

	// per-tag display/success counters feeding the scoring formula;
	// empty by default so every tag starts at the 0.5 prior.
	tagStats map[string]tagStat
}

type tagStat struct {
	Shown   int `json:"shown"`
	Success int `json:"success"`
}

type cachedFile struct {
	mtime time.Time
	data  []map[string]any
}

// New creates a Server reading lookups from the given feed files.
func New(st store.Store, vendorFeedPath, corpusPath string) *Server {
	return &Server{
		store:          st,
		vendorFeedPath: vendorFeedPath,
		corpusPath:     corpusPath,
		cache:          make(map[string]cachedFile),
		tagStats:       make(map[string]tagStat),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/vendors", s.handleListVendors)
	r.Get("/vendors/{name}", s.handleVendorDetail)
	r.Get("/nutrition-lookup", s.handleNutritionLookup)
	r.Post("/score", s.handleScore)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	aggs, err := s.store.ListVendorAggregates(r.Context())
	if err != nil {
		zap.L().Error("server: list vendors", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "aggregate table unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, aggs)
}

func (s *Server) handleVendorDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	agg, err := s.store.GetVendorAggregate(r.Context(), name)
	if err != nil {
		zap.L().Error("server: vendor detail", zap.String("vendor", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "aggregate table unavailable"})
		return
	}
	if agg == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "vendor not found"})
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// loadRecords returns the decoded file, re-reading only when the mtime
// changed since the last request.
func (s *Server) loadRecords(path string) []map[string]any {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache[path]; ok && c.mtime.Equal(info.ModTime()) {
		return c.data
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		zap.L().Warn("server: lookup file unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}
	s.cache[path] = cachedFile{mtime: info.ModTime(), data: records}
	return records
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
