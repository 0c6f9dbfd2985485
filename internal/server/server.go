// Package server hosts the shared record endpoint that replicas sync against.
//
// One deployment runs `calsync serve`; every other replica points its
// [remote] configuration at it. The record is held in memory and replaced
// wholesale on every PUT, which is exactly the last-writer-wins contract
// the coordinator expects. There is no authentication: the record grants
// every client unrestricted read/write.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkhault/calsync/internal/shared"
)

// maxRecordBytes bounds PUT bodies.
const maxRecordBytes = 32 << 20

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// RecordServer serves GET/PUT /record plus a health probe.
type RecordServer struct {
	logger *log.Logger

	mu     sync.RWMutex
	record json.RawMessage // nil until the first PUT
}

// New creates a RecordServer.
func New(logger *log.Logger) *RecordServer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RecordServer{logger: logger}
}

// Handler returns the full HTTP handler with logging middleware applied.
func (s *RecordServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/record", s.handleRecord)
	return Logging(s.logger)(mux)
}

func (s *RecordServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *RecordServer) handleRecord(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		rec := s.record
		s.mu.RUnlock()

		if rec == nil {
			http.Error(w, "no record", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(rec)

	case http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if !json.Valid(body) {
			http.Error(w, "body is not valid JSON", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.record = body
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Logging returns middleware that logs each request with its duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start))
		})
	}
}
