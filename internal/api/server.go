// Package api exposes the decoder over a small JSON HTTP surface: live
// stats, the currently active subtitle and session history.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/overlaylab/stegosub/internal/decoder"
	"github.com/overlaylab/stegosub/internal/session"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	d   *decoder.Decoder
	rec *session.Recorder
}

// NewServer wraps a decoder and an optional session recorder. rec may be
// nil when session recording is disabled.
func NewServer(d *decoder.Decoder, rec *session.Recorder) *Server {
	return &Server{d: d, rec: rec}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", s.showStats)
	mux.HandleFunc("/api/subtitle/active", s.showActiveSubtitle)
	mux.HandleFunc("/api/subtitle", s.showSubtitle)
	mux.HandleFunc("/api/reset", s.resetDecoder)
	mux.HandleFunc("/api/session/recent", s.showSessionRecent)
	mux.HandleFunc("/api/session/summary", s.showSessionSummary)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, s.d.GetStats())
}

// showActiveSubtitle answers "what should be on screen at time T". The
// time_ms query parameter is the playback clock in milliseconds.
func (s *Server) showActiveSubtitle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	timeMs, err := strconv.ParseInt(r.URL.Query().Get("time_ms"), 10, 64)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "time_ms must be an integer")
		return
	}
	sub := s.d.ActiveSubtitle(timeMs)
	if sub == nil {
		s.writeJSONError(w, http.StatusNotFound, "no active subtitle")
		return
	}
	s.writeJSON(w, sub)
}

func (s *Server) showSubtitle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeJSONError(w, http.StatusBadRequest, "id is required")
		return
	}
	sub, ok := s.d.Lookup(id)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "subtitle not cached")
		return
	}
	s.writeJSON(w, sub)
}

func (s *Server) resetDecoder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.d.Reset()
	s.writeJSON(w, map[string]string{"status": "reset"})
}

func (s *Server) showSessionRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.rec == nil {
		s.writeJSONError(w, http.StatusNotFound, "session recording disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	results, err := s.rec.Recent(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []session.Result{}
	}
	s.writeJSON(w, results)
}

func (s *Server) showSessionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.rec == nil {
		s.writeJSONError(w, http.StatusNotFound, "session recording disabled")
		return
	}
	sum, err := s.rec.Summarize()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, sum)
}
