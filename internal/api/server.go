// Package api exposes the tracker over HTTP: batch imports, statistics
// queries, progress polling and a websocket progress push.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"handtracker/internal/batch"
	"handtracker/internal/hand"
	"handtracker/internal/phh"
	"handtracker/internal/stats"
	"handtracker/internal/tracker"
)

// Server wires the tracker to HTTP handlers.
type Server struct {
	logger   zerolog.Logger
	tracker  *tracker.Tracker
	upgrader websocket.Upgrader
}

// NewServer creates the API server for one tracker.
func NewServer(logger zerolog.Logger, t *tracker.Tracker) *Server {
	return &Server{
		logger:  logger.With().Str("component", "api").Logger(),
		tracker: t,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/import", s.handleImport)
	r.Get("/stats", s.handleStats)
	r.Get("/progress", s.handleProgress)
	r.Get("/hands/{id}/export", s.handleExport)
	r.Get("/hands/{id}/analysis", s.handleAnalysis)
	r.Get("/ws/progress", s.handleProgressSocket)
	return r
}

type importRequest struct {
	Sources []struct {
		Name     string `json:"name"`
		Text     string `json:"text"`
		Platform string `json:"platform,omitempty"`
	} `json:"sources"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Sources) == 0 {
		s.writeError(w, http.StatusBadRequest, "no sources provided")
		return
	}

	sources := make([]batch.Source, len(req.Sources))
	for i, src := range req.Sources {
		sources[i] = batch.Source{Name: src.Name, Text: src.Text, Hint: hand.Platform(src.Platform)}
	}

	report, err := s.tracker.Import(r.Context(), sources)
	if err != nil {
		// Cancelled imports still report everything accepted so far.
		s.logger.Warn().Err(err).Msg("import stopped early")
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"accepted":      len(report.Accepted),
		"duplicates":    report.Duplicates,
		"failures":      report.Failures,
		"file_failures": report.FileFailures,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, err := s.tracker.Statistics(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Progress())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h, ok := s.tracker.HandByID(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "hand not found")
		return
	}
	data, err := phh.EncodeToBytes(phh.Convert(h))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/toml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	commentary, err := s.tracker.Analyze(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"hand_id": id, "commentary": commentary})
}

// handleProgressSocket pushes progress snapshots until the batch reaches
// done or the client goes away. Snapshots are strictly monotonic in
// percent, so a client never renders a bar moving backwards.
func (s *Server) handleProgressSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			snapshot := s.tracker.Progress()
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
			if snapshot.CurrentStep == batch.StepDone {
				return
			}
		}
	}
}

// filterFromQuery maps query parameters onto an aggregation filter.
func filterFromQuery(r *http.Request) (stats.Filter, error) {
	var filter stats.Filter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.To = t
	}
	filter.Format = hand.Format(q.Get("format"))
	filter.Stakes = q.Get("stakes")
	filter.Position = hand.Position(q.Get("position"))
	if v := q.Get("play_money"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.PlayMoney = &b
	}
	return filter, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn().Err(err).Msg("writing response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
