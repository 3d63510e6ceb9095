package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/xopclabs/shadowing/internal/store"
)

type sessionRequest struct {
	Notes string `json:"notes"`
}

type sessionResponse struct {
	ID              uint       `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	Notes           string     `json:"notes"`
	DurationMinutes float64    `json:"duration_minutes"`
}

func toSessionResponse(sess *store.Session) sessionResponse {
	return sessionResponse{
		ID:              sess.ID,
		StartedAt:       sess.StartedAt,
		EndedAt:         sess.EndedAt,
		Notes:           sess.Notes,
		DurationMinutes: sess.DurationMinutes(),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	sess, err := s.store.CreateSession(req.Notes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	sessions, err := s.store.ListSessions(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	out := make([]sessionResponse, len(sessions))
	for i := range sessions {
		out[i] = toSessionResponse(&sessions[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	sess, err := s.store.GetSession(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	var req sessionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	sess, err := s.store.EndSession(id, req.Notes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if err := s.store.DeleteSession(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Session deleted", "id": id})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
