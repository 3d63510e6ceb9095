package server

import (
	"encoding/json"
	"net/http"

	"github.com/xopclabs/shadowing/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	updated, err := s.settings.Update(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
