package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xopclabs/shadowing/internal/store"
)

// contentTypeExtensions maps upload MIME types to stored file extensions.
// Browsers typically record as webm/opus.
var contentTypeExtensions = map[string]string{
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/wav":  ".wav",
	"audio/wave": ".wav",
	"audio/mp3":  ".mp3",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".m4a",
}

type recordingResponse struct {
	ID            uint      `json:"id"`
	Filename      string    `json:"filename"`
	ClipID        *uint     `json:"clip_id"`
	SessionID     *uint     `json:"session_id"`
	AttemptNumber int       `json:"attempt_number"`
	CreatedAt     time.Time `json:"created_at"`
}

func toRecordingResponse(rec *store.Recording) recordingResponse {
	return recordingResponse{
		ID:            rec.ID,
		Filename:      rec.Filename,
		ClipID:        rec.ClipID,
		SessionID:     rec.SessionID,
		AttemptNumber: rec.AttemptNumber,
		CreatedAt:     rec.CreatedAt,
	}
}

func (s *Server) handleUploadRecording(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file: %v", err)
		return
	}
	defer file.Close()

	ext, ok := contentTypeExtensions[header.Header.Get("Content-Type")]
	if !ok {
		ext = ".webm"
	}

	filename := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102_150405"), uuid.NewString(), ext)
	path := filepath.Join(s.cfg.RecordingsDir, filename)

	out, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save recording: %v", err)
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "failed to save recording: %v", err)
		return
	}
	out.Close()

	rec := &store.Recording{AudioPath: path, Filename: filename}
	if v := r.FormValue("clip_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			clipID := uint(id)
			rec.ClipID = &clipID
		}
	}
	if v := r.FormValue("session_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			sessionID := uint(id)
			rec.SessionID = &sessionID
		}
	}

	if err := s.store.CreateRecording(rec); err != nil {
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordingResponse(rec))
}

func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	clipID, _ := strconv.ParseUint(r.URL.Query().Get("clip_id"), 10, 32)
	limit := 100
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	recs, err := s.store.ListRecordings(uint(clipID), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	out := make([]recordingResponse, len(recs))
	for i := range recs {
		out[i] = toRecordingResponse(&recs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"recordings": out})
}

func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(r.PathValue("filename"))
	path := filepath.Join(s.cfg.RecordingsDir, filename)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "recording not found")
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(r.PathValue("filename"))

	dbErr := s.store.DeleteRecording(filename)
	if dbErr != nil && !errors.Is(dbErr, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "%v", dbErr)
		return
	}

	path := filepath.Join(s.cfg.RecordingsDir, filename)
	fileErr := os.Remove(path)
	if fileErr != nil && !os.IsNotExist(fileErr) {
		writeError(w, http.StatusInternalServerError, "failed to delete recording: %v", fileErr)
		return
	}

	if errors.Is(dbErr, store.ErrNotFound) && os.IsNotExist(fileErr) {
		writeError(w, http.StatusNotFound, "recording not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Recording deleted", "filename": filename})
}
