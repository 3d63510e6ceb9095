package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xopclabs/shadowing/internal/audio"
	"github.com/xopclabs/shadowing/internal/store"
)

type extractClipRequest struct {
	VideoPath  string  `json:"video_path"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Transcript string  `json:"transcript"`
	Format     string  `json:"output_format"`
}

type clipResponse struct {
	ID         uint      `json:"id"`
	VideoID    uint      `json:"video_id"`
	StartTime  float64   `json:"start_time"`
	EndTime    float64   `json:"end_time"`
	AudioPath  string    `json:"audio_path"`
	Duration   float64   `json:"duration"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"created_at"`
}

func toClipResponse(c *store.Clip) clipResponse {
	return clipResponse{
		ID:         c.ID,
		VideoID:    c.VideoID,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		AudioPath:  filepath.Base(c.AudioPath),
		Duration:   c.Duration(),
		Transcript: c.Transcript,
		CreatedAt:  c.CreatedAt,
	}
}

func (s *Server) handleExtractClip(w http.ResponseWriter, r *http.Request) {
	var req extractClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.Format == "" {
		req.Format = "mp3"
	}

	filename, err := audio.ExtractClip(req.VideoPath, req.StartTime, req.EndTime, req.Format, s.cfg.ClipsDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	video, err := s.store.GetOrCreateVideo(req.VideoPath, filepath.Base(req.VideoPath), audio.ProbeDuration(req.VideoPath))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	clip := &store.Clip{
		VideoID:    video.ID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		AudioPath:  filepath.Join(s.cfg.ClipsDir, filename),
		Transcript: req.Transcript,
	}
	if err := s.store.CreateClip(clip); err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, toClipResponse(clip))
}

func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	videoID, _ := strconv.ParseUint(r.URL.Query().Get("video_id"), 10, 32)
	limit := 100
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	clips, err := s.store.ListClips(uint(videoID), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	out := make([]clipResponse, len(clips))
	for i := range clips {
		out[i] = toClipResponse(&clips[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"clips": out})
}

func (s *Server) handleGetClip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	clip, err := s.store.GetClip(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "clip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, toClipResponse(clip))
}

func (s *Server) handleClipAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	clip, err := s.store.GetClip(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "clip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	if _, err := os.Stat(clip.AudioPath); err != nil {
		writeError(w, http.StatusNotFound, "clip audio file not found")
		return
	}
	http.ServeFile(w, r, clip.AudioPath)
}

func (s *Server) handleDeleteClip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	clip, err := s.store.GetClip(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "clip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	if err := s.store.DeleteClip(id); err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	// Best effort: a missing file is already the desired state
	os.Remove(clip.AudioPath)

	writeJSON(w, http.StatusOK, map[string]any{"message": "Clip deleted", "id": id})
}
