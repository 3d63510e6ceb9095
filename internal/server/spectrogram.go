package server

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xopclabs/shadowing/internal/audio"
	"github.com/xopclabs/shadowing/internal/spectrogram"
	"github.com/xopclabs/shadowing/internal/store"
)

// serveSpectrogram decodes an audio file, renders the spectrogram and writes
// the PNG with the duration header. The image is rendered fully before the
// first byte is written, so a failure never leaves a truncated image on the
// wire.
func (s *Server) serveSpectrogram(w http.ResponseWriter, r *http.Request, audioPath string) {
	samples, err := audio.Decode(audioPath)
	if err != nil {
		log.Printf("Spectrogram decode failed for %s: %v", audioPath, err)
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	png, duration := spectrogram.Render(samples, queryFloat(r, "max_duration"))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Audio-Duration", strconv.FormatFloat(duration, 'f', -1, 64))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleClipSpectrogramByID(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, http.StatusNotFound, "clip audio file not found: %s", clip.AudioPath)
		return
	}
	s.serveSpectrogram(w, r, clip.AudioPath)
}

func (s *Server) handleClipSpectrogram(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.ClipsDir, filepath.Base(r.PathValue("filename")))
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "clip audio not found")
		return
	}
	s.serveSpectrogram(w, r, path)
}

func (s *Server) handleRecordingSpectrogram(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.RecordingsDir, filepath.Base(r.PathValue("filename")))
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "recording not found")
		return
	}
	s.serveSpectrogram(w, r, path)
}
