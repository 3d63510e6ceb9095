package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/xopclabs/shadowing/internal/youtube"
)

type youtubeRequest struct {
	URL       string `json:"url"`
	AudioOnly bool   `json:"audio_only"`
}

func (s *Server) handleYouTubeInfo(w http.ResponseWriter, r *http.Request) {
	var req youtubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	info, err := s.yt().Info(req.URL)
	if err != nil {
		if errors.Is(err, youtube.ErrYtDlpNotFound) {
			writeError(w, http.StatusInternalServerError, "yt-dlp not found, please ensure it is installed")
			return
		}
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleYouTubeDownload(w http.ResponseWriter, r *http.Request) {
	var req youtubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	dir := s.downloadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	result, err := s.yt().Download(req.URL, dir, req.AudioOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	dir := s.downloadDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, map[string]any{"downloads": []fileInfo{}})
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	downloads := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi := fileInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			Extension: filepath.Ext(entry.Name()),
		}
		if info, err := entry.Info(); err == nil {
			fi.Size = info.Size()
		}
		downloads = append(downloads, fi)
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloads": downloads})
}

func (s *Server) handleDeleteDownload(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(r.PathValue("filename"))
	path := filepath.Join(s.downloadDir(), filename)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "download not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Download deleted", "filename": filename})
}
