package server

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xopclabs/shadowing/internal/audio"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".webm": true,
	".mov": true, ".m4v": true, ".wmv": true, ".flv": true,
}

// Formats browsers play natively; anything else needs a transcode step on
// the client's side of the workflow.
var browserNativeFormats = map[string]bool{
	".mp4": true, ".webm": true, ".m4v": true,
}

var streamMediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".m4v":  "video/mp4",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
}

type fileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsDir     bool   `json:"is_dir"`
	Size      int64  `json:"size,omitempty"`
	Extension string `json:"extension,omitempty"`
}

// pathAllowed restricts file browsing to the configured roots.
func (s *Server) pathAllowed(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range s.cfg.BrowsePaths {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

func (s *Server) handleListDirectory(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	videosOnly := r.URL.Query().Get("videos_only") == "true"

	target, err := filepath.Abs(path)
	if err != nil || !s.pathAllowed(target) {
		writeError(w, http.StatusForbidden, "access denied, allowed paths: %v", s.cfg.BrowsePaths)
		return
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "path not found")
		} else if os.IsPermission(err) {
			writeError(w, http.StatusForbidden, "permission denied")
		} else {
			writeError(w, http.StatusBadRequest, "%v", err)
		}
		return
	}

	// Directories first, then case-insensitive by name
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	files := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(target, name)
		if videosOnly && !entry.IsDir() && !isVideoFile(full) {
			continue
		}

		fi := fileInfo{Name: name, Path: full, IsDir: entry.IsDir()}
		if !entry.IsDir() {
			if info, err := entry.Info(); err == nil {
				fi.Size = info.Size()
			}
			fi.Extension = strings.ToLower(filepath.Ext(name))
		}
		files = append(files, fi)
	}

	parent := filepath.Dir(target)
	parentOut := ""
	if parent != target && s.pathAllowed(parent) {
		parentOut = parent
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":   target,
		"parent": parentOut,
		"files":  files,
	})
}

func (s *Server) handleStreamFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.pathAllowed(path) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if info.IsDir() {
		writeError(w, http.StatusBadRequest, "path is not a file")
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := streamMediaTypes[ext]; ok {
		w.Header().Set("Content-Type", mt)
	}
	// http.ServeFile handles Range requests, which is what makes client
	// side seeking work
	http.ServeFile(w, r, path)
}

func (s *Server) handleFileInfo(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.pathAllowed(path) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	out := map[string]any{
		"name":     info.Name(),
		"path":     path,
		"is_dir":   info.IsDir(),
		"modified": info.ModTime().Unix(),
	}
	if !info.IsDir() {
		out["size"] = info.Size()
		out["extension"] = strings.ToLower(filepath.Ext(path))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.pathAllowed(path) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if !isVideoFile(path) {
		writeError(w, http.StatusBadRequest, "not a video file")
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	writeJSON(w, http.StatusOK, map[string]any{
		"name":            filepath.Base(path),
		"path":            path,
		"extension":       ext,
		"duration":        audio.ProbeDuration(path),
		"needs_transcode": !browserNativeFormats[ext],
	})
}
