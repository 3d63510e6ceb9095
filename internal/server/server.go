// Package server exposes the HTTP API consumed by the web frontend.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xopclabs/shadowing/internal/config"
	"github.com/xopclabs/shadowing/internal/settings"
	"github.com/xopclabs/shadowing/internal/store"
	"github.com/xopclabs/shadowing/internal/youtube"
)

// Version is stamped via ldflags at build time.
var Version = "dev"

// Server bundles the services behind the HTTP handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	settings *settings.Service
}

// New creates a server over an opened store.
func New(cfg config.Config, st *store.Store) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		settings: settings.NewService(cfg.SettingsPath()),
	}
}

// yt builds a yt-dlp service with the current proxy setting applied.
func (s *Server) yt() *youtube.Service {
	return &youtube.Service{Proxy: s.settings.Get().SOCKS5Proxy}
}

// downloadDir is where yt-dlp output lands, overridable at runtime.
func (s *Server) downloadDir() string {
	if dir := s.settings.Get().YouTubeDownloadDir; dir != "" {
		return dir
	}
	return s.cfg.DownloadsDir
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/spectrogram/clip/id/{id}", s.handleClipSpectrogramByID)
	mux.HandleFunc("GET /api/spectrogram/clip/{filename}", s.handleClipSpectrogram)
	mux.HandleFunc("GET /api/spectrogram/recording/{filename}", s.handleRecordingSpectrogram)

	mux.HandleFunc("POST /api/clips/extract", s.handleExtractClip)
	mux.HandleFunc("GET /api/clips", s.handleListClips)
	mux.HandleFunc("GET /api/clips/{id}", s.handleGetClip)
	mux.HandleFunc("GET /api/clips/{id}/audio", s.handleClipAudio)
	mux.HandleFunc("DELETE /api/clips/{id}", s.handleDeleteClip)

	mux.HandleFunc("POST /api/recordings/upload", s.handleUploadRecording)
	mux.HandleFunc("GET /api/recordings", s.handleListRecordings)
	mux.HandleFunc("GET /api/recordings/{filename}", s.handleGetRecording)
	mux.HandleFunc("DELETE /api/recordings/{filename}", s.handleDeleteRecording)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PATCH /api/sessions/{id}/end", s.handleEndSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("GET /api/files", s.handleListDirectory)
	mux.HandleFunc("GET /api/files/stream", s.handleStreamFile)
	mux.HandleFunc("GET /api/files/info", s.handleFileInfo)
	mux.HandleFunc("GET /api/files/video-info", s.handleVideoInfo)
	mux.HandleFunc("GET /api/files/thumbnail", s.handleThumbnail)

	mux.HandleFunc("POST /api/youtube/info", s.handleYouTubeInfo)
	mux.HandleFunc("POST /api/youtube/download", s.handleYouTubeDownload)
	mux.HandleFunc("GET /api/youtube/downloads", s.handleListDownloads)
	mux.HandleFunc("DELETE /api/youtube/downloads/{filename}", s.handleDeleteDownload)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleUpdateSettings)

	return s.cors(logRequests(mux))
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	log.Printf("Listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Shadowing Practice API",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// cors applies the CORS policy. X-Audio-Duration must be exposed so browser
// clients can read the spectrogram duration header cross-origin.
func (s *Server) cors(next http.Handler) http.Handler {
	allowAll := len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := ""
		if allowAll {
			allowed = "*"
		} else {
			for _, o := range s.cfg.CORSOrigins {
				if o == origin {
					allowed = origin
					break
				}
			}
		}

		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.Header().Set("Access-Control-Expose-Headers", "X-Audio-Duration")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %q", r.PathValue("id"))
	}
	return uint(id), nil
}

// queryFloat parses an optional float query parameter, returning 0 when
// absent or malformed.
func queryFloat(r *http.Request, key string) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
