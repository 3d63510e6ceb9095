// Package settings manages mutable server-side settings persisted as a JSON
// file next to the database, so they survive restarts without a migration.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Settings are the user-adjustable server options.
type Settings struct {
	SOCKS5Proxy        string `json:"socks5_proxy"`
	YouTubeDownloadDir string `json:"youtube_download_dir"`
}

// Service loads and saves settings, caching the current value.
type Service struct {
	path string

	mu      sync.Mutex
	current *Settings
}

// NewService creates a settings service backed by the given file path.
func NewService(path string) *Service {
	return &Service{path: path}
}

// Get returns the current settings, loading from disk on first use.
// A missing or corrupt file resets to defaults.
func (s *Service) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		s.current = s.load()
	}
	return *s.current
}

// Update overwrites the settings and persists them.
func (s *Service) Update(settings Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(&settings); err != nil {
		return Settings{}, err
	}
	s.current = &settings
	return settings, nil
}

func (s *Service) load() *Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return &Settings{}
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		// Corrupt file: fall back to defaults and rewrite
		defaults := &Settings{}
		s.save(defaults)
		return defaults
	}
	return &settings
}

func (s *Service) save(settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
