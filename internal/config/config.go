package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Audio settings
const (
	// SampleRate is the only rate the analysis pipeline operates at.
	// Every decoder normalizes to this before samples reach the analyzer.
	SampleRate = 44100
	FFTSize    = 1024
	HopSize    = 256
)

// Spectrogram render settings
const (
	MaxWidth  = 800 // Maximum spectrogram width in pixels
	MaxHeight = 200 // Maximum spectrogram height in pixels

	// DynamicRange is the dB window below peak magnitude used for
	// color normalization.
	DynamicRange = 80.0
)

// Background color of the spectrogram canvas (deep purple-blue)
const (
	BGColorR = 10
	BGColorG = 0
	BGColorB = 30
)

// Config holds runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port        int
	CORSOrigins []string

	// Storage layout
	DataDir       string
	RecordingsDir string
	ClipsDir      string
	DownloadsDir  string

	// File browser roots exposed over the API
	BrowsePaths []string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	dataDir := envStr("SHADOWING_DATA_DIR", "data")
	return Config{
		Port:          envInt("SHADOWING_PORT", 8000),
		CORSOrigins:   envList("SHADOWING_CORS_ORIGINS", []string{"*"}),
		DataDir:       dataDir,
		RecordingsDir: envStr("SHADOWING_RECORDINGS_DIR", filepath.Join(dataDir, "recordings")),
		ClipsDir:      envStr("SHADOWING_CLIPS_DIR", filepath.Join(dataDir, "clips")),
		DownloadsDir:  envStr("SHADOWING_DOWNLOADS_DIR", filepath.Join(dataDir, "downloads")),
		BrowsePaths:   envList("SHADOWING_BROWSE_PATHS", []string{"/media", "/home", "/mnt"}),
	}
}

// DatabasePath returns the SQLite database location under the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "shadowing.db")
}

// SettingsPath returns the mutable server settings file location.
func (c Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "server_settings.json")
}

// EnsureDirectories creates the storage tree if it does not exist.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.RecordingsDir, c.ClipsDir, c.DownloadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
