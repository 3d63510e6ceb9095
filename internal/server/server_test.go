package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xopclabs/shadowing/internal/config"
	"github.com/xopclabs/shadowing/internal/settings"
	"github.com/xopclabs/shadowing/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestServerWithConfig(t)
	return h
}

func newTestServerWithConfig(t *testing.T) (http.Handler, config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		Port:          8000,
		CORSOrigins:   []string{"*"},
		DataDir:       dir,
		RecordingsDir: dir,
		ClipsDir:      dir,
		DownloadsDir:  dir,
		BrowsePaths:   []string{dir},
	}

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return New(cfg, st).Handler(), cfg
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s %s returned invalid JSON: %v\nbody: %s", method, path, err, rec.Body.String())
		}
	}
	return rec, parsed
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
}

func TestRoot(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["version"] != Version {
		t.Errorf("Expected version %q, got %v", Version, body["version"])
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/no-such-page", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodPost, "/api/sessions", `{"notes":"morning drill"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Create failed with %d: %v", rec.Code, body)
	}
	if body["notes"] != "morning drill" {
		t.Errorf("Expected notes to round-trip, got %v", body["notes"])
	}
	if body["ended_at"] != nil {
		t.Errorf("New session should not have ended_at, got %v", body["ended_at"])
	}
	id := int(body["id"].(float64))

	rec, body = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/sessions/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Get failed with %d", rec.Code)
	}

	rec, body = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/sessions/%d/end", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("End failed with %d", rec.Code)
	}
	if body["ended_at"] == nil {
		t.Error("Ended session should have ended_at set")
	}

	// Ending twice is idempotent.
	rec, _ = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/sessions/%d/end", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Second end failed with %d", rec.Code)
	}

	rec, body = doJSON(t, h, http.MethodGet, "/api/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("List failed with %d", rec.Code)
	}
	sessions := body["sessions"].([]any)
	if len(sessions) != 1 {
		t.Errorf("Expected 1 session, got %d", len(sessions))
	}

	rec, _ = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/sessions/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete failed with %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/sessions/%d", id), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/sessions/999", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing session, got %d", rec.Code)
	}
	if _, ok := body["detail"]; !ok {
		t.Error("Error response should carry a detail field")
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/api/sessions/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", rec.Code)
	}
}

func TestStatsEmpty(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	for _, key := range []string{"total_recordings", "total_sessions", "total_clips"} {
		if v, ok := body[key].(float64); !ok || v != 0 {
			t.Errorf("Expected %s to be 0, got %v", key, body[key])
		}
	}
}

func TestClipNotFound(t *testing.T) {
	h := newTestServer(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/clips/42", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing clip, got %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/api/spectrogram/clip/id/42", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing clip spectrogram, got %d", rec.Code)
	}
}

func TestListClipsEmpty(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/clips", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	clips := body["clips"].([]any)
	if len(clips) != 0 {
		t.Errorf("Expected no clips, got %d", len(clips))
	}
}

func TestRecordingsEmpty(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/recordings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	recs := body["recordings"].([]any)
	if len(recs) != 0 {
		t.Errorf("Expected no recordings, got %d", len(recs))
	}
}

func TestDeleteRecording(t *testing.T) {
	h, cfg := newTestServerWithConfig(t)

	rec, body := doJSON(t, h, http.MethodDelete, "/api/recordings/missing.webm", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown recording, got %d", rec.Code)
	}
	if _, ok := body["detail"]; !ok {
		t.Error("Error response should carry a detail field")
	}

	// A stray file with no database row is still deletable.
	path := filepath.Join(cfg.RecordingsDir, "orphan.webm")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/recordings/orphan.webm", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 deleting orphan file, got %d", rec.Code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected orphan file to be removed")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	h := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["socks5_proxy"] != "" {
		t.Errorf("Expected empty default proxy, got %v", body["socks5_proxy"])
	}

	update := settings.Settings{SOCKS5Proxy: "socks5://localhost:1080"}
	payload, _ := json.Marshal(update)
	rec, body = doJSON(t, h, http.MethodPost, "/api/settings", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("Update failed with %d: %v", rec.Code, body)
	}
	if body["socks5_proxy"] != "socks5://localhost:1080" {
		t.Errorf("Expected updated proxy, got %v", body["socks5_proxy"])
	}

	rec, body = doJSON(t, h, http.MethodGet, "/api/settings", "")
	if body["socks5_proxy"] != "socks5://localhost:1080" {
		t.Errorf("Expected proxy to persist, got %v", body["socks5_proxy"])
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/settings", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/clips", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "X-Audio-Duration" {
		t.Errorf("Expected X-Audio-Duration exposed, got %q", got)
	}
}

func TestFilesOutsideBrowsePaths(t *testing.T) {
	h := newTestServer(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/files?path=/etc", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for path outside browse roots, got %d", rec.Code)
	}
}
