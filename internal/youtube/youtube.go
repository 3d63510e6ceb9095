// Package youtube downloads source videos with yt-dlp.
package youtube

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrYtDlpNotFound is returned when the yt-dlp binary is not on PATH.
var ErrYtDlpNotFound = errors.New("yt-dlp not found")

// VideoInfo is the metadata yt-dlp reports for a URL without downloading.
type VideoInfo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	Uploader    string  `json:"uploader"`
	Description string  `json:"description"`
}

// DownloadResult reports the outcome of a download.
type DownloadResult struct {
	Success  bool   `json:"success"`
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Service shells out to yt-dlp. Proxy is an optional SOCKS5 URL applied to
// every invocation.
type Service struct {
	Proxy string
}

// Info fetches video metadata without downloading.
func (s *Service) Info(url string) (*VideoInfo, error) {
	args := []string{"--dump-json", "--no-download", "--no-warnings"}
	args = append(args, s.proxyArgs()...)
	args = append(args, url)

	stdout, err := s.run(args)
	if err != nil {
		return nil, err
	}

	var info VideoInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	if info.Title == "" {
		info.Title = "Unknown"
	}
	return &info, nil
}

// Download fetches a video to dir. With audioOnly, extracts mp3 instead of
// keeping the mp4. Download failures are reported in the result rather than
// as an error, matching how the API surfaces them; only a missing binary or
// unreachable metadata is an error.
func (s *Service) Download(url, dir string, audioOnly bool) (*DownloadResult, error) {
	info, err := s.Info(url)
	if err != nil {
		if errors.Is(err, ErrYtDlpNotFound) {
			return nil, err
		}
		return &DownloadResult{Success: false, Title: "Unknown", Error: err.Error()}, nil
	}

	safeTitle := sanitizeFilename(info.Title)
	template := filepath.Join(dir, safeTitle+"_%(id)s.%(ext)s")

	args := []string{"--no-warnings", "-o", template}
	args = append(args, s.proxyArgs()...)
	if audioOnly {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "192K")
	} else {
		args = append(args,
			"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			"--merge-output-format", "mp4",
		)
	}
	args = append(args, url)

	if _, err := s.run(args); err != nil {
		if errors.Is(err, ErrYtDlpNotFound) {
			return nil, err
		}
		return &DownloadResult{
			Success: false,
			VideoID: info.ID,
			Title:   info.Title,
			Error:   err.Error(),
		}, nil
	}

	ext := "mp4"
	if audioOnly {
		ext = "mp3"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", safeTitle, info.ID, ext))
	if _, err := os.Stat(path); err != nil {
		// yt-dlp may have picked a different extension; find it by video ID
		matches, _ := filepath.Glob(filepath.Join(dir, "*"+info.ID+"*"))
		if len(matches) == 0 {
			return &DownloadResult{
				Success: false,
				VideoID: info.ID,
				Title:   info.Title,
				Error:   "download completed but file not found",
			}, nil
		}
		path = matches[0]
	}

	return &DownloadResult{
		Success:  true,
		VideoID:  info.ID,
		Title:    info.Title,
		FilePath: path,
	}, nil
}

func (s *Service) run(args []string) ([]byte, error) {
	cmd := exec.Command("yt-dlp", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, ErrYtDlpNotFound
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp failed: %s", msg)
	}
	return stdout.Bytes(), nil
}

func (s *Service) proxyArgs() []string {
	if s.Proxy == "" {
		return nil
	}
	return []string{"--proxy", s.Proxy}
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// sanitizeFilename strips characters that are unsafe in filenames and caps
// the length.
func sanitizeFilename(title string) string {
	sanitized := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(title, ""))
	if len(sanitized) > 200 {
		sanitized = sanitized[:200]
	}
	if sanitized == "" {
		return "video"
	}
	return sanitized
}
