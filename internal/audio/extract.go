package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var extractCodecs = map[string]string{
	"mp3": "libmp3lame",
	"wav": "pcm_s16le",
	"ogg": "libvorbis",
	"aac": "aac",
	"m4a": "aac",
}

// ExtractClip cuts [start, end) seconds of audio out of a media file into
// outDir, returning the generated filename.
//
// Seeking is hybrid: a fast keyframe seek to ~10s before the start point
// (before -i), then an accurate seek for the remainder (after -i). This keeps
// extraction quick on long videos without losing millisecond precision.
func ExtractClip(inputPath string, start, end float64, format, outDir string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("video file not found: %s", inputPath)
	}
	if end <= start {
		return "", fmt.Errorf("invalid clip range: start %.3f, end %.3f", start, end)
	}

	codec, ok := extractCodecs[format]
	if !ok {
		codec = "libmp3lame"
		format = "mp3"
	}

	clipID := uuid.NewString()
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	filename := fmt.Sprintf("%s_%d-%d_%s.%s", stem, int(start), int(end), clipID[:8], format)
	outputPath := filepath.Join(outDir, filename)

	fastSeek := start - 10
	if fastSeek < 0 {
		fastSeek = 0
	}
	accurateSeek := start - fastSeek

	cmd := exec.Command("ffmpeg",
		"-y",
		"-ss", formatSeconds(fastSeek),
		"-i", inputPath,
		"-ss", formatSeconds(accurateSeek),
		"-t", formatSeconds(end-start),
		"-vn",
		"-acodec", codec,
		"-ar", strconv.Itoa(44100),
		"-ac", "2",
		"-b:a", "192k",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", ErrFFmpegNotFound
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("ffmpeg failed: %s", msg)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("output file was not created: %s", outputPath)
	}
	return filename, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
