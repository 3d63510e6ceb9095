package audio

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration returns the duration of a media file in seconds using
// ffprobe. Returns 0 when ffprobe is missing or the file cannot be probed;
// callers treat an unknown duration as non-fatal.
func ProbeDuration(filename string) float64 {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filename,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return 0
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0
	}
	return duration
}
