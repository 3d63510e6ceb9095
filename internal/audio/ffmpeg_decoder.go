package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/xopclabs/shadowing/internal/config"
	"github.com/xopclabs/shadowing/internal/spectrogram"
)

// ErrFFmpegNotFound is returned when the ffmpeg binary is not on PATH.
// Callers distinguish this from a decode failure so they can fall back to
// the native decoders.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// decodeWithFFmpeg shells out to ffmpeg to decode any audio container into
// raw s16le mono PCM at the fixed analysis rate, read back over a pipe.
func decodeWithFFmpeg(filename string) ([]float64, error) {
	cmd := exec.Command("ffmpeg",
		"-i", filename,
		"-f", "s16le", // Raw 16-bit signed little-endian PCM
		"-ac", "1", // Mono
		"-ar", strconv.Itoa(config.SampleRate),
		"-v", "error",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, ErrFFmpegNotFound
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("ffmpeg failed: %s", msg)
	}

	return spectrogram.DecodePCM16(stdout.Bytes()), nil
}
