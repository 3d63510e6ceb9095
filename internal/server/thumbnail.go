package server

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// handleThumbnail grabs a single frame out of a video with ffmpeg and scales
// it down to the requested width, preserving aspect ratio.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
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

	timestamp := queryFloat(r, "timestamp")
	width := 320
	if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 && v <= 1920 {
		width = v
	}

	frame, err := grabFrame(path, timestamp)
	if err != nil {
		log.Printf("Thumbnail failed for %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "failed to generate thumbnail: %v", err)
		return
	}

	thumb := scaleToWidth(frame, width)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode thumbnail: %v", err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// grabFrame extracts one frame at the given timestamp as a decoded image.
func grabFrame(path string, timestamp float64) (image.Image, error) {
	cmd := exec.Command("ffmpeg",
		"-ss", strconv.FormatFloat(timestamp, 'f', 3, 64),
		"-i", path,
		"-vframes", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-v", "error",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.New(msg)
	}

	img, err := jpeg.Decode(&stdout)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// scaleToWidth resizes preserving aspect ratio. Source frames are larger
// than thumbnails in practice, so bilinear is plenty.
func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() <= width {
		return src
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
