package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xopclabs/shadowing/internal/config"
)

// Decoder is the interface for native audio format decoders.
type Decoder interface {
	// ReadChunk reads up to numSamples mono samples as float64 in [-1, 1].
	// Returns io.EOF when the stream is exhausted.
	ReadChunk(numSamples int) ([]float64, error)

	// SampleRate returns the native sample rate in Hz.
	SampleRate() int

	// NumChannels returns the channel count of the source stream.
	NumChannels() int

	// Close releases the underlying file.
	Close() error
}

// ErrUnsupportedFormat is returned when no native decoder handles the file
// extension and ffmpeg is not available to fall back on.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// NewDecoder selects a native decoder by file extension.
func NewDecoder(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Decode reads an entire audio file as normalized mono samples at the fixed
// analysis rate (config.SampleRate).
//
// ffmpeg does the heavy lifting when present, since it handles any container
// or codec and resamples in one pass. Without the binary, WAV/MP3/FLAC fall
// back to the native decoders, downmixed and resampled here.
func Decode(filename string) ([]float64, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("audio file not found: %s", filename)
	}

	samples, err := decodeWithFFmpeg(filename)
	if err == nil {
		return samples, nil
	}
	if !errors.Is(err, ErrFFmpegNotFound) {
		return nil, err
	}

	dec, err := NewDecoder(filename)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	native, err := readAll(dec)
	if err != nil {
		return nil, err
	}
	return Resample(native, dec.SampleRate(), config.SampleRate), nil
}

// readAll drains a decoder into a single sample buffer.
func readAll(dec Decoder) ([]float64, error) {
	const chunkSize = 8192

	var samples []float64
	for {
		chunk, err := dec.ReadChunk(chunkSize)
		if len(chunk) > 0 {
			samples = append(samples, chunk...)
		}
		if err != nil {
			if err == io.EOF {
				return samples, nil
			}
			return nil, err
		}
		if len(chunk) == 0 {
			return samples, nil
		}
	}
}
