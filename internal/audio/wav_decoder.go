package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder implements Decoder for WAV files.
type WAVDecoder struct {
	decoder    *wav.Decoder
	file       *os.File
	sampleRate int
	bitDepth   int
	numChans   int
}

// NewWAVDecoder opens a WAV file and seeks to its PCM data.
func NewWAVDecoder(filename string) (*WAVDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", filename)
	}

	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	return &WAVDecoder{
		decoder:    decoder,
		file:       f,
		sampleRate: int(decoder.SampleRate),
		bitDepth:   int(decoder.BitDepth),
		numChans:   int(decoder.NumChans),
	}, nil
}

// ReadChunk reads the next chunk of samples, downmixing interleaved channels
// to mono by averaging.
func (d *WAVDecoder) ReadChunk(numSamples int) ([]float64, error) {
	intBuf := &goaudio.IntBuffer{
		Data: make([]int, numSamples*d.numChans),
		Format: &goaudio.Format{
			NumChannels: d.numChans,
			SampleRate:  d.sampleRate,
		},
	}

	n, err := d.decoder.PCMBuffer(intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	maxVal := float64(goaudio.IntMaxSignedValue(d.bitDepth))

	frames := n / d.numChans
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < d.numChans; ch++ {
			sum += float64(intBuf.Data[i*d.numChans+ch])
		}
		samples[i] = sum / float64(d.numChans) / maxVal
	}
	return samples, nil
}

// SampleRate returns the native sample rate.
func (d *WAVDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the channel count.
func (d *WAVDecoder) NumChannels() int {
	return d.numChans
}

// Close closes the underlying file.
func (d *WAVDecoder) Close() error {
	return d.file.Close()
}
