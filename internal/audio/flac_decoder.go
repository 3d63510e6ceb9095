package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements Decoder for FLAC files.
type FLACDecoder struct {
	stream   *flac.Stream
	file     *os.File
	pending  []float64
	position uint64
}

// NewFLACDecoder opens a FLAC file. Sample rate and channel layout come from
// the StreamInfo block.
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	return &FLACDecoder{stream: stream, file: f}, nil
}

// ReadChunk reads the next chunk of samples, averaging subframes down to mono.
func (d *FLACDecoder) ReadChunk(numSamples int) ([]float64, error) {
	for len(d.pending) < numSamples {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// Normalize against the frame's bit depth (FLAC allows 4-32 bits)
		maxVal := float64(int64(1) << (frame.BitsPerSample - 1))

		frameSamples := len(frame.Subframes[0].Samples)
		for i := 0; i < frameSamples; i++ {
			var sum int64
			for _, sub := range frame.Subframes {
				sum += int64(sub.Samples[i])
			}
			mono := float64(sum) / float64(len(frame.Subframes))
			d.pending = append(d.pending, mono/maxVal)
		}
	}

	if len(d.pending) == 0 {
		return nil, io.EOF
	}

	n := numSamples
	if n > len(d.pending) {
		n = len(d.pending)
	}
	out := d.pending[:n:n]
	d.pending = d.pending[n:]
	d.position += uint64(n)
	return out, nil
}

// SampleRate returns the native sample rate.
func (d *FLACDecoder) SampleRate() int {
	return int(d.stream.Info.SampleRate)
}

// NumChannels returns the channel count.
func (d *FLACDecoder) NumChannels() int {
	return int(d.stream.Info.NChannels)
}

// Close closes the stream and the underlying file.
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	return d.file.Close()
}
