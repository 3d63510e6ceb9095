package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes a 440 Hz sine tone WAV file and returns its path.
func writeTestWAV(t *testing.T, sampleRate, numChannels, numFrames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test WAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)

	data := make([]int, numFrames*numChannels)
	for i := 0; i < numFrames; i++ {
		v := int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for ch := 0; ch < numChannels; ch++ {
			data[i*numChannels+ch] = v
		}
	}

	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close test WAV: %v", err)
	}
	return path
}

func TestWAVDecoderMono(t *testing.T) {
	path := writeTestWAV(t, 44100, 1, 44100)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open WAV: %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", dec.SampleRate())
	}
	if dec.NumChannels() != 1 {
		t.Errorf("Expected 1 channel, got %d", dec.NumChannels())
	}

	samples, err := readAll(dec)
	if err != nil {
		t.Fatalf("Failed to read samples: %v", err)
	}
	if len(samples) != 44100 {
		t.Errorf("Expected 44100 samples, got %d", len(samples))
	}

	for i, s := range samples {
		if s < -1.0 || s > 1.0 {
			t.Fatalf("Sample %d out of range: %f", i, s)
		}
	}
}

func TestWAVDecoderStereoDownmix(t *testing.T) {
	path := writeTestWAV(t, 44100, 2, 22050)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open WAV: %v", err)
	}
	defer dec.Close()

	if dec.NumChannels() != 2 {
		t.Errorf("Expected 2 channels, got %d", dec.NumChannels())
	}

	samples, err := readAll(dec)
	if err != nil {
		t.Fatalf("Failed to read samples: %v", err)
	}

	// Identical L/R channels must average to the mono signal, one sample
	// per stereo frame
	if len(samples) != 22050 {
		t.Errorf("Expected 22050 mono samples, got %d", len(samples))
	}
}

func TestNewDecoderUnsupportedExtension(t *testing.T) {
	_, err := NewDecoder("music.xyz")
	if err == nil {
		t.Fatal("Expected error for unsupported extension")
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode("does-not-exist.wav")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestResampleIdentity(t *testing.T) {
	in := []float64{0, 0.5, -0.5, 1}
	out := Resample(in, 44100, 44100)
	if len(out) != len(in) {
		t.Fatalf("Identity resample changed length: %d -> %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("Sample %d changed: %f -> %f", i, out[i], in[i])
		}
	}
}

func TestResampleHalvesAndDoubles(t *testing.T) {
	in := make([]float64, 1000)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * float64(i) / 100)
	}

	down := Resample(in, 44100, 22050)
	if got, want := len(down), 500; got != want {
		t.Errorf("Downsample length %d, expected %d", got, want)
	}

	up := Resample(in, 22050, 44100)
	if got, want := len(up), 2000; got != want {
		t.Errorf("Upsample length %d, expected %d", got, want)
	}

	// Linear interpolation must stay within the input's range
	for i, s := range up {
		if s < -1.0 || s > 1.0 {
			t.Fatalf("Upsampled value %d out of range: %f", i, s)
		}
	}
}

func TestResamplePreservesTone(t *testing.T) {
	// A 100 Hz tone at 48 kHz resampled to 44.1 kHz should still cross zero
	// about 200 times over one second.
	in := make([]float64, 48000)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 48000)
	}

	out := Resample(in, 48000, 44100)

	crossings := 0
	for i := 1; i < len(out); i++ {
		if (out[i-1] < 0) != (out[i] < 0) {
			crossings++
		}
	}

	if crossings < 195 || crossings > 205 {
		t.Errorf("Expected ~200 zero crossings after resample, got %d", crossings)
	}
}
