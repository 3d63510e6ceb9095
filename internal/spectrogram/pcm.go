package spectrogram

import "github.com/xopclabs/shadowing/internal/config"

// DecodePCM16 converts raw signed 16-bit little-endian PCM bytes to
// normalized float64 samples in [-1.0, 1.0). A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float64 {
	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(data[i*2]) | int16(data[i*2+1])<<8
		samples[i] = float64(s) / 32768.0
	}
	return samples
}

// Duration returns the audio length in seconds of a sample buffer at the
// fixed analysis sample rate.
func Duration(samples []float64) float64 {
	return float64(len(samples)) / float64(config.SampleRate)
}

// Render is the full core pipeline: analyze the sample buffer and encode the
// resulting grid as a PNG. It returns the image bytes together with the audio
// duration in seconds.
func Render(samples []float64, maxDuration float64) ([]byte, float64) {
	duration := Duration(samples)
	grid := Analyze(samples, duration, maxDuration)
	return EncodePNG(grid), duration
}
