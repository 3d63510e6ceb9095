package audio

// Resample converts a mono sample buffer between rates by linear
// interpolation. Good enough for spectrogram rendering, where the analyzer
// only looks at magnitudes well below the Nyquist limit of either rate.
func Resample(samples []float64, from, to int) []float64 {
	if from == to || len(samples) == 0 {
		return samples
	}

	ratio := float64(from) / float64(to)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
