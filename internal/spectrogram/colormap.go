package spectrogram

import "math"

// colorForValue maps a normalized magnitude in [0, 1] to an RGB color on the
// fixed 4-segment gradient (deep purple, violet, orange, yellow-white).
//
// The gamma bias and per-segment formulas match the reference renderer; each
// channel truncates toward zero exactly as the reference does.
func colorForValue(value float64) (r, g, b uint8) {
	v := math.Pow(value, 0.7)

	switch {
	case v < 0.25:
		t := v / 0.25
		return uint8(10 + 50*t), uint8(10 * t), uint8(30 + 70*t)
	case v < 0.5:
		t := (v - 0.25) / 0.25
		return uint8(60 + 140*t), uint8(10 + 30*t), uint8(100 + 50*t)
	case v < 0.75:
		t := (v - 0.5) / 0.25
		return uint8(200 + 55*t), uint8(40 + 100*t), uint8(150 - 100*t)
	default:
		t := (v - 0.75) / 0.25
		return 255, uint8(140 + 115*t), uint8(50 + 150*t)
	}
}
