package spectrogram

import "testing"

func TestColorEndpoints(t *testing.T) {
	r, g, b := colorForValue(0)
	if r != 10 || g != 0 || b != 30 {
		t.Errorf("colorForValue(0) = (%d,%d,%d), expected background (10,0,30)", r, g, b)
	}

	r, g, b = colorForValue(1)
	if r != 255 || g != 255 || b != 200 {
		t.Errorf("colorForValue(1) = (%d,%d,%d), expected (255,255,200)", r, g, b)
	}
}

func TestColorChannelsInRange(t *testing.T) {
	// uint8 can't go out of range, but the formulas must not wrap around
	// either: check continuity at the segment boundaries instead.
	// Segment endpoints: R 10→60→200→255→255, G 0→10→40→140→255.
	const steps = 4096

	prevR, prevG, _ := colorForValue(0)
	for i := 1; i <= steps; i++ {
		value := float64(i) / steps
		r, g, _ := colorForValue(value)

		if r < prevR {
			t.Fatalf("Red channel decreased at value %.5f: %d -> %d", value, prevR, r)
		}
		if g < prevG {
			t.Fatalf("Green channel decreased at value %.5f: %d -> %d", value, prevG, g)
		}
		prevR, prevG = r, g
	}
}

func TestColorSegmentMidpoints(t *testing.T) {
	// Hand-computed references: value passes through v = value^0.7 before
	// segment selection, so pick values whose v is easy to reason about.
	testCases := []struct {
		name  string
		value float64
		wantR uint8
		wantG uint8
		wantB uint8
	}{
		// value=0.1 -> v≈0.19953: segment 1, t≈0.79810
		{"low energy", 0.1, 49, 7, 85},
		// value=0.3 -> v≈0.43067: segment 2, t≈0.72270
		{"mid-low energy", 0.3, 161, 31, 136},
		// value=0.6 -> v≈0.69945: segment 3, t≈0.79779
		{"mid-high energy", 0.6, 243, 119, 70},
		// value=0.9 -> v≈0.92887: segment 4, t≈0.71549
		{"high energy", 0.9, 255, 222, 157},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b := colorForValue(tc.value)
			if r != tc.wantR || g != tc.wantG || b != tc.wantB {
				t.Errorf("colorForValue(%.2f) = (%d,%d,%d), expected (%d,%d,%d)",
					tc.value, r, g, b, tc.wantR, tc.wantG, tc.wantB)
			}
		})
	}
}
