package spectrogram

import (
	"math"
	"math/cmplx"

	"github.com/xopclabs/shadowing/internal/config"
	"gonum.org/v1/gonum/dsp/fourier"
)

// PixelGrid is an RGB image buffer, row 0 at the top (highest frequency).
// Pix holds packed R, G, B bytes with a stride of 3*Width.
type PixelGrid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelGrid allocates a grid filled with the background color.
func NewPixelGrid(width, height int) *PixelGrid {
	g := &PixelGrid{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
	for i := 0; i < len(g.Pix); i += 3 {
		g.Pix[i] = config.BGColorR
		g.Pix[i+1] = config.BGColorG
		g.Pix[i+2] = config.BGColorB
	}
	return g
}

// Set writes one pixel.
func (g *PixelGrid) Set(x, y int, r, gr, b uint8) {
	i := (y*g.Width + x) * 3
	g.Pix[i] = r
	g.Pix[i+1] = gr
	g.Pix[i+2] = b
}

// At reads one pixel.
func (g *PixelGrid) At(x, y int) (r, gr, b uint8) {
	i := (y*g.Width + x) * 3
	return g.Pix[i], g.Pix[i+1], g.Pix[i+2]
}

// hannWindow generates a periodic Hann window of the given size.
func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}

// Analyze renders a spectrogram of the sample buffer into a pixel grid.
//
// samples are normalized mono PCM at config.SampleRate. duration is the total
// audio length in seconds. When maxDuration > 0, the rendered content width is
// scaled by duration/maxDuration so clips of different lengths share a common
// visual time scale; columns past the scaled width keep the background color.
//
// The analysis is a plain STFT: Hann-windowed frames of FFTSize samples
// advanced by HopSize, magnitudes in dB, normalized against the peak over a
// fixed dynamic range window. The dB and color math below is order-sensitive;
// the exact constants and epsilons must match the reference renderer so that
// output images compare byte-for-byte.
func Analyze(samples []float64, duration, maxDuration float64) *PixelGrid {
	numFrames := (len(samples)-config.FFTSize)/config.HopSize + 1
	if numFrames < 1 {
		numFrames = 1
	}
	numBins := config.FFTSize / 2

	durationRatio := 1.0
	if maxDuration > 0 {
		durationRatio = duration / maxDuration
	}

	displayWidth := numFrames
	if displayWidth > config.MaxWidth {
		displayWidth = config.MaxWidth
	}
	spectrogramWidth := int(float64(displayWidth) * durationRatio)
	if spectrogramWidth < 1 {
		spectrogramWidth = 1
	}

	displayHeight := numBins
	if displayHeight > config.MaxHeight {
		displayHeight = config.MaxHeight
	}

	window := hannWindow(config.FFTSize)
	fft := fourier.NewFFT(config.FFTSize)

	useBins := numBins
	if displayHeight*2 < useBins {
		useBins = displayHeight * 2
	}

	frameStep := numFrames / spectrogramWidth
	if frameStep < 1 {
		frameStep = 1
	}

	magnitudes := make([][]float64, 0, numFrames/frameStep+1)
	maxMagnitude := math.Inf(-1)

	frame := make([]float64, config.FFTSize)
	for frameIdx := 0; frameIdx < numFrames; frameIdx += frameStep {
		start := frameIdx * config.HopSize

		// Window the in-bounds samples; zero-pad past the buffer end
		for i := 0; i < config.FFTSize; i++ {
			if start+i < len(samples) {
				frame[i] = samples[start+i] * window[i]
			} else {
				frame[i] = 0
			}
		}

		coeffs := fft.Coefficients(nil, frame)

		db := make([]float64, useBins)
		for i := 0; i < useBins; i++ {
			db[i] = 20 * math.Log10(cmplx.Abs(coeffs[i])+1e-10)
			if db[i] > maxMagnitude {
				maxMagnitude = db[i]
			}
		}
		magnitudes = append(magnitudes, db)
	}

	minDB := maxMagnitude - config.DynamicRange

	grid := NewPixelGrid(displayWidth, displayHeight)

	actualCols := len(magnitudes)
	if actualCols > spectrogramWidth {
		actualCols = spectrogramWidth
	}
	if actualCols > displayWidth {
		// Only reachable when maxDuration is shorter than the clip itself;
		// content past the canvas cannot be drawn
		actualCols = displayWidth
	}

	for col := 0; col < actualCols; col++ {
		frameMags := magnitudes[col]
		binScale := float64(len(frameMags)) / float64(displayHeight)

		for row := 0; row < displayHeight; row++ {
			// Row 0 is the highest frequency: flip vertically
			binIdx := int(float64(displayHeight-1-row) * binScale)
			if binIdx > len(frameMags)-1 {
				binIdx = len(frameMags) - 1
			}

			db := frameMags[binIdx]
			normalized := (db - minDB) / (maxMagnitude - minDB + 1e-10)
			if normalized < 0 {
				normalized = 0
			} else if normalized > 1 {
				normalized = 1
			}

			r, g, b := colorForValue(normalized)
			grid.Set(col, row, r, g, b)
		}
	}

	return grid
}
