package cli

import "github.com/charmbracelet/lipgloss"

// Spectrogram palette, sampled from the rendered colour ramp so the CLI
// matches the images the server produces.
var (
	// Ramp colours (quiet to loud)
	DeepViolet = lipgloss.Color("#32145F") // Low-energy purple
	Magenta    = lipgloss.Color("#E63C8C") // Mid-energy magenta
	Ember      = lipgloss.Color("#FF7846") // High-energy orange
	PaleYellow = lipgloss.Color("#FFFEC7") // Peak energy

	// Accent colours
	MutedLilac = lipgloss.Color("#8C78B4") // Subtle text
)
