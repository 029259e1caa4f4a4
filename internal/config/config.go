// Package config holds the settings for an offline render run.
package config

// Preset names a target aspect ratio with a stock resolution.
type Preset string

const (
	Preset16x9 Preset = "16:9"
	Preset9x16 Preset = "9:16"
	Preset4x5  Preset = "4:5"
)

// Dimensions returns the stock width and height for the preset. Unknown
// presets fall back to 16:9.
func (p Preset) Dimensions() (int, int) {
	switch p {
	case Preset9x16:
		return 720, 1280
	case Preset4x5:
		return 1080, 1350
	default:
		return 1280, 720
	}
}

// Config is the full set of knobs for a render.
type Config struct {
	StoryboardPath string
	OutputPath     string

	Width  int
	Height int
	FPS    int

	// TotalDuration rescales the storyboard to this many seconds when
	// positive; zero keeps the authored durations.
	TotalDuration float64

	// Workers caps the render pool; zero sizes it from the host.
	Workers int

	Encoder string
	Quality int
	Preset  Preset
}

// Default returns a Config with the stock 16:9 output.
func Default() Config {
	w, h := Preset16x9.Dimensions()
	return Config{
		OutputPath: "output.mp4",
		Width:      w,
		Height:     h,
		FPS:        30,
		Preset:     Preset16x9,
	}
}
