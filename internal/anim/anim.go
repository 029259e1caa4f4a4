// Package anim maps an animation kind and a progress value to a visual
// transform. Evaluation is a pure, total function: every kind/progress pair
// returns a defined transform, and opacity is monotonic in progress.
package anim

import "math"

// Kind names an entrance/exit animation.
type Kind string

const (
	None       Kind = "none"
	Fade       Kind = "fade"
	SlideUp    Kind = "slide-up"
	SlideDown  Kind = "slide-down"
	SlideLeft  Kind = "slide-left"
	SlideRight Kind = "slide-right"
	Zoom       Kind = "zoom"
	Bounce     Kind = "bounce"
	Spin       Kind = "spin"
	Blur       Kind = "blur"
	Typewriter Kind = "typewriter"
)

// Kinds lists every supported animation kind.
var Kinds = []Kind{
	None, Fade, SlideUp, SlideDown, SlideLeft, SlideRight,
	Zoom, Bounce, Spin, Blur, Typewriter,
}

const (
	// slideDistPct is how far, as a percentage of the rendered content
	// size, a sliding element starts from its resting position.
	slideDistPct = 10.0
	// bounceHeightPct bounds the bounce arc height.
	bounceHeightPct = 12.0
	// maxBlurPx is the blur radius at progress 0, in surface pixels.
	maxBlurPx = 8.0
)

// Transform is the visual state of an overlay at a single instant.
// Translations are percentages of the rendered content size; rotation is in
// radians; Blur is a pixel radius. Typewriter marks the special kind whose
// effect is a substring length, not a transform: the caller trims the drawn
// text by progress instead.
type Transform struct {
	Opacity       float64
	TranslateXPct float64
	TranslateYPct float64
	Scale         float64
	Rotation      float64
	Blur          float64
	Typewriter    bool
}

// Identity is the transform of a fully visible, unanimated element.
func Identity() Transform {
	return Transform{Opacity: 1, Scale: 1}
}

// Evaluate returns the transform for the given kind at progress in [0,1].
// Progress outside that range is clamped. Unknown kinds degrade to a fade
// so that evaluation stays total.
func Evaluate(kind Kind, progress float64) Transform {
	p := clamp01(progress)
	tr := Identity()

	switch kind {
	case None:
		// Fully visible regardless of progress.
	case SlideUp:
		tr.Opacity = p
		tr.TranslateYPct = (1 - p) * slideDistPct
	case SlideDown:
		tr.Opacity = p
		tr.TranslateYPct = -(1 - p) * slideDistPct
	case SlideLeft:
		tr.Opacity = p
		tr.TranslateXPct = (1 - p) * slideDistPct
	case SlideRight:
		tr.Opacity = p
		tr.TranslateXPct = -(1 - p) * slideDistPct
	case Zoom:
		tr.Opacity = p
		tr.Scale = 0.5 + 0.5*p
	case Bounce:
		tr.Opacity = p
		tr.TranslateYPct = -math.Abs(math.Sin(p*2*math.Pi)) * (1 - p) * bounceHeightPct
	case Spin:
		tr.Opacity = p
		tr.Rotation = (1 - p) * 2 * math.Pi
	case Blur:
		tr.Opacity = p
		tr.Blur = (1 - p) * maxBlurPx
	case Typewriter:
		tr.Typewriter = true
	default: // Fade and anything unrecognized.
		tr.Opacity = p
	}
	return tr
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
