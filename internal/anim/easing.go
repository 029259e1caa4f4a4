package anim

// Easing names a progress-shaping curve applied before evaluation.
type Easing string

const (
	EaseLinear Easing = "linear"
	EaseIn     Easing = "ease-in"
	EaseOut    Easing = "ease-out"
	EaseInOut  Easing = "ease-in-out"
)

// Ease applies the named curve to t in [0,1]. Every curve is monotonic
// non-decreasing and fixes the endpoints, so easing never breaks opacity
// monotonicity. Unknown names behave as linear.
func Ease(e Easing, t float64) float64 {
	t = clamp01(t)
	switch e {
	case EaseIn:
		return t * t * t
	case EaseOut:
		u := 1 - t
		return 1 - u*u*u
	case EaseInOut:
		return easeInOutCubic(t)
	default:
		return t
	}
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
