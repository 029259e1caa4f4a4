package viewport

// Rect is the rectangle at which content of a known aspect ratio is drawn
// inside a container, in container coordinates.
type Rect struct {
	W       float64
	H       float64
	OffsetX float64
	OffsetY float64
}

// IsZero reports whether the rect has no drawable area. Callers must skip
// compositing for a tick that produced a zero rect.
func (r Rect) IsZero() bool {
	return r.W <= 0 || r.H <= 0
}

// Contain computes the "contain" placement of content inside a container:
// the content is scaled to fit entirely within the container, preserving
// aspect ratio, and centered, leaving bands on at most one axis.
//
// A container or content with zero/negative area yields a zero rect.
func Contain(containerW, containerH, contentW, contentH float64) Rect {
	if containerW <= 0 || containerH <= 0 || contentW <= 0 || contentH <= 0 {
		return Rect{}
	}

	containerAspect := containerW / containerH
	contentAspect := contentW / contentH

	var r Rect
	if contentAspect > containerAspect {
		// Content is wider than the container: letterbox.
		r.W = containerW
		r.H = containerW / contentAspect
		r.OffsetY = (containerH - r.H) / 2
	} else {
		// Content is taller or equal: pillarbox.
		r.H = containerH
		r.W = containerH * contentAspect
		r.OffsetX = (containerW - r.W) / 2
	}
	return r
}
