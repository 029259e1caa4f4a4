// Package transition blends a previous and a next image through a
// time-varying luminance mask. The luminance rule is fixed engine-wide:
// alpha is the mask's red channel, normalized to [0,1]. A mask's own alpha
// channel never gates the blend.
package transition

import (
	"image"
	"io"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/cardrender/internal/mask"
	"github.com/ivlev/cardrender/internal/system"
	"github.com/ivlev/cardrender/internal/viewport"
)

// Spec describes one transition event. It is created per transition and
// retired when OnComplete fires.
type Spec struct {
	Prev       image.Image
	Next       image.Image
	Mask       *mask.Set
	Duration   float64
	OnComplete func()
}

// FrameIndex maps progress in [0,1] onto a mask frame index, clamped to the
// valid range.
func FrameIndex(progress float64, frameCount int) int {
	if frameCount <= 0 {
		return 0
	}
	idx := int(math.Floor(progress * float64(frameCount)))
	if idx < 0 {
		idx = 0
	}
	if idx > frameCount-1 {
		idx = frameCount - 1
	}
	return idx
}

// Blend writes prev·(1-α) + next·α into dst per channel, with α taken from
// the mask frame's red channel. The output alpha is fully opaque. All four
// images must share dimensions and zero-origin bounds.
func Blend(dst, prev, next, maskFrame *image.RGBA) {
	n := len(dst.Pix)
	for i := 0; i+3 < n; i += 4 {
		a := uint32(maskFrame.Pix[i]) // red channel, the engine-wide luminance rule
		inv := 255 - a
		dst.Pix[i] = uint8((uint32(prev.Pix[i])*inv + uint32(next.Pix[i])*a + 127) / 255)
		dst.Pix[i+1] = uint8((uint32(prev.Pix[i+1])*inv + uint32(next.Pix[i+1])*a + 127) / 255)
		dst.Pix[i+2] = uint8((uint32(prev.Pix[i+2])*inv + uint32(next.Pix[i+2])*a + 127) / 255)
		dst.Pix[i+3] = 255
	}
}

// ScaleContain scales src into a pooled buffer of the target size using
// contain placement, bands left zeroed. The caller returns the buffer with
// system.PutImage when finished.
func ScaleContain(src image.Image, w, h int, scaler xdraw.Scaler) *image.RGBA {
	dst := system.GetImage(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	r := viewport.Contain(float64(w), float64(h), float64(sb.Dx()), float64(sb.Dy()))
	if r.IsZero() {
		return dst
	}
	target := image.Rect(
		int(math.Round(r.OffsetX)),
		int(math.Round(r.OffsetY)),
		int(math.Round(r.OffsetX+r.W)),
		int(math.Round(r.OffsetY+r.H)),
	)
	scaler.Scale(dst, target, src, sb, xdraw.Src, nil)
	return dst
}

// Compositor drives one transition on the interactive path. It owns the
// decoded mask frames and its scaled temporaries for the lifetime of the
// transition and signals completion exactly once.
type Compositor struct {
	spec Spec
	log  *slog.Logger

	w, h       int
	prevScaled *image.RGBA
	nextScaled *image.RGBA
	maskScaled *image.RGBA
	maskIdx    int

	done bool
}

// New creates a compositor for the spec. A nil logger disables logging.
func New(spec Spec, log *slog.Logger) *Compositor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compositor{spec: spec, log: log, maskIdx: -1}
}

// Done reports whether the transition has completed.
func (c *Compositor) Done() bool { return c.done }

// Composite draws the blend at elapsed seconds into dst and reports whether
// the transition has finished. A zero-duration transition or a mask with no
// frames degrades to a hard cut: the next image is drawn and completion is
// signalled immediately rather than blocking the sequence.
func (c *Compositor) Composite(dst *image.RGBA, elapsed float64) bool {
	b := dst.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return c.done
	}
	c.ensureScaled(b.Dx(), b.Dy())

	frameCount := c.spec.Mask.FrameCount()
	if c.spec.Duration <= 0 || frameCount == 0 {
		if frameCount == 0 && c.spec.Duration > 0 {
			c.log.Warn("transition mask has no frames, hard cut")
		}
		copy(dst.Pix, c.nextScaled.Pix)
		c.complete()
		return true
	}

	progress := elapsed / c.spec.Duration
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	idx := FrameIndex(progress, frameCount)
	if idx != c.maskIdx {
		if c.maskScaled != nil {
			system.PutImage(c.maskScaled)
		}
		c.maskScaled = ScaleContain(c.spec.Mask.Frames[idx], c.w, c.h, xdraw.NearestNeighbor)
		c.maskIdx = idx
	}

	Blend(dst, c.prevScaled, c.nextScaled, c.maskScaled)

	if progress >= 1 {
		c.complete()
	}
	return c.done
}

// Close releases the compositor's pooled buffers. Safe to call more than
// once.
func (c *Compositor) Close() {
	for _, buf := range []*image.RGBA{c.prevScaled, c.nextScaled, c.maskScaled} {
		if buf != nil {
			system.PutImage(buf)
		}
	}
	c.prevScaled, c.nextScaled, c.maskScaled = nil, nil, nil
	c.maskIdx = -1
	c.w, c.h = 0, 0
}

func (c *Compositor) ensureScaled(w, h int) {
	if c.w == w && c.h == h && c.prevScaled != nil {
		return
	}
	c.Close()
	c.w, c.h = w, h
	c.prevScaled = ScaleContain(c.spec.Prev, w, h, xdraw.ApproxBiLinear)
	c.nextScaled = ScaleContain(c.spec.Next, w, h, xdraw.ApproxBiLinear)
}

func (c *Compositor) complete() {
	if c.done {
		return
	}
	c.done = true
	if c.spec.OnComplete != nil {
		c.spec.OnComplete()
	}
}
