// Package render drives the compositing engine: an interactive cooperative
// loop keyed to a media clock, and an offline deterministic per-frame driver
// used for file rendering. Both consume the same pure compose path, so a
// preview and a rendered file of the same inputs are pixel-identical.
package render

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/cardrender/internal/mask"
	"github.com/ivlev/cardrender/internal/overlay"
	"github.com/ivlev/cardrender/internal/refframe"
	"github.com/ivlev/cardrender/internal/transition"
	"github.com/ivlev/cardrender/internal/viewport"
)

// Scene is one base visual with its display duration and the optional
// transition into the next scene.
type Scene struct {
	Image      image.Image
	Duration   float64
	Transition *Transition
}

// Transition is a decoded mask-driven cross-fade running over the final
// Duration seconds of its scene.
type Transition struct {
	Mask     *mask.Set
	Duration float64
}

// Timeline is the fully decoded, read-only input of a render.
type Timeline struct {
	Scenes   []Scene
	Overlays []overlay.Element
	Ref      refframe.Resolution
}

// Duration is the total playback length in seconds.
func (t *Timeline) Duration() float64 {
	total := 0.0
	for _, s := range t.Scenes {
		total += s.Duration
	}
	return total
}

// Renderer composites timeline frames at a fixed surface size. All scene
// images and mask frames are scaled once up front; after construction the
// renderer's state is read-only, so ComposeFrame may run concurrently from
// any number of goroutines as long as each uses its own Rasterizer.
type Renderer struct {
	tl     *Timeline
	w, h   int
	scaled []*image.RGBA
	masks  [][]*image.RGBA // per scene; nil when the scene has no transition
	starts []float64
	rect   viewport.Rect // contain rect of the reference frame in the surface
	log    *slog.Logger
}

// NewRenderer prescales the timeline for a surface of w by h pixels.
func NewRenderer(tl *Timeline, w, h int, log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(tl.Scenes) == 0 {
		return nil, fmt.Errorf("timeline has no scenes")
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("surface %dx%d has no area", w, h)
	}

	r := &Renderer{
		tl:  tl,
		w:   w,
		h:   h,
		log: log,
		rect: viewport.Contain(
			float64(w), float64(h),
			float64(tl.Ref.Width), float64(tl.Ref.Height),
		),
	}

	start := 0.0
	for i, sc := range tl.Scenes {
		if sc.Image == nil {
			return nil, fmt.Errorf("scene %d has no image", i)
		}
		r.scaled = append(r.scaled, scaleContain(sc.Image, w, h, xdraw.ApproxBiLinear))
		r.starts = append(r.starts, start)
		start += sc.Duration

		var frames []*image.RGBA
		if sc.Transition != nil {
			if sc.Transition.Mask != nil {
				for _, mf := range sc.Transition.Mask.Frames {
					frames = append(frames, scaleContain(mf, w, h, xdraw.NearestNeighbor))
				}
			}
			if len(frames) == 0 {
				log.Warn("scene transition has no mask frames, will hard cut", "scene", i)
			}
		}
		r.masks = append(r.masks, frames)
	}
	return r, nil
}

// Size returns the surface dimensions the renderer was built for.
func (r *Renderer) Size() (int, int) { return r.w, r.h }

// ContentRect returns the contain rect of the reference frame within the
// surface; overlay positions map through it.
func (r *Renderer) ContentRect() viewport.Rect { return r.rect }

// NewRasterizer returns an overlay rasterizer bound to the timeline's
// reference resolution. Each concurrent caller of ComposeFrame needs its
// own.
func (r *Renderer) NewRasterizer(preset string) *overlay.Rasterizer {
	return overlay.NewRasterizer(r.tl.Ref, preset, r.log)
}

// ComposeFrame renders the frame at clock time t into dst. The output is a
// pure function of (t, timeline), so identical inputs always produce
// byte-identical frames. dst must match the renderer's surface size.
func (r *Renderer) ComposeFrame(t float64, dst *image.RGBA, ras *overlay.Rasterizer) error {
	b := dst.Bounds()
	if b.Dx() != r.w || b.Dy() != r.h {
		return fmt.Errorf("frame buffer %dx%d does not match surface %dx%d",
			b.Dx(), b.Dy(), r.w, r.h)
	}

	idx := r.sceneAt(t)
	copy(dst.Pix, r.scaled[idx].Pix)

	if tr := r.tl.Scenes[idx].Transition; tr != nil && idx+1 < len(r.scaled) && tr.Duration > 0 {
		windowStart := r.starts[idx] + r.tl.Scenes[idx].Duration - tr.Duration
		if t >= windowStart {
			progress := (t - windowStart) / tr.Duration
			if progress > 1 {
				progress = 1
			}
			frames := r.masks[idx]
			if len(frames) == 0 {
				// Hard cut per the mask failure rule.
				copy(dst.Pix, r.scaled[idx+1].Pix)
			} else {
				mf := frames[transition.FrameIndex(progress, len(frames))]
				transition.Blend(dst, r.scaled[idx], r.scaled[idx+1], mf)
			}
		}
	}

	placements := overlay.Schedule(t, r.tl.Overlays)
	ras.Draw(dst, r.rect, placements)
	return nil
}

// sceneAt returns the index of the scene covering time t; times beyond the
// end clamp to the last scene.
func (r *Renderer) sceneAt(t float64) int {
	for i := len(r.starts) - 1; i > 0; i-- {
		if t >= r.starts[i] {
			return i
		}
	}
	return 0
}

// scaleContain allocates a buffer of the target size and scales src into
// its contain rect, bands left black.
func scaleContain(src image.Image, w, h int, scaler xdraw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	rect := viewport.Contain(float64(w), float64(h), float64(sb.Dx()), float64(sb.Dy()))
	if rect.IsZero() {
		return dst
	}
	target := image.Rect(
		int(math.Round(rect.OffsetX)),
		int(math.Round(rect.OffsetY)),
		int(math.Round(rect.OffsetX+rect.W)),
		int(math.Round(rect.OffsetY+rect.H)),
	)
	scaler.Scale(dst, target, src, sb, xdraw.Src, nil)
	return dst
}
