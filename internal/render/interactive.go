package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ivlev/cardrender/internal/overlay"
	"github.com/ivlev/cardrender/internal/transition"
)

// Clock is the playback clock the interactive driver follows. For a media
// element it mirrors the element's own clock and is read-only to the
// engine.
type Clock interface {
	// Now is the current playback position in seconds.
	Now() float64
	// Duration is the total playback length in seconds.
	Duration() float64
	// Playing reports whether the media is advancing.
	Playing() bool
}

// Loop is the interactive driver: a single-goroutine cooperative loop that
// composes one frame per tick while the clock is playing and hands it to
// the present callback. All assets are decoded before the loop starts; the
// loop itself performs no blocking I/O.
//
// Resize and StartTransition may be called from any goroutine; their
// effects are buffered and applied atomically at the start of the next
// tick, never mid-composite.
type Loop struct {
	tl       *Timeline
	clock    Clock
	present  func(*image.RGBA)
	interval time.Duration
	preset   string
	log      *slog.Logger

	mu          sync.Mutex
	pendingW    int
	pendingH    int
	pendingSpec *transition.Spec

	// Loop-goroutine state.
	renderer *Renderer
	surface  *image.RGBA
	ras      *overlay.Rasterizer
	trans    *transition.Compositor
	transAt  float64
}

// LoopOptions configures an interactive loop.
type LoopOptions struct {
	Width    int
	Height   int
	Interval time.Duration // display refresh period; defaults to ~60Hz
	Preset   string
	Log      *slog.Logger
}

// NewLoop builds the interactive driver for a decoded timeline.
func NewLoop(tl *Timeline, clock Clock, present func(*image.RGBA), opts LoopOptions) (*Loop, error) {
	if clock == nil || present == nil {
		return nil, fmt.Errorf("loop needs a clock and a present callback")
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}

	r, err := NewRenderer(tl, opts.Width, opts.Height, log)
	if err != nil {
		return nil, err
	}
	return &Loop{
		tl:       tl,
		clock:    clock,
		present:  present,
		interval: interval,
		preset:   opts.Preset,
		log:      log,
		renderer: r,
		surface:  image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		ras:      overlay.NewRasterizer(tl.Ref, opts.Preset, log),
	}, nil
}

// Resize buffers a container size change. The new size takes effect at the
// start of the next tick.
func (l *Loop) Resize(w, h int) {
	l.mu.Lock()
	l.pendingW, l.pendingH = w, h
	l.mu.Unlock()
}

// StartTransition buffers a one-shot transition (e.g. after an asset swap)
// composited over the base starting at the next tick. The spec's OnComplete
// fires exactly once when it finishes.
func (l *Loop) StartTransition(spec transition.Spec) {
	l.mu.Lock()
	l.pendingSpec = &spec
	l.mu.Unlock()
}

// Run drives the loop until the context is cancelled, which deregisters the
// per-tick callback. Run never returns a compositing error: a tick that
// cannot composite (zero-area surface) is skipped.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer func() {
		if l.trans != nil {
			l.trans.Close()
			l.trans = nil
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	l.applyPending()

	if l.surface == nil {
		// Zero-area container; skip compositing entirely this tick.
		return
	}
	if !l.clock.Playing() {
		return
	}

	now := l.clock.Now()
	if err := l.renderer.ComposeFrame(now, l.surface, l.ras); err != nil {
		l.log.Error("compose failed", "t", now, "error", err)
		return
	}

	if l.trans != nil {
		if l.transAt < 0 {
			l.transAt = now
		}
		if l.trans.Composite(l.surface, now-l.transAt) {
			l.trans.Close()
			l.trans = nil
		}
	}

	l.present(l.surface)
}

// applyPending applies buffered resize and transition requests. Runs on the
// loop goroutine only, at tick start.
func (l *Loop) applyPending() {
	l.mu.Lock()
	w, h := l.pendingW, l.pendingH
	spec := l.pendingSpec
	l.pendingW, l.pendingH = 0, 0
	l.pendingSpec = nil
	l.mu.Unlock()

	if w > 0 || h > 0 {
		r, err := NewRenderer(l.tl, w, h, l.log)
		if err != nil {
			// Zero-area container: remember there is nothing to draw on
			// until the next usable resize arrives.
			l.log.Warn("resize ignored", "width", w, "height", h, "error", err)
			l.surface = nil
		} else {
			l.renderer = r
			l.surface = image.NewRGBA(image.Rect(0, 0, w, h))
		}
	}

	if spec != nil {
		if l.trans != nil {
			l.trans.Close()
		}
		l.trans = transition.New(*spec, l.log)
		l.transAt = -1
	}
}
