// Package refframe resolves the reference resolution of an asset: the fixed
// design-space coordinate system in which overlay positions and sizes are
// authored, independent of the actual output size.
package refframe

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Resolution is a design-space size in pixels. Both dimensions are always
// positive once resolved.
type Resolution struct {
	Width  uint `yaml:"width"`
	Height uint `yaml:"height"`
}

// Default is the last-resort reference resolution when no declared source
// yields a usable value.
var Default = Resolution{Width: 1920, Height: 1080}

// Descriptor carries every place an asset may declare its reference
// resolution. Fields are checked in declaration order; the first source
// that parses to two positive integers wins.
type Descriptor struct {
	// Resolution is an explicit "WxH" string, e.g. "1920x1080".
	Resolution string `yaml:"resolution,omitempty"`
	// Frame is an explicit resolution object.
	Frame *Resolution `yaml:"frame,omitempty"`
	// Width/Height are explicit top-level fields.
	Width  uint `yaml:"width,omitempty"`
	Height uint `yaml:"height,omitempty"`
}

// ParseSize parses a "WxH" string into a resolution. The separator is a
// lowercase or uppercase 'x'. Returns false for anything that does not
// yield two positive integers.
func ParseSize(s string) (Resolution, bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, "xX")
	if i <= 0 || i == len(s)-1 {
		return Resolution{}, false
	}
	w, errW := strconv.ParseUint(strings.TrimSpace(s[:i]), 10, 32)
	h, errH := strconv.ParseUint(strings.TrimSpace(s[i+1:]), 10, 32)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return Resolution{}, false
	}
	return Resolution{Width: uint(w), Height: uint(h)}, true
}

// Resolver resolves and caches one reference resolution per asset.
// It is safe for concurrent use.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]Resolution
	log   *slog.Logger
}

// NewResolver creates a resolver. A nil logger disables warnings.
func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		cache: make(map[string]Resolution),
		log:   log,
	}
}

// Resolve returns the reference resolution for the asset, consulting in
// priority order: the "WxH" string, the resolution object, the explicit
// width/height fields, the decoded media dimensions, and finally Default.
// The result is cached per asset id; falling through to Default is not an
// error but is surfaced as a warning.
func (r *Resolver) Resolve(assetID string, d Descriptor, mediaW, mediaH int) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[assetID]; ok {
		return res
	}

	res, defaulted := resolve(d, mediaW, mediaH)
	if defaulted {
		r.log.Warn("reference resolution not declared, using default",
			"asset", assetID, "width", res.Width, "height", res.Height)
	}
	r.cache[assetID] = res
	return res
}

// Invalidate drops the cached resolution for an asset. Called when the
// underlying media's decoded dimensions change, e.g. after an asset swap.
func (r *Resolver) Invalidate(assetID string) {
	r.mu.Lock()
	delete(r.cache, assetID)
	r.mu.Unlock()
}

func resolve(d Descriptor, mediaW, mediaH int) (res Resolution, defaulted bool) {
	if d.Resolution != "" {
		if res, ok := ParseSize(d.Resolution); ok {
			return res, false
		}
	}
	if d.Frame != nil && d.Frame.Width > 0 && d.Frame.Height > 0 {
		return *d.Frame, false
	}
	if d.Width > 0 && d.Height > 0 {
		return Resolution{Width: d.Width, Height: d.Height}, false
	}
	if mediaW > 0 && mediaH > 0 {
		return Resolution{Width: uint(mediaW), Height: uint(mediaH)}, false
	}
	return Default, true
}
