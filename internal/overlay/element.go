// Package overlay holds the overlay element model, decides which elements
// are visible at a timestamp and in which phase, and rasterizes them onto a
// frame. Elements are owned by the content provider; the engine treats them
// as read-only input per tick.
package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/ivlev/cardrender/internal/anim"
)

// Content kinds. Text is the default; QR renders the content string as a
// QR code instead of glyphs.
const (
	KindText = "text"
	KindQR   = "qr"
)

// Position locates an element in reference-resolution units, or in percent
// of the reference frame when Percent is set.
type Position struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Percent bool    `yaml:"percent,omitempty"`
}

// Styling is the text appearance in reference-space units.
type Styling struct {
	FontFamily string  `yaml:"font_family,omitempty"`
	FontSize   float64 `yaml:"font_size"`
	Color      string  `yaml:"color"`
	Stroke     string  `yaml:"stroke,omitempty"`
}

// Window is the element's visibility interval in seconds.
type Window struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Animation describes one entrance or exit phase.
type Animation struct {
	Kind     anim.Kind   `yaml:"kind"`
	Duration float64     `yaml:"duration"`
	Easing   anim.Easing `yaml:"easing,omitempty"`
}

// Element is one overlay as supplied by the content provider. The yaml
// shape round-trips losslessly; it is the only descriptor surface shared
// with the provider.
type Element struct {
	ID        string               `yaml:"id"`
	Kind      string               `yaml:"kind,omitempty"`
	Content   string               `yaml:"content"`
	Position  Position             `yaml:"position"`
	Styling   Styling              `yaml:"styling"`
	Window    Window               `yaml:"window"`
	Entrance  Animation            `yaml:"entrance,omitempty"`
	Exit      Animation            `yaml:"exit,omitempty"`
	Layer     int                  `yaml:"layer"`
	Active    bool                 `yaml:"active"`
	Overrides map[string]*Position `yaml:"overrides,omitempty"`
}

// PositionFor returns the element position, honoring a responsive override
// for the named preset (e.g. "9:16") when one exists.
func (e *Element) PositionFor(preset string) Position {
	if p, ok := e.Overrides[preset]; ok && p != nil {
		return *p
	}
	return e.Position
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa hex colors.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var c color.NRGBA
	c.A = 0xff
	switch len(s) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i], expanded[2*i+1] = s[i], s[i]
		}
		s = string(expanded)
		fallthrough
	case 6, 8:
		v, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return c, fmt.Errorf("invalid color %q: %w", s, err)
		}
		if len(s) == 8 {
			c.A = uint8(v)
			v >>= 8
		}
		c.R = uint8(v >> 16)
		c.G = uint8(v >> 8)
		c.B = uint8(v)
		return c, nil
	default:
		return c, fmt.Errorf("invalid color %q", s)
	}
}
