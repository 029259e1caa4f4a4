package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"math"
	"sync"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/cardrender/internal/refframe"
	"github.com/ivlev/cardrender/internal/viewport"
)

var (
	fontOnce   sync.Once
	parsedFont *sfnt.Font
	fontErr    error
)

func baseFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return parsedFont, fontErr
}

// Rasterizer draws scheduled placements onto a frame. Font faces are cached
// per size and are not safe for concurrent use, so each render worker owns
// its own Rasterizer; the parsed font behind them is shared and read-only.
type Rasterizer struct {
	ref    refframe.Resolution
	preset string
	faces  map[int]font.Face
	log    *slog.Logger
}

// NewRasterizer creates a rasterizer for overlays authored against the
// given reference resolution. preset selects responsive position overrides
// (empty for none). A nil logger disables logging.
func NewRasterizer(ref refframe.Resolution, preset string, log *slog.Logger) *Rasterizer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Rasterizer{
		ref:    ref,
		preset: preset,
		faces:  make(map[int]font.Face),
		log:    log,
	}
}

// Draw renders every placement onto dst inside the content rect, in the
// order given (the scheduler already produced paint order). Placements that
// fail to rasterize are skipped with a warning; a bad overlay never takes
// the frame down.
func (r *Rasterizer) Draw(dst *image.RGBA, content viewport.Rect, placements []Placement) {
	if content.IsZero() {
		return
	}
	for i := range placements {
		if err := r.drawOne(dst, content, &placements[i]); err != nil {
			r.log.Warn("overlay skipped", "id", placements[i].Element.ID, "error", err)
		}
	}
}

func (r *Rasterizer) drawOne(dst *image.RGBA, content viewport.Rect, pl *Placement) error {
	e := pl.Element
	tr := pl.Transform
	if tr.Opacity <= 0 {
		return nil
	}

	scale := content.W / float64(r.ref.Width)

	var scratch *image.RGBA
	var err error
	switch e.Kind {
	case KindQR:
		scratch, err = r.renderQR(e, scale)
	default:
		text := e.Content
		if tr.Typewriter {
			text = typewriterPrefix(text, pl.Progress)
		}
		scratch, err = r.renderText(e, text, scale)
	}
	if err != nil {
		return err
	}
	if scratch == nil {
		return nil
	}

	if tr.Blur > 0 {
		scratch = boxBlur(scratch, int(math.Ceil(tr.Blur)))
	}
	if tr.Opacity < 1 {
		applyOpacity(scratch, tr.Opacity)
	}

	// Anchor is the element center in surface coordinates.
	pos := e.PositionFor(r.preset)
	var ax, ay float64
	if pos.Percent {
		ax = content.OffsetX + pos.X/100*content.W
		ay = content.OffsetY + pos.Y/100*content.H
	} else {
		ax = content.OffsetX + pos.X*scale
		ay = content.OffsetY + pos.Y*scale
	}
	ax += tr.TranslateXPct / 100 * content.W
	ay += tr.TranslateYPct / 100 * content.H

	m := placementMatrix(scratch.Bounds(), ax, ay, tr.Scale, tr.Rotation)
	xdraw.ApproxBiLinear.Transform(dst, m, scratch, scratch.Bounds(), xdraw.Over, nil)
	return nil
}

// placementMatrix maps the scratch image onto the surface: scaled and
// rotated about its own center, then centered on the anchor.
func placementMatrix(b image.Rectangle, ax, ay, scale, rotation float64) f64.Aff3 {
	cx := float64(b.Min.X+b.Max.X) / 2
	cy := float64(b.Min.Y+b.Max.Y) / 2
	sin, cos := math.Sincos(rotation)
	a00 := scale * cos
	a01 := -scale * sin
	a10 := scale * sin
	a11 := scale * cos
	return f64.Aff3{
		a00, a01, ax - a00*cx - a01*cy,
		a10, a11, ay - a10*cx - a11*cy,
	}
}

func (r *Rasterizer) renderText(e *Element, text string, scale float64) (*image.RGBA, error) {
	if text == "" {
		return nil, nil
	}
	fill, err := ParseColor(e.Styling.Color)
	if err != nil {
		return nil, err
	}

	sizePx := e.Styling.FontSize * scale
	if sizePx < 1 {
		sizePx = 1
	}
	face, err := r.face(int(math.Round(sizePx)))
	if err != nil {
		return nil, err
	}

	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	// Pad so stroke and blur never clip at the scratch edge.
	const pad = 10
	scratch := image.NewRGBA(image.Rect(0, 0, width+2*pad, height+2*pad))
	dot := fixed.Point26_6{
		X: fixed.I(pad),
		Y: fixed.I(pad) + metrics.Ascent,
	}

	if e.Styling.Stroke != "" {
		stroke, err := ParseColor(e.Styling.Stroke)
		if err != nil {
			return nil, err
		}
		d := font.Drawer{Dst: scratch, Src: image.NewUniform(stroke), Face: face}
		offsets := [][2]fixed.Int26_6{
			{-fixed.I(1), 0}, {fixed.I(1), 0}, {0, -fixed.I(1)}, {0, fixed.I(1)},
		}
		for _, off := range offsets {
			d.Dot = fixed.Point26_6{X: dot.X + off[0], Y: dot.Y + off[1]}
			d.DrawString(text)
		}
	}

	d := font.Drawer{Dst: scratch, Src: image.NewUniform(fill), Face: face, Dot: dot}
	d.DrawString(text)
	return scratch, nil
}

func (r *Rasterizer) renderQR(e *Element, scale float64) (*image.RGBA, error) {
	if e.Content == "" {
		return nil, nil
	}
	q, err := qrcode.New(e.Content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr overlay %s: %w", e.ID, err)
	}
	q.DisableBorder = true

	// The styling font size doubles as the QR edge length in reference
	// units, quadrupled so the code stays scannable at typical sizes.
	edge := int(math.Round(e.Styling.FontSize * 4 * scale))
	if edge < 21 {
		edge = 21
	}
	img := q.Image(edge)

	scratch := image.NewRGBA(img.Bounds())
	draw.Draw(scratch, scratch.Bounds(), img, img.Bounds().Min, draw.Src)
	return scratch, nil
}

func (r *Rasterizer) face(sizePx int) (font.Face, error) {
	if f, ok := r.faces[sizePx]; ok {
		return f, nil
	}
	ft, err := baseFont()
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	r.faces[sizePx] = f
	return f, nil
}

// typewriterPrefix returns the prefix of s whose rune length corresponds to
// progress in [0,1].
func typewriterPrefix(s string, progress float64) string {
	runes := []rune(s)
	n := int(math.Ceil(progress * float64(len(runes))))
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

// applyOpacity scales all channels of a premultiplied RGBA image.
func applyOpacity(img *image.RGBA, opacity float64) {
	mul := uint32(opacity * 256)
	for i := range img.Pix {
		img.Pix[i] = uint8(uint32(img.Pix[i]) * mul >> 8)
	}
}

// boxBlur performs a single-pass box blur with the given radius. Good
// enough for an entrance/exit soft-in; not meant to be a gaussian.
func boxBlur(src *image.RGBA, radius int) *image.RGBA {
	if radius <= 0 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum [4]uint32
			var count uint32
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					i := src.PixOffset(px, py)
					sum[0] += uint32(src.Pix[i])
					sum[1] += uint32(src.Pix[i+1])
					sum[2] += uint32(src.Pix[i+2])
					sum[3] += uint32(src.Pix[i+3])
					count++
				}
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i] = uint8(sum[0] / count)
			dst.Pix[i+1] = uint8(sum[1] / count)
			dst.Pix[i+2] = uint8(sum[2] / count)
			dst.Pix[i+3] = uint8(sum[3] / count)
		}
	}
	return dst
}
