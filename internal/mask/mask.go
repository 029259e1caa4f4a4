// Package mask decodes animated luminance-mask assets into frame sets for
// the transition compositor. A mask is an animated raster whose brightness
// per pixel and frame encodes a blend weight between two images.
package mask

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ivlev/cardrender/internal/source"
)

// Set is the decoded frame sequence of one mask asset. The transition
// compositor exclusively owns a set for the lifetime of one transition and
// treats it as read-only.
type Set struct {
	Frames []*image.RGBA
	Width  int
	Height int
}

// FrameCount returns the number of decoded frames; zero means the
// transition degrades to a hard cut.
func (s *Set) FrameCount() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Load decodes a mask asset from a path: an animated GIF, a directory of
// PNG frames (sorted by name), or a single still image.
func Load(path string) (*Set, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &source.MediaLoadError{Asset: path, Err: err}
	}
	if fi.IsDir() {
		return loadDir(path)
	}
	if filepath.Ext(path) == ".gif" {
		f, err := os.Open(path)
		if err != nil {
			return nil, &source.MediaLoadError{Asset: path, Err: err}
		}
		defer f.Close()
		return DecodeGIF(f, path)
	}
	return loadStill(path)
}

// DecodeGIF decodes an animated GIF into a frame set, compositing each
// frame over the previous canvas so partial frames become full-size masks.
func DecodeGIF(r io.Reader, asset string) (*Set, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, &source.MediaLoadError{Asset: asset, Err: err}
	}
	if len(g.Image) == 0 {
		return &Set{}, nil
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	set := &Set{Width: bounds.Dx(), Height: bounds.Dy()}
	canvas := image.NewRGBA(bounds)
	for _, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snapshot := image.NewRGBA(bounds)
		copy(snapshot.Pix, canvas.Pix)
		set.Frames = append(set.Frames, snapshot)
	}
	return set, nil
}

func loadDir(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &source.MediaLoadError{Asset: dir, Err: err}
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".png" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, &source.MediaLoadError{
			Asset: dir,
			Err:   fmt.Errorf("no png frames in directory"),
		}
	}

	set := &Set{}
	for _, p := range paths {
		img, err := decodeRGBA(p)
		if err != nil {
			return nil, err
		}
		if set.Width == 0 {
			set.Width = img.Bounds().Dx()
			set.Height = img.Bounds().Dy()
		}
		set.Frames = append(set.Frames, img)
	}
	return set, nil
}

func loadStill(path string) (*Set, error) {
	img, err := decodeRGBA(path)
	if err != nil {
		return nil, err
	}
	return &Set{
		Frames: []*image.RGBA{img},
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func decodeRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &source.MediaLoadError{Asset: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &source.MediaLoadError{Asset: path, Err: err}
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	return rgba, nil
}
