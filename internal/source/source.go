// Package source supplies decoded base-visual frames to the engine. The
// engine itself never fetches or decodes media; these implementations are
// the local-file collaborators the CLI wires in.
package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
)

// MediaLoadError reports that an asset could not be decoded. A transition
// mask that fails to load degrades to a hard cut; a scene frame that fails
// to load fails the render job. The error carries the asset name either way.
type MediaLoadError struct {
	Asset string
	Err   error
}

func (e *MediaLoadError) Error() string {
	return fmt.Sprintf("media load failed for %s: %v", e.Asset, e.Err)
}

func (e *MediaLoadError) Unwrap() error { return e.Err }

// Source is a sequence of base visuals.
type Source interface {
	FrameCount() int
	Dimensions(index int) (width, height float64, err error)
	Frame(index int) (image.Image, error)
	Close() error
}

// ImageSource reads a directory of jpeg/png files (sorted by name) or one
// single image file.
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch filepath.Ext(entry.Name()) {
			case ".jpg", ".jpeg", ".png":
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}
	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) FrameCount() int {
	return len(s.paths)
}

func (s *ImageSource) Dimensions(index int) (float64, float64, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, &MediaLoadError{Asset: s.paths[index], Err: err}
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

func (s *ImageSource) Frame(index int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &MediaLoadError{Asset: s.paths[index], Err: err}
	}
	return img, nil
}

func (s *ImageSource) Close() error { return nil }
