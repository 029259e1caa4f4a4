package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFSource renders the pages of a PDF as the photo sequence: card
// templates are commonly authored as multi-page PDFs.
type PDFSource struct {
	doc  *fitz.Document
	path string
	dpi  float64
}

func NewPDFSource(path string, dpi float64) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &MediaLoadError{Asset: path, Err: err}
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (s *PDFSource) FrameCount() int {
	return s.doc.NumPage()
}

func (s *PDFSource) Dimensions(index int) (float64, float64, error) {
	rect, err := s.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// Frame opens a private document handle per call so that concurrent
// render workers never share fitz state.
func (s *PDFSource) Frame(index int) (image.Image, error) {
	doc, err := fitz.New(s.path)
	if err != nil {
		return nil, &MediaLoadError{Asset: s.path, Err: err}
	}
	defer doc.Close()

	img, err := doc.ImageDPI(index, s.dpi)
	if err != nil {
		return nil, &MediaLoadError{Asset: s.path, Err: err}
	}
	return img, nil
}

func (s *PDFSource) Close() error { return s.doc.Close() }
