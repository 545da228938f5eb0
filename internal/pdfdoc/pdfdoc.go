// Package pdfdoc adapts PDF files on disk to the viewer's Document model
// and paints page previews onto a raster.Surface.
package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
	"github.com/ziadkadry99/pdfeditor/internal/raster"
	"github.com/ziadkadry99/pdfeditor/internal/viewer"
)

var (
	paper    = color.White
	ink      = color.RGBA{0x37, 0x41, 0x51, 0xff}
	cropMark = color.RGBA{0x25, 0x63, 0xeb, 0xff}
)

// Resolver maps a document URL to a local file path.
type Resolver func(url string) (string, error)

// Loader opens PDFs through a Resolver.
type Loader struct {
	Resolve Resolver
}

// Load reads the page geometry of the PDF behind url.
func (l Loader) Load(ctx context.Context, url string) (viewer.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.Resolve(url)
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Document is a PDF's page list.
type Document struct {
	path  string
	pages []pdfops.Geometry
}

// Open reads the PDF at path.
func Open(path string) (*Document, error) {
	pages, err := pdfops.Pages(path)
	if err != nil {
		return nil, err
	}
	return &Document{path: path, pages: pages}, nil
}

func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the 1-based page n.
func (d *Document) Page(ctx context.Context, n int) (viewer.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", pdfops.ErrInvalidPage, n, len(d.pages))
	}
	return &Page{number: n, total: len(d.pages), geom: d.pages[n-1]}, nil
}

// Page is one page of a Document.
type Page struct {
	number, total int
	geom          pdfops.Geometry
}

// Viewport sizes the page at scale, one surface pixel per point at 1.0.
func (p *Page) Viewport(scale float64) viewer.Viewport {
	w, h := p.geom.DisplaySize()
	return viewer.Viewport{
		Width:  math.Round(w * scale),
		Height: math.Round(h * scale),
		Scale:  scale,
	}
}

// Render paints the page outline, its crop region and a page label. It
// does not rasterize page content.
func (p *Page) Render(ctx context.Context, s viewer.Surface, vp viewer.Viewport) error {
	surface, ok := s.(*raster.Surface)
	if !ok {
		return fmt.Errorf("pdfdoc: unsupported surface %T", s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w, h := vp.PixelSize()
	page := image.Rect(0, 0, w, h)
	surface.Fill(paper)
	surface.StrokeRect(page, ink)

	// Cropped pages (sliced halves) get an inner frame.
	if p.geom.CropBox != p.geom.MediaBox {
		surface.StrokeRect(page.Inset(2), cropMark)
	}

	label := fmt.Sprintf("%d / %d", p.number, p.total)
	if p.geom.Rotate != 0 {
		label += fmt.Sprintf(" (rot %d)", p.geom.Rotate)
	}
	x := (w - raster.TextWidth(label)) / 2
	surface.Text(max(x, 2), max(h-8, 13), label, ink)
	return ctx.Err()
}
