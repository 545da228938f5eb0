// Package raster provides an in-memory drawing surface for page previews.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Surface is a resizable RGBA canvas. It satisfies viewer.Surface.
type Surface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// New returns an empty surface.
func New() *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}
}

// Resize replaces the canvas with a blank one of the given size.
func (s *Surface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Size returns the canvas dimensions.
func (s *Surface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Fill paints the whole canvas.
func (s *Surface) Fill(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect paints r, clipped to the canvas.
func (s *Surface) FillRect(r image.Rectangle, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// StrokeRect draws a one pixel outline of r.
func (s *Surface) StrokeRect(r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	s.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	s.FillRect(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	s.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	s.FillRect(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// Text draws a line of text with its baseline origin at (x, y).
func (s *Surface) Text(x, y int, text string, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// TextWidth returns the advance of text in pixels.
func TextWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// At returns the color of one pixel.
func (s *Surface) At(x, y int) color.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.At(x, y)
}

// PNG encodes a copy of the canvas.
func (s *Surface) PNG() ([]byte, error) {
	s.mu.RLock()
	snapshot := image.NewRGBA(s.img.Bounds())
	copy(snapshot.Pix, s.img.Pix)
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, snapshot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
