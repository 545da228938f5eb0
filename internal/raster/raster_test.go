package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestResizeAndFill(t *testing.T) {
	s := New()
	s.Resize(40, 20)
	if w, h := s.Size(); w != 40 || h != 20 {
		t.Fatalf("Size = %dx%d, want 40x20", w, h)
	}

	s.Fill(color.White)
	s.FillRect(image.Rect(10, 5, 20, 15), color.Black)

	if got := color.RGBAModel.Convert(s.At(0, 0)); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v", got)
	}
	if got := color.RGBAModel.Convert(s.At(15, 10)); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("filled rect = %v", got)
	}
}

func TestResizeClampsNegative(t *testing.T) {
	s := New()
	s.Resize(-5, 10)
	if w, h := s.Size(); w != 0 || h != 10 {
		t.Errorf("Size = %dx%d, want 0x10", w, h)
	}
}

func TestStrokeRect(t *testing.T) {
	s := New()
	s.Resize(10, 10)
	s.StrokeRect(image.Rect(0, 0, 10, 10), color.Black)

	black := color.RGBA{0, 0, 0, 255}
	if color.RGBAModel.Convert(s.At(0, 5)) != black || color.RGBAModel.Convert(s.At(9, 9)) != black {
		t.Error("outline not drawn")
	}
	if color.RGBAModel.Convert(s.At(5, 5)) == black {
		t.Error("interior painted")
	}
}

func TestPNGRoundTrip(t *testing.T) {
	s := New()
	s.Resize(30, 15)
	s.Fill(color.White)
	s.Text(2, 12, "p1", color.Black)

	data, err := s.PNG()
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 15 {
		t.Errorf("decoded size = %v", b)
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth("abc"); got != 21 {
		t.Errorf("TextWidth(abc) = %d, want 21", got)
	}
}
