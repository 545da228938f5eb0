package pdfops

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Box is a PDF rectangle in default user space units.
type Box struct {
	LLX, LLY, URX, URY float64
}

func (b Box) Width() float64  { return b.URX - b.LLX }
func (b Box) Height() float64 { return b.URY - b.LLY }

func boxFrom(r *types.Rectangle) Box {
	return Box{LLX: r.LL.X, LLY: r.LL.Y, URX: r.UR.X, URY: r.UR.Y}
}

func (b Box) array() types.Array {
	return types.NewNumberArray(b.LLX, b.LLY, b.URX, b.URY)
}

// Geometry is the visible shape of one page.
type Geometry struct {
	MediaBox Box
	CropBox  Box
	Rotate   int // normalized to 0, 90, 180 or 270
}

// DisplaySize is the crop box size as a viewer shows it, with width and
// height swapped for quarter turns.
func (g Geometry) DisplaySize() (w, h float64) {
	w, h = g.CropBox.Width(), g.CropBox.Height()
	if g.Rotate == 90 || g.Rotate == 270 {
		return h, w
	}
	return w, h
}

// Pages returns the geometry of every page of the PDF at path.
func Pages(path string) ([]Geometry, error) {
	ctx, err := readContext(path)
	if err != nil {
		return nil, err
	}
	out := make([]Geometry, ctx.PageCount)
	for i := range out {
		g, err := pageGeometry(ctx, i+1)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

func pageGeometry(ctx *model.Context, page int) (Geometry, error) {
	_, _, inh, err := ctx.PageDict(page, false)
	if err != nil {
		return Geometry{}, fmt.Errorf("pdfops: page %d: %w", page, err)
	}
	if inh == nil || inh.MediaBox == nil {
		return Geometry{}, fmt.Errorf("pdfops: page %d has no media box", page)
	}
	g := Geometry{
		MediaBox: boxFrom(inh.MediaBox),
		Rotate:   normalizeRotation(inh.Rotate),
	}
	g.CropBox = g.MediaBox
	if inh.CropBox != nil {
		g.CropBox = boxFrom(inh.CropBox)
	}
	return g, nil
}

// normalizeRotation maps any /Rotate value onto [0, 360). Values that are
// not a quarter turn are treated as 0.
func normalizeRotation(r int) int {
	r %= 360
	if r < 0 {
		r += 360
	}
	switch r {
	case 0, 90, 180, 270:
		return r
	}
	return 0
}

// halves splits a media box into the visual left and visual right halves
// of a page displayed with the given rotation.
func halves(mb Box, rotate int) (left, right Box) {
	midX := mb.LLX + mb.Width()/2
	midY := mb.LLY + mb.Height()/2
	westHalf := Box{mb.LLX, mb.LLY, midX, mb.URY}
	eastHalf := Box{midX, mb.LLY, mb.URX, mb.URY}
	bottomHalf := Box{mb.LLX, mb.LLY, mb.URX, midY}
	topHalf := Box{mb.LLX, midY, mb.URX, mb.URY}

	switch normalizeRotation(rotate) {
	case 90:
		return bottomHalf, topHalf
	case 180:
		return eastHalf, westHalf
	case 270:
		return topHalf, bottomHalf
	default:
		return westHalf, eastHalf
	}
}
