package pdfops

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Slice writes to out a copy of in where every page becomes two: its
// visual left half followed by its visual right half. Page rotation is
// honoured, so a spread scanned sideways still splits along its spine.
func Slice(in, out string) error {
	src, err := readContext(in)
	if err != nil {
		return err
	}

	n := src.PageCount
	if n == 0 {
		return fmt.Errorf("pdfops: %s has no pages", in)
	}
	geoms := make([]Geometry, n)
	doubled := make([]int, 0, 2*n)
	for i := 1; i <= n; i++ {
		g, err := pageGeometry(src, i)
		if err != nil {
			return err
		}
		geoms[i-1] = g
		doubled = append(doubled, i, i)
	}

	dst, err := pdfcpu.ExtractPages(src, doubled, false)
	if err != nil {
		return fmt.Errorf("pdfops: duplicating pages of %s: %w", in, err)
	}

	// Re-read the copy so its pages resolve through a validated page tree.
	var buf bytes.Buffer
	if err := api.WriteContext(dst, &buf); err != nil {
		return fmt.Errorf("pdfops: encoding %s: %w", out, err)
	}
	dst, err = readContextBytes(buf.Bytes())
	if err != nil {
		return err
	}

	for i := 1; i <= dst.PageCount; i++ {
		d, _, _, err := dst.PageDict(i, false)
		if err != nil {
			return fmt.Errorf("pdfops: page %d of %s: %w", i, out, err)
		}
		g := geoms[(i-1)/2]
		left, right := halves(g.MediaBox, g.Rotate)
		crop := left
		if i%2 == 0 {
			crop = right
		}
		d.Update("MediaBox", g.MediaBox.array())
		d.Update("CropBox", crop.array())
	}

	return writeContext(dst, out)
}
