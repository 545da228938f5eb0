// Package pdftest writes small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Page describes one generated page.
type Page struct {
	Width, Height float64
	Rotate        int
}

// Letter is a US Letter portrait page.
var Letter = Page{Width: 612, Height: 792}

// Spread is a landscape two-up scan.
var Spread = Page{Width: 1224, Height: 792}

// Pages returns n copies of p.
func Pages(n int, p Page) []Page {
	out := make([]Page, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// Build returns the bytes of a PDF with the given pages. Each page's
// content stream prints its 1-based number so pages stay distinguishable.
func Build(pages ...Page) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))

	for i, p := range pages {
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g]%s /Resources << >> /Contents %d 0 R >>",
			p.Width, p.Height, rotate, 4+2*i))
		content := fmt.Sprintf("%% page %d\n", i+1)
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// Write saves a generated PDF to dir/name and returns its path.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("writing test pdf: %v", err)
	}
	return path
}
