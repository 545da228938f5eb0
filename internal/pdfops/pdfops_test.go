package pdfops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/pdfeditor/internal/pdftest"
)

func widths(t *testing.T, path string) []float64 {
	t.Helper()
	geoms, err := Pages(path)
	if err != nil {
		t.Fatalf("Pages(%s): %v", path, err)
	}
	out := make([]float64, len(geoms))
	for i, g := range geoms {
		out[i] = g.MediaBox.Width()
	}
	return out
}

func sized(widths ...float64) []pdftest.Page {
	pages := make([]pdftest.Page, len(widths))
	for i, w := range widths {
		pages[i] = pdftest.Page{Width: w, Height: 500}
	}
	return pages
}

func TestPageCount(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "three.pdf", pdftest.Pages(3, pdftest.Letter)...)
	n, err := PageCount(path)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 3 {
		t.Errorf("PageCount = %d, want 3", n)
	}
}

func TestPageCountMissingFile(t *testing.T) {
	_, err := PageCount(filepath.Join(t.TempDir(), "nope.pdf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestDeletePage(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "doc.pdf", sized(100, 200, 300)...)

	if err := DeletePage(path, 2); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	got := widths(t, path)
	if len(got) != 2 || got[0] != 100 || got[1] != 300 {
		t.Errorf("page widths after delete = %v, want [100 300]", got)
	}
}

func TestDeletePageInvalid(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "doc.pdf", pdftest.Pages(2, pdftest.Letter)...)

	for _, page := range []int{0, -1, 3} {
		if err := DeletePage(path, page); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("DeletePage(%d) err = %v, want ErrInvalidPage", page, err)
		}
	}
	if n, _ := PageCount(path); n != 2 {
		t.Errorf("page count changed to %d", n)
	}
}

func TestDeleteOnlyPage(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "one.pdf", pdftest.Letter)
	if err := DeletePage(path, 1); !errors.Is(err, ErrLastPage) {
		t.Errorf("err = %v, want ErrLastPage", err)
	}
}

func TestSlice(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Write(t, dir, "scan.pdf",
		pdftest.Page{Width: 1000, Height: 600},
		pdftest.Page{Width: 600, Height: 1000, Rotate: 90},
	)
	out := filepath.Join(dir, "sliced.pdf")

	if err := Slice(in, out); err != nil {
		t.Fatalf("Slice: %v", err)
	}

	geoms, err := Pages(out)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	want := []Box{
		{0, 0, 500, 600},
		{500, 0, 1000, 600},
		{0, 0, 600, 500},
		{0, 500, 600, 1000},
	}
	if len(geoms) != len(want) {
		t.Fatalf("sliced page count = %d, want %d", len(geoms), len(want))
	}
	for i, g := range geoms {
		if g.CropBox != want[i] {
			t.Errorf("page %d crop box = %v, want %v", i+1, g.CropBox, want[i])
		}
	}
	if geoms[2].Rotate != 90 {
		t.Errorf("rotation lost: %d", geoms[2].Rotate)
	}
}

func TestReorder(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Write(t, dir, "in.pdf", sized(100, 200, 300, 400)...)
	out := filepath.Join(dir, "out.pdf")

	if err := Reorder(in, out, SpreadsRTL); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	got := widths(t, out)
	want := []float64{200, 100, 400, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("widths = %v, want %v", got, want)
		}
	}
}

func TestReorderOddPageCount(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Write(t, dir, "odd.pdf", pdftest.Pages(3, pdftest.Letter)...)
	err := Reorder(in, filepath.Join(dir, "out.pdf"), SpreadsLTR)
	if !errors.Is(err, ErrOddPageCount) {
		t.Errorf("err = %v, want ErrOddPageCount", err)
	}
}

func TestProcess(t *testing.T) {
	work, outDir := t.TempDir(), t.TempDir()
	in := pdftest.Write(t, work, "book.pdf", pdftest.Pages(2, pdftest.Spread)...)

	final, err := Process(in, work, outDir, "booklet_rtl")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if final != filepath.Join(outDir, "processed_book.pdf") {
		t.Errorf("final path = %q", final)
	}
	if n, err := PageCount(final); err != nil || n != 4 {
		t.Errorf("PageCount(final) = %d, %v; want 4", n, err)
	}
	if _, err := os.Stat(filepath.Join(work, "sliced_temp_book.pdf")); !os.IsNotExist(err) {
		t.Errorf("intermediate not removed: %v", err)
	}
}

func TestProcessInvalidAction(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Write(t, dir, "book.pdf", pdftest.Spread)
	if _, err := Process(in, dir, dir, "sideways"); err == nil {
		t.Error("expected error for invalid action")
	}
}
