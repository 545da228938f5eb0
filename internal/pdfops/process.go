package pdfops

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file name prefixes.
const (
	SlicedPrefix    = "sliced_temp_"
	ProcessedPrefix = "processed_"
)

// Process slices in into workDir, reorders the result into outDir by
// action and returns the processed file's path. The sliced intermediate is
// removed whether or not reordering succeeds.
func Process(in, workDir, outDir, action string) (string, error) {
	mode, err := ParseAction(action)
	if err != nil {
		return "", err
	}

	name := filepath.Base(in)
	sliced := filepath.Join(workDir, SlicedPrefix+name)
	final := filepath.Join(outDir, ProcessedPrefix+name)
	defer os.Remove(sliced)

	if err := Slice(in, sliced); err != nil {
		return "", fmt.Errorf("slicing %s: %w", name, err)
	}
	if err := Reorder(sliced, final, mode); err != nil {
		return "", fmt.Errorf("reordering %s: %w", name, err)
	}
	return final, nil
}
