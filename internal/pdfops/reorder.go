package pdfops

import (
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Mode selects how sliced pages are put back into reading order.
type Mode int

const (
	// BookletRTL unfolds a right-to-left saddle-stitched booklet.
	BookletRTL Mode = iota + 1
	// BookletLTR unfolds a left-to-right saddle-stitched booklet.
	BookletLTR
	// SpreadsRTL swaps the halves of every spread.
	SpreadsRTL
	// SpreadsLTR keeps the sliced order.
	SpreadsLTR
)

var actions = map[string]Mode{
	"booklet_rtl": BookletRTL,
	"booklet_ltr": BookletLTR,
	"spreads_rtl": SpreadsRTL,
	"spreads_ltr": SpreadsLTR,
}

// ParseAction maps a form action name to a Mode.
func ParseAction(action string) (Mode, error) {
	m, ok := actions[action]
	if !ok {
		return 0, fmt.Errorf("pdfops: invalid action %q", action)
	}
	return m, nil
}

func (m Mode) String() string {
	for name, mode := range actions {
		if mode == m {
			return name
		}
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ReorderPlan returns the 1-based source page for each output position of
// an n-page document. The input is a sequence of sliced spreads: pages
// 2s+1 and 2s+2 are the visual left and right halves of spread s.
func ReorderPlan(n int, mode Mode) ([]int, error) {
	if n%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddPageCount, n)
	}
	plan := make([]int, n)

	switch mode {
	case BookletRTL, BookletLTR:
		for s := 0; s < n/2; s++ {
			inLeft, inRight := 2*s+1, 2*s+2
			low, high := s, n-1-s
			// Outer and inner sheets alternate which half faces front.
			front, back := inLeft, inRight
			if (s%2 == 0) != (mode == BookletRTL) {
				front, back = inRight, inLeft
			}
			plan[low], plan[high] = front, back
		}
	case SpreadsRTL:
		for i := 0; i < n; i += 2 {
			plan[i], plan[i+1] = i+2, i+1
		}
	case SpreadsLTR:
		for i := range plan {
			plan[i] = i + 1
		}
	default:
		return nil, fmt.Errorf("pdfops: invalid mode %d", int(mode))
	}
	return plan, nil
}

// Reorder writes to out the pages of in rearranged by mode.
func Reorder(in, out string, mode Mode) error {
	n, err := PageCount(in)
	if err != nil {
		return err
	}
	plan, err := ReorderPlan(n, mode)
	if err != nil {
		return err
	}

	pages := make([]string, len(plan))
	for i, p := range plan {
		pages[i] = strconv.Itoa(p)
	}
	if err := api.CollectFile(in, out, pages, newConfig()); err != nil {
		return fmt.Errorf("pdfops: reordering %s: %w", in, err)
	}
	return nil
}
