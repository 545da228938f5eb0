package pdfops

import (
	"errors"
	"reflect"
	"testing"
)

func TestReorderPlan(t *testing.T) {
	tests := []struct {
		name string
		n    int
		mode Mode
		want []int
	}{
		{"booklet rtl 4", 4, BookletRTL, []int{1, 4, 3, 2}},
		{"booklet rtl 8", 8, BookletRTL, []int{1, 4, 5, 8, 7, 6, 3, 2}},
		{"booklet ltr 4", 4, BookletLTR, []int{2, 3, 4, 1}},
		{"booklet ltr 8", 8, BookletLTR, []int{2, 3, 6, 7, 8, 5, 4, 1}},
		{"spreads rtl", 6, SpreadsRTL, []int{2, 1, 4, 3, 6, 5}},
		{"spreads ltr", 4, SpreadsLTR, []int{1, 2, 3, 4}},
		{"empty", 0, SpreadsLTR, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReorderPlan(tt.n, tt.mode)
			if err != nil {
				t.Fatalf("ReorderPlan: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReorderPlan(%d, %v) = %v, want %v", tt.n, tt.mode, got, tt.want)
			}
		})
	}
}

func TestReorderPlanIsPermutation(t *testing.T) {
	for _, mode := range []Mode{BookletRTL, BookletLTR, SpreadsRTL, SpreadsLTR} {
		for n := 2; n <= 20; n += 2 {
			plan, err := ReorderPlan(n, mode)
			if err != nil {
				t.Fatalf("ReorderPlan(%d, %v): %v", n, mode, err)
			}
			seen := make(map[int]bool)
			for _, p := range plan {
				if p < 1 || p > n || seen[p] {
					t.Fatalf("ReorderPlan(%d, %v) = %v is not a permutation", n, mode, plan)
				}
				seen[p] = true
			}
		}
	}
}

func TestReorderPlanRejectsOddCount(t *testing.T) {
	if _, err := ReorderPlan(5, SpreadsLTR); !errors.Is(err, ErrOddPageCount) {
		t.Errorf("err = %v, want ErrOddPageCount", err)
	}
}

func TestReorderPlanRejectsUnknownMode(t *testing.T) {
	if _, err := ReorderPlan(4, Mode(9)); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseAction(t *testing.T) {
	tests := map[string]Mode{
		"booklet_rtl": BookletRTL,
		"booklet_ltr": BookletLTR,
		"spreads_rtl": SpreadsRTL,
		"spreads_ltr": SpreadsLTR,
	}
	for action, want := range tests {
		got, err := ParseAction(action)
		if err != nil || got != want {
			t.Errorf("ParseAction(%q) = %v, %v; want %v", action, got, err, want)
		}
		if got.String() != action {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
	if _, err := ParseAction("shuffle"); err == nil {
		t.Error("expected error for unknown action")
	}
}
