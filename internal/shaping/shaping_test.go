package shaping

import (
	"testing"

	"golang.org/x/text/unicode/bidi"

	"github.com/libsubs/ssarender/internal/model"
)

func TestFallbackShaperOneClusterPerRune(t *testing.T) {
	clusters, err := FallbackShaper{}.Shape(Run{Text: []rune("abc"), FontSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("got %d clusters, want 3", len(clusters))
	}
	for i, c := range clusters {
		if c.RuneStart != i || c.RuneCount != 1 {
			t.Fatalf("cluster %d: got start=%d count=%d, want start=%d count=1", i, c.RuneStart, c.RuneCount, i)
		}
		if c.Advance.X <= 0 {
			t.Fatalf("cluster %d: expected a positive advance, got %v", i, c.Advance.X)
		}
	}
}

func TestFallbackShaperNeverFails(t *testing.T) {
	if _, err := (FallbackShaper{}).Shape(Run{}); err != nil {
		t.Fatalf("FallbackShaper should never fail, got %v", err)
	}
}

func TestReorderVisualIsIdentityForPureLTR(t *testing.T) {
	line := []rune("hello world")
	order := ReorderVisual(line)
	for i, idx := range order {
		if idx != i {
			t.Fatalf("pure LTR text should reorder to identity, got %v", order)
		}
	}
}

func TestReorderVisualReversesPureRTL(t *testing.T) {
	line := []rune("אבגד")
	order := ReorderVisual(line)
	if len(order) != len(line) {
		t.Fatalf("got %d indices, want %d", len(order), len(line))
	}
	reversed := true
	for i, idx := range order {
		if idx != len(line)-1-i {
			reversed = false
			break
		}
	}
	if !reversed {
		t.Fatalf("pure RTL text should reorder back to front, got %v", order)
	}
}

func TestBaseDirectionDetectsRTL(t *testing.T) {
	if got := BaseDirection([]rune("שלום")); got != bidi.RightToLeft {
		t.Fatalf("got %v, want RightToLeft", got)
	}
}

func TestBaseDirectionDefaultsLTR(t *testing.T) {
	if got := BaseDirection([]rune("hello")); got != bidi.LeftToRight {
		t.Fatalf("got %v, want LeftToRight", got)
	}
}

func TestClusterAdvanceIsModelPoint(t *testing.T) {
	var c Cluster
	c.Advance = model.Point{X: 64}
	if c.Advance.X != 64 {
		t.Fatal("Cluster.Advance should be a model.Point")
	}
}
