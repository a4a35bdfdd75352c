package style

import (
	"testing"

	"github.com/libsubs/ssarender/internal/model"
)

func TestInitFontScaleDerivesFromFrameOverPlayRes(t *testing.T) {
	s := InitFontScale(FrameGeometry{PlayResY: 288, FrameHeight: 576})
	if s.Font != 2 || s.Border != 2 || s.Blur != 2 {
		t.Fatalf("got %+v, want all scales == 2", s)
	}
}

func TestInitFontScaleUsesFitHeightWhenSet(t *testing.T) {
	s := InitFontScale(FrameGeometry{PlayResY: 288, FitHeight: 144, FrameHeight: 576})
	if s.Font != 4 {
		t.Fatalf("FitHeight should override PlayResY: got %v, want 4", s.Font)
	}
}

func TestParFromDARPrefersExplicitValue(t *testing.T) {
	if got := ParFromDAR(1.5, 16.0/9, 4.0/3); got != 1.5 {
		t.Fatalf("got %v, want 1.5", got)
	}
}

func TestParFromDARDerivesFromRatios(t *testing.T) {
	got := ParFromDAR(0, 2.0, 1.0)
	if got != 2.0 {
		t.Fatalf("got %v, want 2.0", got)
	}
}

func TestX2ScrPosIgnoresMargins(t *testing.T) {
	p := CoordParams{ParX: 1, Margins: model.Margins{Left: 50}, UseMargins: true}
	if got := p.X2ScrPos(100); got != 100 {
		t.Fatalf("positioned events must ignore margins: got %v, want 100", got)
	}
}

func TestX2ScrAppliesMarginsWhenEnabled(t *testing.T) {
	p := CoordParams{ParX: 1, Margins: model.Margins{Left: 50}, UseMargins: true}
	if got := p.X2Scr(100); got != 150 {
		t.Fatalf("got %v, want 150", got)
	}
}

func TestMergeOverridesAppliesBoundFields(t *testing.T) {
	script := model.DefaultStyle()
	user := model.DefaultStyle()
	user.FontFamily = "Comic Sans MS"

	merged := MergeOverrides(script, user, OverrideFontName, false, 288)
	if merged.FontFamily != "Comic Sans MS" {
		t.Fatalf("got %q, want overridden font family", merged.FontFamily)
	}
}

func TestMergeOverridesSuppressedWhenExplicitExceptFontScale(t *testing.T) {
	script := model.DefaultStyle()
	user := model.DefaultStyle()
	user.FontFamily = "Comic Sans MS"
	user.FontSize = 40

	merged := MergeOverrides(script, user, OverrideFontName|OverrideSelectiveFontScale, true, 288)
	if merged.FontFamily == "Comic Sans MS" {
		t.Fatal("font-name override should be suppressed for an explicit event")
	}
	if merged.FontSize != 40 {
		t.Fatalf("selective-font-scale override should still apply: got %v, want 40", merged.FontSize)
	}
}
