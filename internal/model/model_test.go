package model

import "testing"

func TestRectIntersectClampsToOverlap(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 100, Y1: 100}
	b := Rect{X0: 50, Y0: -10, X1: 200, Y1: 60}
	got := a.Intersect(b)
	want := Rect{X0: 50, Y0: 0, X1: 100, Y1: 60}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRectEmptyForZeroArea(t *testing.T) {
	if !(Rect{X0: 10, Y0: 10, X1: 10, Y1: 20}).Empty() {
		t.Fatal("zero-width rect should be empty")
	}
	if (Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}).Empty() {
		t.Fatal("unit rect should not be empty")
	}
}

func TestColorPackIsBigEndianRGBA(t *testing.T) {
	c := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if got, want := c.Pack(), uint32(0x11223344); got != want {
		t.Fatalf("got %#x, want %#x", got, want)
	}
}

func TestColorTransparentAndOpaque(t *testing.T) {
	if !(Color{A: 255}).Transparent() {
		t.Fatal("A=255 should be fully transparent")
	}
	if !(Color{A: 0}).Opaque() {
		t.Fatal("A=0 should be fully opaque")
	}
}

func TestLerpColorClampsAndInterpolates(t *testing.T) {
	a := Color{R: 0, A: 0}
	b := Color{R: 200, A: 0}
	if got := LerpColor(a, b, -1); got != a {
		t.Fatalf("t<0 should clamp to a, got %+v", got)
	}
	if got := LerpColor(a, b, 2); got != b {
		t.Fatalf("t>1 should clamp to b, got %+v", got)
	}
	mid := LerpColor(a, b, 0.5)
	if mid.R != 100 {
		t.Fatalf("got R=%d, want 100", mid.R)
	}
}

func TestAlignmentParts(t *testing.T) {
	cases := []struct {
		a                Alignment
		wantH, wantV int
	}{
		{AlignBottomLeft, 0, 0},
		{AlignBottomCenter, 1, 0},
		{AlignBottomRight, 2, 0},
		{AlignMiddleLeft, 0, 1},
		{AlignTopRight, 2, 2},
	}
	for _, c := range cases {
		if got := c.a.HorizontalPart(); got != c.wantH {
			t.Errorf("%v.HorizontalPart() = %d, want %d", c.a, got, c.wantH)
		}
		if got := c.a.VerticalPart(); got != c.wantV {
			t.Errorf("%v.VerticalPart() = %d, want %d", c.a, got, c.wantV)
		}
	}
}

func TestEventValidateRejectsOutOfRangeStyleAndEmptyText(t *testing.T) {
	e := Event{StyleIndex: 2, Text: "hi"}
	if err := e.Validate(1); err != ErrInvalidStyleIndex {
		t.Fatalf("got %v, want ErrInvalidStyleIndex", err)
	}
	e = Event{StyleIndex: 0, Text: ""}
	if err := e.Validate(1); err != ErrEmptyText {
		t.Fatalf("got %v, want ErrEmptyText", err)
	}
}

func TestEventActiveWindow(t *testing.T) {
	e := Event{Start: 10, Duration: 5}
	if e.Active(9) {
		t.Fatal("should not be active before start")
	}
	if !e.Active(10) || !e.Active(14) {
		t.Fatal("should be active within [start, end)")
	}
	if e.Active(15) {
		t.Fatal("should not be active at end")
	}
}

func TestGlyphInfoSameStyleRun(t *testing.T) {
	a := GlyphInfo{FontFamily: "Arial", FontSize: 20}
	b := a
	if !a.SameStyleRun(&b) {
		t.Fatal("identical glyphs should share a style run")
	}
	b.Bold = true
	if a.SameStyleRun(&b) {
		t.Fatal("differing Bold should break the style run")
	}
}

func TestGlyphInfoSnapshotFromCopiesKaraokeState(t *testing.T) {
	rs := &RenderState{Karaoke: KaraokeState{Mode: KaraokeKF, StartMs: 100, DurationMs: 200}}
	var g GlyphInfo
	g.SnapshotFrom(rs)
	if g.Effect != EffectKaraokeFill {
		t.Fatalf("got effect %v, want EffectKaraokeFill", g.Effect)
	}
	if g.EffectStartMs != 100 || g.EffectDurationMs != 200 {
		t.Fatalf("got start=%d dur=%d, want 100/200", g.EffectStartMs, g.EffectDurationMs)
	}
}

func TestTextInfoGrowGlyphsGeometricCapacityAndReset(t *testing.T) {
	var ti TextInfo
	for i := 0; i < 20; i++ {
		g := ti.GrowGlyphs()
		g.Symbol = rune('a' + i%26)
	}
	if len(ti.Glyphs) != 20 {
		t.Fatalf("got %d glyphs, want 20", len(ti.Glyphs))
	}
	ti.Reset()
	if len(ti.Glyphs) != 0 {
		t.Fatalf("Reset should truncate to zero length, got %d", len(ti.Glyphs))
	}
	if cap(ti.Glyphs) == 0 {
		t.Fatal("Reset should keep the backing array's capacity")
	}
}

func TestNLinesCountsLineBreaksWithinRange(t *testing.T) {
	glyphs := []GlyphInfo{{LineBreak: 0}, {LineBreak: 2}, {LineBreak: 0}, {LineBreak: 1}, {LineBreak: 0}}
	if got := NLines(glyphs); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}
