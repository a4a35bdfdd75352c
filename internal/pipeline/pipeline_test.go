package pipeline

import (
	"testing"
	"time"

	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
	"github.com/libsubs/ssarender/internal/shaping"
	"github.com/libsubs/ssarender/internal/style"
)

type stubLoader struct{}

func (stubLoader) LoadGlyph(font uintptr, glyphIndex uint32, sizeQ26_6 int32, hinting uint8) (outline.Path, int32, int32, int32, bool) {
	return outline.Path{
		Points: []outline.Point2D{{X: 0, Y: 0}, {X: 640, Y: 0}, {X: 640, Y: 640}, {X: 0, Y: 640}},
		Tags:   []outline.SegmentTag{0, 0, 0, 0},
	}, 640, 640, 0, true
}

func newTestPipeline() *Pipeline {
	return &Pipeline{
		Shaper:   shaping.FallbackShaper{},
		Outlines: outline.NewCache(stubLoader{}, outline.FallbackStroker{}),
		Geometry: style.FrameGeometry{PlayResX: 1280, PlayResY: 720, FrameWidth: 1280, FrameHeight: 720},
		Coords:   style.CoordParams{Scale: style.FontScale{Font: 1, Border: 1, Blur: 1}, ParX: 1},
		FontHandle: func(family string, bold, italic bool) (uintptr, bool) {
			return 1, true
		},
	}
}

func testStyles() []model.Style {
	return []model.Style{model.DefaultStyle()}
}

func TestRenderEventPlainTextProducesGlyphsAndOneLine(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 0, Text: "hello"}

	res, err := p.RenderEvent(event, testStyles(), 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Text.Glyphs) != 5 {
		t.Fatalf("got %d glyphs, want 5", len(res.Text.Glyphs))
	}
	if len(res.Text.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(res.Text.Lines))
	}
	if res.EvType != model.EventDefault {
		t.Fatalf("got EvType %v, want EventDefault", res.EvType)
	}
}

func TestRenderEventRejectsInvalidStyleIndex(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 5, Text: "hi"}
	if _, err := p.RenderEvent(event, testStyles(), 0, nil); err != model.ErrInvalidStyleIndex {
		t.Fatalf("got %v, want ErrInvalidStyleIndex", err)
	}
}

func TestRenderEventRejectsEmptyText(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 0, Text: ""}
	if _, err := p.RenderEvent(event, testStyles(), 0, nil); err != model.ErrEmptyText {
		t.Fatalf("got %v, want ErrEmptyText", err)
	}
}

func TestRenderEventExplicitLineBreakSplitsLines(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 0, Text: "line one\\Nline two"}

	res, err := p.RenderEvent(event, testStyles(), 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Text.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(res.Text.Lines))
	}
}

func TestRenderEventBoldTagFlipsStyleRun(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 0, Text: "ab{\\b1}cd"}

	res, err := p.RenderEvent(event, testStyles(), 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	glyphs := res.Text.Glyphs
	if len(glyphs) != 4 {
		t.Fatalf("got %d glyphs, want 4", len(glyphs))
	}
	if glyphs[0].Bold || glyphs[1].Bold {
		t.Fatal("glyphs before \\b1 should not be bold")
	}
	if !glyphs[2].Bold || !glyphs[3].Bold {
		t.Fatal("glyphs after \\b1 should be bold")
	}
	if !glyphs[2].StartsNewRun {
		t.Fatal("the bold transition should start a new style run")
	}
}

func TestRenderEventPositionedEventSkipsDefaultPlacement(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 0, Text: "{\\pos(100,200)}hi"}

	res, err := p.RenderEvent(event, testStyles(), 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EvType != model.EventPositioned {
		t.Fatalf("got EvType %v, want EventPositioned", res.EvType)
	}
	if got := float64(res.DeviceOrigin.X) / 64; got != 100 {
		t.Fatalf("got x=%v, want 100", got)
	}
}

func TestRenderEventKaraokeSweepsPrimaryColor(t *testing.T) {
	p := newTestPipeline()
	event := model.Event{StyleIndex: 0, Text: "{\\k50}ab{\\k50}cd", Duration: time.Second}
	want := testStyles()[0]

	before, err := p.RenderEvent(event, testStyles(), 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before.Text.Glyphs) == 0 {
		t.Fatal("expected glyphs")
	}
	for i := range before.Text.Glyphs {
		if g := before.Text.Glyphs[i].PrimaryColor; g != want.PrimaryColor {
			t.Fatalf("glyph %d before sweep: got %+v, want primary %+v", i, g, want.PrimaryColor)
		}
	}

	after, err := p.RenderEvent(event, testStyles(), time.Second, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range after.Text.Glyphs {
		if g := after.Text.Glyphs[i].PrimaryColor; g != want.SecondaryColor {
			t.Fatalf("glyph %d after sweep: got %+v, want secondary %+v", i, g, want.SecondaryColor)
		}
	}
}

func TestRenderEventReusesBackingStorage(t *testing.T) {
	p := newTestPipeline()
	var reuse TextResult
	event := model.Event{StyleIndex: 0, Text: "hello"}

	if _, err := p.RenderEvent(event, testStyles(), 0, &reuse); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstCap := cap(reuse.Glyphs)

	event2 := model.Event{StyleIndex: 0, Text: "hi"}
	if _, err := p.RenderEvent(event2, testStyles(), 0, &reuse); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cap(reuse.Glyphs) != firstCap {
		t.Fatalf("expected backing array to be reused, cap changed from %d to %d", firstCap, cap(reuse.Glyphs))
	}
}
