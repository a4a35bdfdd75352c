package ass

import (
	"testing"

	"github.com/libsubs/ssarender/internal/model"
)

func newTestTrack(text string) *Track {
	return &Track{
		PlayResX: 640,
		PlayResY: 360,
		Styles:   []Style{model.DefaultStyle()},
		Events: []Event{
			{StyleIndex: 0, Text: text, Duration: 5_000_000_000},
		},
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Config{FrameWidth: 640, FrameHeight: 360, StorageWidth: 640, StorageHeight: 360})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestNewRendererRejectsZeroFrameSize(t *testing.T) {
	if _, err := NewRenderer(Config{}); err != ErrInit {
		t.Fatalf("got %v, want ErrInit", err)
	}
}

func TestRenderFrameProducesImagesForActiveEvent(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Done()

	list, changeLevel, err := r.RenderFrame(newTestTrack("hello"), 0)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if list.Head == nil {
		t.Fatal("expected at least one image")
	}
	if changeLevel != 2 {
		t.Fatalf("got change level %d, want 2 for the first frame", changeLevel)
	}
}

func TestRenderFrameSkipsInactiveEvents(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Done()

	track := newTestTrack("hello")
	list, changeLevel, err := r.RenderFrame(track, 10_000)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if list.Head != nil {
		t.Fatal("expected no images once the event has ended")
	}
	if changeLevel != 0 {
		t.Fatalf("got change level %d, want 0 (empty frame, no prior frame)", changeLevel)
	}
}

func TestRenderFrameDetectsNoChangeBetweenIdenticalFrames(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Done()

	track := newTestTrack("hello")
	if _, _, err := r.RenderFrame(track, 0); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	_, changeLevel, err := r.RenderFrame(track, 1)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if changeLevel != 0 {
		t.Fatalf("got change level %d, want 0 for an unchanged frame", changeLevel)
	}
}

func TestRenderFrameDetectsPositionOnlyChangeForMovingEvent(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Done()

	track := newTestTrack(`{\move(0,0,200,0,0,1000)}hello`)
	if _, _, err := r.RenderFrame(track, 0); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	_, changeLevel, err := r.RenderFrame(track, 500)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if changeLevel != 1 {
		t.Fatalf("got change level %d, want 1 for a move-only change", changeLevel)
	}
}

func TestRenderFrameSkipsInvalidEventsWithoutFailingTheFrame(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Done()

	track := &Track{
		PlayResX: 640,
		PlayResY: 360,
		Styles:   []Style{model.DefaultStyle()},
		Events: []Event{
			{StyleIndex: 9, Text: "bad style index", Duration: 5_000_000_000},
			{StyleIndex: 0, Text: "good", Duration: 5_000_000_000},
		},
	}
	list, _, err := r.RenderFrame(track, 0)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if list.Head == nil {
		t.Fatal("expected the valid event to still render")
	}
}

func TestGlyphInfoArrayReportsActiveGlyphs(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Done()

	glyphs, err := r.GlyphInfoArray(newTestTrack("hi"), 0)
	if err != nil {
		t.Fatalf("GlyphInfoArray: %v", err)
	}
	if len(glyphs) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(glyphs))
	}
}
