package outline

import "testing"

func TestConstructBoxIsUnitSquare(t *testing.T) {
	v := constructBox()
	if !v.Valid {
		t.Fatal("box outline should be valid")
	}
	if len(v.Fill.Points) != 4 {
		t.Fatalf("got %d points, want 4", len(v.Fill.Points))
	}
	if v.Cbox.X1-v.Cbox.X0 != 1 || v.Cbox.Y1-v.Cbox.Y0 != 1 {
		t.Fatalf("unit square cbox should span 1 pixel per axis, got %+v", v.Cbox)
	}
}

func TestConstructDrawingParsesSimpleTriangle(t *testing.T) {
	v, ok := constructDrawing(DrawingKey("m 0 0 l 10 0 l 10 10", 0))
	if !ok || !v.Valid {
		t.Fatal("expected a valid outline for a simple triangle")
	}
	if len(v.Fill.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(v.Fill.Points))
	}
}

func TestConstructDrawingRejectsEmpty(t *testing.T) {
	if _, ok := constructDrawing(DrawingKey("", 0)); ok {
		t.Fatal("expected empty drawing command string to fail construction")
	}
}

func TestFallbackStrokerWidensBoundingBox(t *testing.T) {
	src := Path{Points: []Point2D{{0, 0}, {640, 0}, {640, 640}, {0, 640}}}
	out, ok := FallbackStroker{}.Stroke(src, 0, 64, 64)
	if !ok {
		t.Fatal("expected stroking to succeed for a non-empty path")
	}
	if len(out.Points) != len(src.Points) {
		t.Fatalf("stroked path changed point count: got %d, want %d", len(out.Points), len(src.Points))
	}
}

func TestConstructBorderFailsWithoutValidSource(t *testing.T) {
	c := NewCache(nil, nil)
	v, ok := c.constructBorder(BorderKey(&Value{Valid: false}, 64, 64, 0))
	if ok || v.Valid {
		t.Fatal("expected border construction to fail for an invalid source outline")
	}
}

type stubLoader struct{}

func (stubLoader) LoadGlyph(font uintptr, glyphIndex uint32, sizeQ26_6 int32, hinting uint8) (Path, int32, int32, int32, bool) {
	return Path{Points: []Point2D{{0, 0}, {640, 0}, {640, 640}, {0, 640}}, Tags: []SegmentTag{0, 0, 0, 0}}, 640, 640, 0, true
}

func TestCacheConstructsGlyphOutlineOnMissAndReusesOnHit(t *testing.T) {
	c := NewCache(stubLoader{}, FallbackStroker{})
	key := GlyphKey(1, 2, 18<<6, 0)

	r1 := c.Get(key)
	if !r1.Valid {
		t.Fatal("expected glyph outline construction to succeed")
	}
	r2 := c.Get(key)
	if r1.Value.Advance != r2.Value.Advance {
		t.Fatal("expected repeated Get to return equivalent content (Property 3)")
	}
}

func TestCacheRejectsGlyphWithoutLoader(t *testing.T) {
	c := NewCache(nil, nil)
	r := c.Get(GlyphKey(99, 1, 18<<6, 0))
	if r.Valid {
		t.Fatal("expected construction to fail without a loader")
	}
}
