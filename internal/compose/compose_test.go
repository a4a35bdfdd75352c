package compose

import (
	"testing"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
)

func TestComputeFilterBorderAndShadowFlags(t *testing.T) {
	g := &model.GlyphInfo{
		BorderX: 2, BorderY: 2,
		ShadowX: 1, ShadowY: 1,
		PrimaryColor: model.Color{A: 0},
	}
	f := computeFilter(g)
	if f.Flags&FilterNonzeroBorder == 0 {
		t.Fatal("expected nonzero-border flag")
	}
	if f.Flags&FilterNonzeroShadow == 0 {
		t.Fatal("expected nonzero-shadow flag since border is present")
	}
}

func TestComputeFilterShadowSuppressedWithoutBorderOrFillInShadow(t *testing.T) {
	g := &model.GlyphInfo{
		ShadowX: 1, ShadowY: 1,
		PrimaryColor: model.Color{A: 0}, // fully opaque, not a karaoke effect
	}
	f := computeFilter(g)
	if f.Flags&FilterNonzeroShadow != 0 {
		t.Fatal("expected shadow suppressed: no border and fill is opaque")
	}
}

func TestComputeFilterFillInBorderWhenAllTransparent(t *testing.T) {
	g := &model.GlyphInfo{
		BorderX: 1, BorderY: 1,
		PrimaryColor:   model.Color{A: 255},
		SecondaryColor: model.Color{A: 255},
		OutlineColor:   model.Color{A: 255},
	}
	f := computeFilter(g)
	if f.Flags&FilterFillInBorder == 0 {
		t.Fatal("expected fill-in-border when all colors are transparent")
	}
}

func singleBitmap(w, h int, v byte) blit.Bitmap {
	b := blit.Active().AllocBitmap(w, h)
	for i := range b.Buf {
		b.Buf[i] = v
	}
	return b
}

func TestCombineAliasesSinglePart(t *testing.T) {
	engine := blit.Active()
	run := &CombinedBitmapInfo{
		Parts: []GlyphBitmap{
			{Fill: singleBitmap(3, 3, 100), FillX: 5, FillY: 7, FillKey: outline.BitmapKey{}},
		},
	}
	cc := NewCompositeCache(engine)
	cc.Combine(run, engine)

	if run.FillBitmap.Width != 3 || run.FillBitmap.Height != 3 {
		t.Fatalf("got %dx%d, want 3x3", run.FillBitmap.Width, run.FillBitmap.Height)
	}
	if run.OriginX != 5 || run.OriginY != 7 {
		t.Fatalf("origin = (%d,%d), want (5,7)", run.OriginX, run.OriginY)
	}
}

func TestCombineUnionsMultipleParts(t *testing.T) {
	engine := blit.Active()
	run := &CombinedBitmapInfo{
		Parts: []GlyphBitmap{
			{Fill: singleBitmap(2, 2, 255), FillX: 0, FillY: 0},
			{Fill: singleBitmap(2, 2, 255), FillX: 4, FillY: 0},
		},
	}
	cc := NewCompositeCache(engine)
	cc.Combine(run, engine)

	if run.FillBitmap.Width < 6 {
		t.Fatalf("expected combined width to span both parts, got %d", run.FillBitmap.Width)
	}
	if run.FillBitmap.At(0, 0) != 255 || run.FillBitmap.At(4, 0) != 255 {
		t.Fatal("expected both parts composited into the combined raster")
	}
}

func TestCombineCachesByRunKey(t *testing.T) {
	engine := blit.Active()
	cc := NewCompositeCache(engine)

	newRun := func() *CombinedBitmapInfo {
		return &CombinedBitmapInfo{
			Parts: []GlyphBitmap{{Fill: singleBitmap(2, 2, 10), FillX: 1, FillY: 1}},
		}
	}
	r1, r2 := newRun(), newRun()
	cc.Combine(r1, engine)
	cc.Combine(r2, engine)

	if cc.cache.Len() != 1 {
		t.Fatalf("expected one cache entry for two structurally identical runs, got %d", cc.cache.Len())
	}
}

func TestFixOutlineSubtractsFillFromBorder(t *testing.T) {
	border := singleBitmap(2, 2, 200)
	fill := singleBitmap(2, 2, 150)
	fixOutline(&fill, &border, FilterFillInBorder)
	if border.At(0, 0) != 50 {
		t.Fatalf("border(0,0) = %d, want 50", border.At(0, 0))
	}
}

func TestShadowTranslatesByIntegerOffset(t *testing.T) {
	engine := blit.Active()
	run := &CombinedBitmapInfo{
		Filter: Filter{Flags: FilterNonzeroShadow, ShadowXQ: 2 * 64, ShadowYQ: 3 * 64},
	}
	fill := singleBitmap(2, 2, 80)
	shadow, dx, dy := buildShadow(engine, run, fill, blit.Bitmap{}, false)
	if dx != 2 || dy != 3 {
		t.Fatalf("shadow offset = (%d,%d), want (2,3)", dx, dy)
	}
	if shadow.Empty() {
		t.Fatal("expected non-empty shadow bitmap")
	}
}
