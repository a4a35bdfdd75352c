package outline

import (
	"testing"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/xform"
)

func TestBitmapCacheRasterizesBoxOutline(t *testing.T) {
	outlines := NewCache(nil, nil)
	bitmaps := NewBitmapCache(outlines, blit.Active())

	box := unionCboxPixels(outlines.Get(BoxKey()).Value)
	m := xform.Translate(10, 10)
	q, _, ok := xform.Quantize(m, box, true, xform.Residual{})
	if !ok {
		t.Fatal("expected quantization to succeed for an identity-scale translation")
	}

	bmp, ok := bitmaps.Get(BitmapKey{Outline: BoxKey(), Q: q})
	if !ok {
		t.Fatal("expected bitmap construction to succeed for a valid outline")
	}
	if bmp.Empty() {
		t.Fatal("expected a non-empty raster for the unit box scaled up by translation quantization")
	}
}

func TestBitmapCacheReturnsEquivalentRasterOnRepeatedGet(t *testing.T) {
	outlines := NewCache(nil, nil)
	bitmaps := NewBitmapCache(outlines, blit.Active())
	box := unionCboxPixels(outlines.Get(BoxKey()).Value)
	q, _, _ := xform.Quantize(xform.Translate(5, 5), box, true, xform.Residual{})
	key := BitmapKey{Outline: BoxKey(), Q: q}

	b1, ok1 := bitmaps.Get(key)
	b2, ok2 := bitmaps.Get(key)
	if !ok1 || !ok2 {
		t.Fatal("expected both lookups to succeed")
	}
	if b1.Width != b2.Width || b1.Height != b2.Height {
		t.Fatal("expected equivalent raster content on repeated Get (Property 3)")
	}
}

func unionCboxPixels(v Value) xform.Cbox { return v.Cbox }
