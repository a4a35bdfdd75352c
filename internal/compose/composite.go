package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/cache"
)

// CompositeValue is the constructed fill/border/shadow raster set for one
// run, keyed by CompositeCache's content digest (§4.1 "composite").
type CompositeValue struct {
	Fill, Border, Shadow blit.Bitmap
	OriginX, OriginY     int
	ShadowDX, ShadowDY   int
	Valid                bool
}

// CacheSize implements cache.Sizer: the three rasters' summed footprint
// (§4.1 "bitmap and composite [caches] bounded by summed byte footprint").
func (v CompositeValue) CacheSize() int64 {
	const metadataOverhead = 96
	return v.Fill.CacheSize() + v.Border.CacheSize() + v.Shadow.CacheSize() + metadataOverhead
}

// CompositeCache is the byte-size-bounded composite cache (§4.1), one of
// the renderer's three content-addressed caches (outline, bitmap,
// composite).
type CompositeCache struct {
	engine blit.Engine
	cache  *cache.Cache[string, CompositeValue]
}

// NewCompositeCache creates a composite cache using engine for raster
// allocation and blur/composite operations.
func NewCompositeCache(engine blit.Engine) *CompositeCache {
	if engine == nil {
		engine = blit.Active()
	}
	c := &CompositeCache{engine: engine}
	c.cache = cache.NewCache(func(string) (CompositeValue, bool) {
		// Never called directly: Combine always supplies a construct
		// closure via GetOrConstruct, since the key is a digest of the
		// run's actual bitmap list rather than the list itself.
		return CompositeValue{}, false
	})
	return c
}

func (cc *CompositeCache) Cut(maxBytes int64) { cc.cache.Cut(maxBytes) }

// IncRef / DecRef mirror the shared-ownership contract §4.1 places on every
// content-addressed cache: "callers must release references; eviction
// only retires unreferenced entries". Combine calls IncRef on a successful
// build/fetch; Release (called once a run's composite bitmaps have been
// copied out to the caller) calls DecRef.
func (cc *CompositeCache) IncRef(key string) { cc.cache.IncRef(key) }
func (cc *CompositeCache) DecRef(key string) { cc.cache.DecRef(key) }

// Release drops the reference Combine took out on run's composite cache
// entry. Callers call this once per successful Combine; run keeps its
// Fill/Border/Shadow bitmaps after the release, since the underlying cache
// entry itself is untouched — only its refcount drops, making it eligible
// for eviction at the next Cut if nothing else holds it.
func (cc *CompositeCache) Release(run *CombinedBitmapInfo) {
	if run.compositeKey == "" {
		return
	}
	cc.cache.DecRef(run.compositeKey)
	run.compositeKey = ""
}

// Combine implements §4.6.2: union the run's fill/border bitmaps, compose
// them into combined rasters, apply blur/BE, fix outline-fill overlap, and
// derive the shadow layer.
func (cc *CompositeCache) Combine(run *CombinedBitmapInfo, engine blit.Engine) {
	if engine == nil {
		engine = cc.engine
	}
	if len(run.Parts) == 0 {
		return
	}

	key := runKey(run)
	ref := cc.cache.GetOrConstruct(key, func(string) (CompositeValue, bool) {
		return constructComposite(run, engine), true
	})
	if !ref.Valid {
		return
	}
	cc.cache.IncRef(key)
	run.compositeKey = key
	run.FillBitmap = ref.Value.Fill
	run.BorderBitmap = ref.Value.Border
	run.ShadowBitmap = ref.Value.Shadow
	run.OriginX, run.OriginY = ref.Value.OriginX, ref.Value.OriginY
	run.ShadowDX, run.ShadowDY = ref.Value.ShadowDX, ref.Value.ShadowDY
}

// runKey builds the content digest §4.1 calls the composite cache's key:
// "the run's filter, BE, blur, bitmap list (sorted refs + positions)".
func runKey(run *CombinedBitmapInfo) string {
	parts := append([]GlyphBitmap(nil), run.Parts...)
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].FillX != parts[j].FillX {
			return parts[i].FillX < parts[j].FillX
		}
		return parts[i].FillY < parts[j].FillY
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%+v", run.Filter)
	for _, p := range parts {
		fmt.Fprintf(&b, "|%+v@%d,%d", p.FillKey, p.FillX, p.FillY)
		if p.HasBorder {
			fmt.Fprintf(&b, "+%+v@%d,%d", p.BorderKey, p.BorderX, p.BorderY)
		}
	}
	return b.String()
}

// constructComposite performs the actual composition work for a cache
// miss (§4.6.2 steps 1-5).
func constructComposite(run *CombinedBitmapInfo, engine blit.Engine) CompositeValue {
	fillBounds := unionBounds(run.Parts, false)
	borderBounds := unionBounds(run.Parts, true)

	bePad := engine.BEPadding(run.Filter.BE)
	fillBounds = fillBounds.pad(bePad)
	borderBounds = borderBounds.pad(bePad)

	fill := compositeGroup(engine, run.Parts, false, fillBounds)
	border := compositeGroup(engine, run.Parts, true, borderBounds)

	hasSeparateBorder := !border.Empty()

	// §4.6.2 step 3: blur applies to border unconditionally; to fill only
	// when there's no separate border, or under BorderStyle 3.
	variance := blurVariance(run.Filter.BlurLevel)
	if hasSeparateBorder {
		engine.SynthBlur(&border, variance, run.Filter.BE)
	}
	if !hasSeparateBorder || run.Filter.Flags&FilterBorderStyle3 != 0 {
		engine.SynthBlur(&fill, variance, run.Filter.BE)
	}

	fixOutline(&fill, &border, run.Filter.Flags)

	shadow, dx, dy := buildShadow(engine, run, fill, border, hasSeparateBorder)

	return CompositeValue{
		Fill: fill, Border: border, Shadow: shadow,
		OriginX: fillBounds.minX, OriginY: fillBounds.minY,
		ShadowDX: dx, ShadowDY: dy,
		Valid: true,
	}
}

type bounds struct {
	minX, minY, maxX, maxY int
	empty                  bool
}

func (b bounds) pad(p int) bounds {
	if b.empty {
		return b
	}
	b.minX -= p
	b.minY -= p
	b.maxX += p
	b.maxY += p
	return b
}

func (b bounds) width() int  { return b.maxX - b.minX }
func (b bounds) height() int { return b.maxY - b.minY }

func unionBounds(parts []GlyphBitmap, border bool) bounds {
	b := bounds{empty: true}
	for _, p := range parts {
		bmp, x, y := p.Fill, p.FillX, p.FillY
		if border {
			if !p.HasBorder {
				continue
			}
			bmp, x, y = p.Border, p.BorderX, p.BorderY
		}
		if bmp.Empty() {
			continue
		}
		x0, y0 := x, y
		x1, y1 := x+bmp.Width, y+bmp.Height
		if b.empty {
			b = bounds{minX: x0, minY: y0, maxX: x1, maxY: y1}
			continue
		}
		b.minX, b.minY = minInt(b.minX, x0), minInt(b.minY, y0)
		b.maxX, b.maxY = maxInt(b.maxX, x1), maxInt(b.maxY, y1)
	}
	return b
}

// compositeGroup implements §4.6.2 steps 1-2: when a run has exactly one
// bitmap and no BE padding, alias it instead of copying; otherwise
// allocate a combined raster and additively blit every part into it.
func compositeGroup(engine blit.Engine, parts []GlyphBitmap, border bool, b bounds) blit.Bitmap {
	if b.empty || b.width() <= 0 || b.height() <= 0 {
		return blit.Bitmap{}
	}

	single, singleX, singleY, count := blit.Bitmap{}, 0, 0, 0
	for _, p := range parts {
		bmp, x, y := p.Fill, p.FillX, p.FillY
		if border {
			if !p.HasBorder {
				continue
			}
			bmp, x, y = p.Border, p.BorderX, p.BorderY
		}
		if bmp.Empty() {
			continue
		}
		single, singleX, singleY = bmp, x, y
		count++
	}
	if count == 1 && singleX == b.minX && singleY == b.minY && single.Width == b.width() && single.Height == b.height() {
		aliased := single
		aliased.Left, aliased.Top = b.minX, b.minY
		return aliased
	}

	out := engine.AllocBitmap(b.width(), b.height())
	out.Left, out.Top = b.minX, b.minY
	for _, p := range parts {
		bmp, x, y := p.Fill, p.FillX, p.FillY
		if border {
			if !p.HasBorder {
				continue
			}
			bmp, x, y = p.Border, p.BorderX, p.BorderY
		}
		if bmp.Empty() {
			continue
		}
		engine.AddBitmaps(&out, bmp, x-b.minX, y-b.minY)
	}
	return out
}

// fixOutline implements §4.6.2 step 4: subtract fill from outline (or vice
// versa) according to the fill-in-border / fill-in-shadow flags, so the two
// layers don't double-draw where they overlap.
//
// FilterFillInBorder means the border layer is what ends up on screen where
// fill and border coincide (transparent fill, or BorderStyle 3): subtract
// fill from border. FilterFillInShadow means the opposite layer wins — the
// fill is what the shadow is derived from, and the border must not also
// carry the fill's coverage — so the subtraction runs the other way:
// subtract border from fill.
func fixOutline(fill, border *blit.Bitmap, flags FilterFlags) {
	if border.Empty() || fill.Empty() {
		return
	}
	switch {
	case flags&FilterFillInBorder != 0:
		for y := 0; y < border.Height; y++ {
			for x := 0; x < border.Width; x++ {
				fx, fy := x+border.Left-fill.Left, y+border.Top-fill.Top
				fv := int(fill.At(fx, fy))
				bv := int(border.At(x, y))
				sub := bv - fv
				if sub < 0 {
					sub = 0
				}
				border.Buf[y*border.Stride+x] = byte(sub)
			}
		}
	case flags&FilterFillInShadow != 0:
		for y := 0; y < fill.Height; y++ {
			for x := 0; x < fill.Width; x++ {
				bx, by := x+fill.Left-border.Left, y+fill.Top-border.Top
				bv := int(border.At(bx, by))
				fv := int(fill.At(x, y))
				sub := fv - bv
				if sub < 0 {
					sub = 0
				}
				fill.Buf[y*fill.Stride+x] = byte(sub)
			}
		}
	}
}

// buildShadow implements §4.6.2 step 5: copy the post-blur border layer
// when a separate border exists (otherwise the fill) and translate it by
// the whole-pixel part of the shadow offset; the sub-pixel remainder of the
// offset is dropped.
func buildShadow(engine blit.Engine, run *CombinedBitmapInfo, fill, border blit.Bitmap, hasSeparateBorder bool) (blit.Bitmap, int, int) {
	if run.Filter.Flags&FilterNonzeroShadow == 0 {
		return blit.Bitmap{}, 0, 0
	}

	src := border
	if !hasSeparateBorder {
		src = fill
	}
	if src.Empty() {
		return blit.Bitmap{}, 0, 0
	}

	shadow := engine.CopyBitmap(src)
	dx := int(run.Filter.ShadowXQ >> 6)
	dy := int(run.Filter.ShadowYQ >> 6)
	shadow.Left += dx
	shadow.Top += dy
	return shadow, dx, dy
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
