package compose

import (
	"math"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
	"github.com/libsubs/ssarender/internal/xform"
)

// GlyphBitmap is one entry in a CombinedBitmapInfo's growable list: a
// glyph's fill and (optional) border rasters plus their device positions
// (§3 "growable list of (bitmap_ref, position, border_bitmap_ref,
// border_position) pairs").
type GlyphBitmap struct {
	Fill             blit.Bitmap
	FillX, FillY     int
	FillKey          outline.BitmapKey
	// HasFill records whether getBitmapGlyph actually holds a bitmap-cache
	// reference for FillKey, independent of whether the fetched raster
	// happens to be zero-sized — releaseBitmapRefs must decref exactly the
	// keys that were incref'd, not merely the ones with non-empty pixels.
	HasFill          bool
	Border           blit.Bitmap
	BorderX, BorderY int
	BorderKey        outline.BitmapKey
	HasBorder        bool
}

// CombinedBitmapInfo is one per style-run within an event (§3).
type CombinedBitmapInfo struct {
	Primary, Secondary, Outline, Back model.Color
	Effect                            model.EffectType
	EffectStartMs, EffectDurationMs   int64
	Filter                            Filter

	// LeftmostX tracks the minimum device x over the run, used by KF
	// karaoke to know how far the sweep has reached.
	LeftmostX int

	Parts []GlyphBitmap

	OriginX, OriginY int

	FillBitmap, BorderBitmap, ShadowBitmap blit.Bitmap
	ShadowDX, ShadowDY                     int

	// compositeKey is the composite cache's content digest for this run,
	// set by CompositeCache.Combine while it holds a reference on the
	// entry; CompositeCache.Release clears it once the reference is
	// dropped.
	compositeKey string
}

// Combiner runs §4.6 (render_and_combine_glyphs) over a laid-out glyph
// array, producing one CombinedBitmapInfo per style run.
type Combiner struct {
	Outlines  *outline.Cache
	Bitmaps   *outline.BitmapCache
	Engine    blit.Engine
	Composite *CompositeCache

	BlurScale  float64
	FontScaleX float64
	LeftMargin int32

	cameraDistanceBase float64
}

// NewCombiner wires a Combiner to its caches and the active blit engine.
func NewCombiner(outlines *outline.Cache, bitmaps *outline.BitmapCache, engine blit.Engine) *Combiner {
	if engine == nil {
		engine = blit.Active()
	}
	c := &Combiner{Outlines: outlines, Bitmaps: bitmaps, Engine: engine, cameraDistanceBase: 20000}
	c.Composite = NewCompositeCache(engine)
	return c
}

// RenderAndCombine implements §4.6: pre-scale device_x by font_scale_x,
// split glyphs into style runs, build each run's per-glyph bitmaps, and
// combine each run through the composite cache.
func (c *Combiner) RenderAndCombine(glyphs []model.GlyphInfo, deviceOrigin model.Point) []CombinedBitmapInfo {
	var runs []CombinedBitmapInfo
	var cur *CombinedBitmapInfo

	baseX := float64(deviceOrigin.X) / 64
	baseY := float64(deviceOrigin.Y) / 64
	marginPx := float64(c.LeftMargin)

	for i := range glyphs {
		g := &glyphs[i]
		if g.Skip {
			continue
		}

		scaledX := marginPx + (float64(g.Pos.X)/64-marginPx)*c.scaleX()
		devX := baseX + scaledX
		devY := baseY + float64(g.Pos.Y)/64

		if g.StartsNewRun || cur == nil {
			runs = append(runs, newRunInfo(g))
			cur = &runs[len(runs)-1]
		}

		fillBmp, fillKey, fx, fy, hasFill, borderBmp, borderKey, bx, by, hasBorder := c.getBitmapGlyph(g, devX, devY)
		if fillBmp.Empty() && !hasBorder {
			if hasFill {
				c.Bitmaps.DecRef(fillKey)
			}
			continue
		}

		part := GlyphBitmap{Fill: fillBmp, FillX: fx, FillY: fy, FillKey: fillKey, HasFill: hasFill}
		if hasBorder {
			part.Border, part.BorderX, part.BorderY, part.BorderKey, part.HasBorder = borderBmp, bx, by, borderKey, true
		}
		cur.Parts = append(cur.Parts, part)

		if len(cur.Parts) == 1 || fx < cur.OriginX {
			cur.OriginX = fx
		}
		if len(cur.Parts) == 1 || fy < cur.OriginY {
			cur.OriginY = fy
		}
		if g.Effect == model.EffectKaraokeFill {
			if cur.LeftmostX == 0 || devX < float64(cur.LeftmostX) {
				cur.LeftmostX = int(math.Floor(devX))
			}
		}
	}

	for i := range runs {
		c.Composite.Combine(&runs[i], c.Engine)
		releaseBitmapRefs(c.Bitmaps, &runs[i])
		c.Composite.Release(&runs[i])
	}
	return runs
}

// releaseBitmapRefs drops the bitmap-cache references getBitmapGlyph took
// out on each part's fill/border entries (§3 Invariants), now that
// CompositeCache.Combine has finished reading them to build the run's
// combined rasters.
func releaseBitmapRefs(bitmaps *outline.BitmapCache, run *CombinedBitmapInfo) {
	if bitmaps == nil {
		return
	}
	for i := range run.Parts {
		p := &run.Parts[i]
		if p.HasFill {
			bitmaps.DecRef(p.FillKey)
		}
		if p.HasBorder {
			bitmaps.DecRef(p.BorderKey)
		}
	}
}

func (c *Combiner) scaleX() float64 {
	if c.FontScaleX == 0 {
		return 1
	}
	return c.FontScaleX
}

func newRunInfo(g *model.GlyphInfo) CombinedBitmapInfo {
	return CombinedBitmapInfo{
		Primary:          g.PrimaryColor,
		Secondary:        g.SecondaryColor,
		Outline:          g.OutlineColor,
		Back:             g.BackColor,
		Effect:           g.Effect,
		EffectStartMs:    g.EffectStartMs,
		EffectDurationMs: g.EffectDurationMs,
		Filter:           computeFilter(g),
	}
}

// getBitmapGlyph implements §4.6.1: build the glyph's 3D transform,
// quantize it, and fetch the fill bitmap; then derive the matching border
// bitmap (stroked outline, or an opaque OUTLINE_BOX for BorderStyle 3).
//
// Every successful bitmap-cache fetch is balanced with exactly one
// IncRef, reported back via hasFill/hasBorder so the caller's
// releaseBitmapRefs can later drop exactly those references (§3
// Invariants: "every ... BitmapHashKey ... referenced by a live ...
// CombinedBitmapInfo is retained ... via reference counts").
func (c *Combiner) getBitmapGlyph(g *model.GlyphInfo, devX, devY float64) (
	fill blit.Bitmap, fillKey outline.BitmapKey, fx, fy int, hasFill bool,
	border blit.Bitmap, borderKey outline.BitmapKey, bx, by int, hasBorder bool,
) {
	m := glyphTransform(g, devX, devY, c.BlurScale, c.cameraDistanceBase)

	fillOutline := c.Outlines.Get(g.OutlineKey)
	if !fillOutline.Valid {
		return blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false, blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false
	}

	var resid xform.Residual
	q, resid, ok := xform.Quantize(m, fillOutline.Value.Cbox, true, resid)
	if !ok {
		return blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false, blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false
	}
	fillKey = outline.BitmapKey{Outline: g.OutlineKey, Q: q}
	fillBmp, fillOK := c.Bitmaps.Get(fillKey)
	if fillOK {
		fill = fillBmp
		fx, fy = fillBmp.Left, fillBmp.Top
		c.Bitmaps.IncRef(fillKey)
		hasFill = true
	}

	if g.BorderX == 0 && g.BorderY == 0 {
		return fill, fillKey, fx, fy, hasFill, blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false
	}

	var bKey outline.Key
	if g.BorderStyle == model.BorderStyleBox {
		bKey = outline.BoxKey()
	} else {
		scaleOrd := borderScaleOrd(m)
		borderXQ := int32(g.BorderX * 64)
		borderYQ := int32(g.BorderY * 64)
		bKey = outline.BorderKey(&fillOutline.Value, borderXQ, borderYQ, scaleOrd)
	}

	// The border-stroke outline is a derived key never retained by any
	// glyph outside this call: bracket its reference entirely within this
	// function, releasing it once its Cbox has fed xform.Quantize.
	borderOutline := c.Outlines.Get(bKey)
	if !borderOutline.Valid {
		return fill, fillKey, fx, fy, hasFill, blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false
	}
	c.Outlines.IncRef(bKey)
	defer c.Outlines.DecRef(bKey)

	bq, _, bok := xform.Quantize(m, borderOutline.Value.Cbox, false, resid)
	if !bok {
		return fill, fillKey, fx, fy, hasFill, blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false
	}
	borderKey = outline.BitmapKey{Outline: bKey, Q: bq}
	bmp, bok2 := c.Bitmaps.Get(borderKey)
	if !bok2 || bmp.Empty() {
		// Computed border rounds to zero: reuse the fill bitmap reference
		// (§4.6.1 "If computed border rounds to zero, reuse the fill
		// bitmap reference for the border"). This is a second, independent
		// use of fillKey, so it takes its own IncRef to match — but only
		// when there is a live fill reference to duplicate in the first
		// place.
		if !hasFill {
			return fill, fillKey, fx, fy, hasFill, blit.Bitmap{}, outline.BitmapKey{}, 0, 0, false
		}
		c.Bitmaps.IncRef(fillKey)
		return fill, fillKey, fx, fy, hasFill, fill, fillKey, fx, fy, true
	}
	c.Bitmaps.IncRef(borderKey)
	return fill, fillKey, fx, fy, hasFill, bmp, borderKey, bmp.Left, bmp.Top, true
}

// glyphTransform implements §4.6.1's per-glyph transform: shear (fax/fay),
// 3D rotate by frx then fry then frz, a pinhole-camera perspective fold at
// distance 20000*blur_scale, then translate to the glyph's device
// position.
func glyphTransform(g *model.GlyphInfo, devX, devY, blurScale, cameraBase float64) xform.Matrix3 {
	if blurScale <= 0 {
		blurScale = 1
	}
	distance := cameraBase * blurScale

	shear := xform.Matrix3{
		{1, g.FaX, 0},
		{g.FaY, 1, 0},
		{0, 0, 1},
	}

	rx, ry, rz := radians(g.FrX), radians(g.FrY), radians(g.FrZ)
	r := rotate3(rx, ry, rz)

	// Fold the 3D rotation through a pinhole camera at `distance` into a
	// homogeneous 3x3: x/y rows keep the rotation's top-left block, the
	// perspective row divides by distance so points further from the
	// screen (more negative rotated z) shrink.
	persp := xform.Matrix3{
		{r[0][0], r[0][1], r[0][2]},
		{r[1][0], r[1][1], r[1][2]},
		{-r[2][0] / distance, -r[2][1] / distance, 1 - r[2][2]/distance},
	}

	translate := xform.Translate(devX, devY)
	return translate.Mul(persp.Mul(shear))
}

func rotate3(rx, ry, rz float64) [3][3]float64 {
	cx, sx := math.Cos(rx), math.Sin(rx)
	cy, sy := math.Cos(ry), math.Sin(ry)
	cz, sz := math.Cos(rz), math.Sin(rz)

	rxM := [3][3]float64{{1, 0, 0}, {0, cx, -sx}, {0, sx, cx}}
	ryM := [3][3]float64{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	rzM := [3][3]float64{{cz, -sz, 0}, {sz, cz, 0}, {0, 0, 1}}

	return mul3(mul3(rzM, ryM), rxM)
}

func mul3(a, b [3][3]float64) [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return r
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// borderScaleOrd picks the stroker's 2^scale_ord per §4.6.1: "scale_ord
// bits chosen via frexp of the derivative-of-projection formula ... so
// stroker precision matches POSITION_PRECISION under perspective". The
// projection's local derivative magnitude is approximated by the
// transform's top-left 2x2 block norm; frexp on that norm yields the
// binary exponent used as scale_ord.
func borderScaleOrd(m xform.Matrix3) int8 {
	norm := math.Abs(m[0][0]) + math.Abs(m[0][1]) + math.Abs(m[1][0]) + math.Abs(m[1][1])
	if norm <= 0 {
		return 0
	}
	_, exp := math.Frexp(norm)
	ord := exp - 1
	if ord > 4 {
		ord = 4
	}
	if ord < -4 {
		ord = -4
	}
	return int8(ord)
}
