// Package compose implements C5: unioning per-run sub-bitmaps into
// fill/border/shadow layers, applying blur/BE/shadow offset, and fixing
// outline-fill overlap (§4.6).
//
// The composite cache follows the same get-or-construct shape as
// internal/cache's other caches, generalized (via Cache.GetOrConstruct) to
// accept construction inputs that aren't reconstructible from the key
// alone — the key here is a content digest of a run's filter and bitmap
// list, grounded on internal/lossless/colorcache.go's content-addressed
// cache idiom the same way internal/outline's caches are.
package compose

import (
	"math"

	"github.com/libsubs/ssarender/internal/model"
)

// FilterFlags are the per-run composition decisions of §4.6's
// render_and_combine_glyphs bullet list.
type FilterFlags uint8

const (
	FilterNonzeroBorder FilterFlags = 1 << iota
	FilterNonzeroShadow
	FilterFillInShadow
	FilterFillInBorder
	FilterBorderStyle3
)

// BlurPrecision and related constants, from the GLOSSARY.
const (
	blurPrecision  = 1.0 / 256
	shadowQuantMin = 1
)

// Filter is the spec's "filter descriptor": flags, BE pass count, and the
// quantized blur/shadow parameters that feed the composite cache key
// (§3 "CombinedBitmapInfo ... filter descriptor").
type Filter struct {
	Flags FilterFlags
	BE    int

	// BlurLevel is the quantized blur step n from §4.6.3.
	BlurLevel int32
	// ShadowOrd is the quantized shadow-offset order from §4.6.3: the
	// offset is snapped to a multiple of 2^ShadowOrd.
	ShadowOrd int32

	// ShadowXQ, ShadowYQ are the glyph's requested shadow offset, in 26.6
	// units, quantized to a multiple of 2^ShadowOrd.
	ShadowXQ, ShadowYQ int32
}

// blurScaleFactor implements §4.6.3's "scale = 64 * BLUR_PRECISION /
// POSITION_PRECISION" (POSITION_PRECISION is in 1/64-pixel units, 8).
func blurScaleFactor() float64 {
	const positionPrecision = 8
	return 64 * blurPrecision / positionPrecision
}

// quantizeBlur implements §4.6.3: "n = log(1 + r*scale) / BLUR_PRECISION".
func quantizeBlur(radius float64) int32 {
	if radius <= 0 {
		return 0
	}
	n := math.Log(1+radius*blurScaleFactor()) / blurPrecision
	return int32(math.Round(n))
}

// blurVariance inverts quantizeBlur to recover an approximate blur radius,
// then squares it into the "variance" blit.Engine.SynthBlur expects.
func blurVariance(level int32) float64 {
	if level <= 0 {
		return 0
	}
	r := (math.Exp(float64(level)*blurPrecision) - 1) / blurScaleFactor()
	return r * r
}

// quantizeShadowOrd implements §4.6.3: "ord = floor(log2((1 + r*scale) *
// POSITION_PRECISION / 2))", guaranteeing the shadow position's
// quantization error is bounded by BLUR_PRECISION of full intensity.
func quantizeShadowOrd(radius float64) int32 {
	const positionPrecision = 8
	v := (1 + radius*blurScaleFactor()) * positionPrecision / 2
	if v < shadowQuantMin {
		return 0
	}
	ord := int32(math.Floor(math.Log2(v)))
	if ord < 0 {
		ord = 0
	}
	return ord
}

// quantizeOffset snaps off26_6 (a 26.6 fixed-point offset) to the nearest
// multiple of 2^ord.
func quantizeOffset(off26_6 int32, ord int32) int32 {
	step := int32(1) << uint(ord)
	if step <= 1 {
		return off26_6
	}
	half := step / 2
	if off26_6 >= 0 {
		return (off26_6 + half) / step * step
	}
	return -((-off26_6 + half) / step * step)
}

// computeFilter derives the filter descriptor for the run g starts or
// continues, per §4.6's bulleted flag rules.
func computeFilter(g *model.GlyphInfo) Filter {
	var f Filter
	f.BE = g.BlurEdges

	if g.BorderX != 0 || g.BorderY != 0 {
		f.Flags |= FilterNonzeroBorder
	}
	if g.ShadowX != 0 || g.ShadowY != 0 {
		f.Flags |= FilterNonzeroShadow
	}

	fillNotOpaque := g.PrimaryColor.A != 0
	fillInShadow := f.Flags&FilterNonzeroShadow != 0 &&
		(g.Effect == model.EffectKaraokeFill || g.Effect == model.EffectKaraokeOutline ||
			fillNotOpaque || g.BorderStyle == model.BorderStyleBox)
	if fillInShadow {
		f.Flags |= FilterFillInShadow
	}
	// Shadow suppressed when both border and fill-in-shadow are absent.
	if f.Flags&FilterNonzeroBorder == 0 && f.Flags&FilterFillInShadow == 0 {
		f.Flags &^= FilterNonzeroShadow
	}

	allTransparent := g.PrimaryColor.Transparent() && g.SecondaryColor.Transparent() && g.OutlineColor.Transparent()
	fillInBorder := f.Flags&FilterNonzeroBorder != 0 && (allTransparent || g.BorderStyle == model.BorderStyleBox)
	if fillInBorder {
		f.Flags |= FilterFillInBorder
	}
	if g.BorderStyle == model.BorderStyleBox {
		f.Flags |= FilterBorderStyle3
	}

	f.BlurLevel = quantizeBlur(g.BlurRadius)
	f.ShadowOrd = quantizeShadowOrd(g.BlurRadius)
	f.ShadowXQ = quantizeOffset(int32(g.ShadowX*64), f.ShadowOrd)
	f.ShadowYQ = quantizeOffset(int32(g.ShadowY*64), f.ShadowOrd)
	return f
}

// sameRunFilter reports whether two glyphs belong in the same composited
// run as far as §4.6's filter is concerned (colors, effect, and filter
// inputs all match). RenderAndCombine does not call it: it opens a new
// CombinedBitmapInfo only where model.GlyphInfo.StartsNewRun is set.
func sameRunFilter(a, b *model.GlyphInfo) bool {
	fa, fb := computeFilter(a), computeFilter(b)
	return fa == fb &&
		a.PrimaryColor == b.PrimaryColor && a.SecondaryColor == b.SecondaryColor &&
		a.OutlineColor == b.OutlineColor && a.BackColor == b.BackColor &&
		a.Effect == b.Effect
}
