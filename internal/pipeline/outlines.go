package pipeline

import (
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
)

// retrieveOutlines implements §4.5 step 6: fetch the outline cache entry
// for each cluster head, extend the bbox for italic protrusion, and add
// letter-spacing/shear contributions to the cluster's advance.
func (p *Pipeline) retrieveOutlines(glyphs []model.GlyphInfo, rs *model.RenderState) error {
	if p.Outlines == nil {
		return ErrAllocationFail
	}
	for i := range glyphs {
		g := &glyphs[i]

		var key outline.Key
		if g.Drawing != nil {
			key = outline.DrawingKey(*g.Drawing, scaleOrdFor(g.ScaleX, g.ScaleY))
		} else {
			sizeQ := int32(g.FontSize * 64)
			key = outline.GlyphKey(g.FontHandle, g.GlyphIndex, sizeQ, p.Hinting)
		}
		g.OutlineKey = key

		ref := p.Outlines.Get(key)
		if !ref.Valid {
			// A missing or failed glyph outline degrades that single
			// cluster to invisible rather than aborting the whole event
			// (§7 treats only shaping/allocation failures as event-level).
			g.Skip = true
			continue
		}
		// This glyph now holds a live reference to the outline (§3
		// Invariant: "every OutlineHashValue referenced by a live
		// GlyphInfo ... is retained ... via reference counts"). Balanced
		// by ReleaseOutlineRefs once composition is done reading it.
		p.Outlines.IncRef(key)
		g.HasOutlineRef = true

		box := ref.Value.Cbox
		g.BBox = model.Rect32{
			X0: int32(box.X0 * 64), Y0: int32(box.Y0 * 64),
			X1: int32(box.X1 * 64), Y1: int32(box.Y1 * 64),
		}
		g.Ascender = ref.Value.Ascender
		g.Descender = ref.Value.Descender

		if g.Italic {
			// Italic glyphs protrude past their upright advance; widen the
			// bbox on the trailing edge so downstream composition doesn't
			// clip the slant.
			protrusion := (g.BBox.Y1 - g.BBox.Y0) / 4
			g.BBox.X1 += protrusion
		}

		advX := g.ClusterAdvance.X
		advX += model.Pos26_6(g.Spacing * 64)
		if g.FaX != 0 {
			advX += model.Pos26_6(g.FaX * float64(g.BBox.Y1-g.BBox.Y0))
		}
		g.ClusterAdvance.X = advX
	}
	return nil
}

// scaleOrdFor picks a coarse quantized scale order for a drawing's cache
// key, the same discrete-order idea xform.Quantize uses for transforms:
// bucketing the continuous scale into a handful of cached variants instead
// of caching one raster per exact float pair.
func scaleOrdFor(scaleX, scaleY float64) int8 {
	avg := (scaleX + scaleY) / 2
	switch {
	case avg <= 0.5:
		return -1
	case avg >= 2:
		return 1
	default:
		return 0
	}
}
