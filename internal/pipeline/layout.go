package pipeline

import "github.com/libsubs/ssarender/internal/model"

// preliminaryLayout implements §4.5 step 7: place glyphs along a single
// running line with a pen in 6.6 fixed point, before wrapping splits the
// array into lines. Explicit '\n'/'\N' breaks (LineBreak==2) reset the pen
// to the left margin; soft wrap points are introduced later by
// wrapLinesSmart.
func preliminaryLayout(glyphs []model.GlyphInfo) {
	var pen model.Point
	for i := range glyphs {
		g := &glyphs[i]
		g.Pos = pen
		if g.Skip {
			continue
		}
		pen.X += g.ClusterAdvance.X
		if g.LineBreak == 2 {
			pen.X = 0
			pen.Y += g.ClusterAdvance.Y
		}
	}
}
