package pipeline

import (
	"time"

	"github.com/libsubs/ssarender/internal/model"
)

// applyKaraoke implements §4.5 step 9: for each karaoke-affected glyph,
// interpolate between PrimaryColor (before the glyph's sweep window) and
// SecondaryColor (after it) based on now relative to that window. It does
// not track swept x positions; KF's leftmost-x bookkeeping happens during
// composition. It runs before BiDi reorder, on the glyph array's logical
// order.
func applyKaraoke(glyphs []model.GlyphInfo, now time.Duration) {
	nowMs := now.Milliseconds()

	for i := range glyphs {
		g := &glyphs[i]
		if g.Effect == model.EffectNone {
			continue
		}

		elapsed := nowMs - g.EffectStartMs
		var t float64
		switch {
		case g.EffectDurationMs <= 0:
			t = 1
		case elapsed <= 0:
			t = 0
		case elapsed >= g.EffectDurationMs:
			t = 1
		default:
			t = float64(elapsed) / float64(g.EffectDurationMs)
		}

		switch g.Effect {
		case model.EffectKaraokeOutline:
			// \ko only sweeps the outline color; the fill stays primary
			// throughout.
			g.OutlineColor = model.LerpColor(g.SecondaryColor, g.OutlineColor, t)
		default:
			// t=0 (before the sweep reaches this glyph) must read as
			// Primary; t=1 (after it passes) as Secondary.
			g.PrimaryColor = model.LerpColor(g.PrimaryColor, g.SecondaryColor, t)
		}
	}
}
