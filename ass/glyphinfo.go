package ass

import (
	"time"

	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
)

// GlyphInfo is one entry of the auxiliary glyph_info export (§6): a
// glyph's device position, integer bbox, ascender/descender, and the raw
// segments/points of its first (fill) outline variant.
type GlyphInfo struct {
	Symbol rune

	X, Y int
	BBox model.Rect32

	Ascender, Descender int32

	Segments []outline.SegmentTag
	Points   []outline.Point2D
}

// GlyphInfoArray implements glyph_info (§6): "auxiliary output exposing
// per-glyph position, bbox, asc/desc, and first-outline raw segments/
// points". §9 notes this API "leaks event-image memory by design" —
// it runs the same per-event pipeline RenderFrame does but never produces
// an ImageList for the caller to Unref, so nothing here should be called
// from RenderFrame's own path; callers use it purely for inspection (e.g.
// an editor's glyph outline preview).
func (r *Renderer) GlyphInfoArray(track *Track, nowMs int64) ([]GlyphInfo, error) {
	if r == nil {
		return nil, ErrInit
	}
	now := time.Duration(nowMs) * time.Millisecond
	p := r.newPipeline(track)

	var out []GlyphInfo
	for _, ev := range track.Events {
		if !ev.Active(now) {
			continue
		}
		result, err := p.RenderEvent(ev, track.Styles, now-ev.Start, nil)
		if err != nil {
			r.logger.Warn("ass: glyph_info render failed, skipping", "read_order", ev.ReadOrder, "err", err)
			continue
		}
		for i := range result.Text.Glyphs {
			g := &result.Text.Glyphs[i]
			if g.Skip {
				continue
			}
			info := GlyphInfo{
				Symbol:    g.Symbol,
				X:         int(g.Pos.X) / 64,
				Y:         int(g.Pos.Y) / 64,
				BBox:      g.BBox,
				Ascender:  g.Ascender,
				Descender: g.Descender,
			}
			if ref := r.outlines.Get(g.OutlineKey); ref.Valid {
				info.Segments = ref.Value.Fill.Tags
				info.Points = ref.Value.Fill.Points
			}
			out = append(out, info)
		}
	}
	return out, nil
}
