package pipeline

import (
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/shaping"
)

// shapeRuns implements §4.5 step 5 except for its base-direction part (no
// base direction is set here): invoke the shaper over contiguous shape-runs (glyphs sharing one style
// run and one font, excluding drawing-mode clusters, which carry no
// shapable text), and record each cluster's advance and glyph index.
func (p *Pipeline) shapeRuns(glyphs []model.GlyphInfo, rs *model.RenderState) error {
	i := 0
	for i < len(glyphs) {
		if glyphs[i].Drawing != nil {
			i++
			continue
		}
		j := i + 1
		for j < len(glyphs) && !glyphs[j].StartsNewRun && glyphs[j].Drawing == nil {
			j++
		}
		if err := p.shapeOneRun(glyphs[i:j]); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// shapeOneRun shapes a single maximal style run and writes the resulting
// cluster advances/glyph indices back onto the run's GlyphInfo slice.
func (p *Pipeline) shapeOneRun(run []model.GlyphInfo) error {
	if len(run) == 0 {
		return nil
	}
	head := &run[0]

	var handle uintptr
	if p.FontHandle != nil {
		h, ok := p.FontHandle(head.FontFamily, head.Bold, head.Italic)
		if !ok {
			return ErrNoFont
		}
		handle = h
	}

	text := make([]rune, len(run))
	for i := range run {
		text[i] = run[i].Symbol
	}

	shaper := p.Shaper
	if shaper == nil {
		shaper = shaping.FallbackShaper{}
	}

	clusters, err := shaper.Shape(shaping.Run{
		Text:       text,
		FontHandle: handle,
		FontSize:   head.FontSize,
	})
	if err != nil {
		return ErrShapingFailed
	}

	for _, c := range clusters {
		if c.RuneStart < 0 || c.RuneStart >= len(run) {
			continue
		}
		g := &run[c.RuneStart]
		g.FontHandle = handle
		g.GlyphIndex = c.GlyphIndex
		g.ClusterAdvance = c.Advance
		// Any additional runes the cluster consumed beyond its head
		// contribute no further advance of their own; they are linked so
		// downstream passes can walk the chain without losing them.
		prev := g
		for k := 1; k < c.RuneCount && c.RuneStart+k < len(run); k++ {
			prev.Next = &run[c.RuneStart+k]
			prev = prev.Next
		}
	}
	return nil
}
