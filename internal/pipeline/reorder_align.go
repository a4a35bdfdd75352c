package pipeline

import (
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/shaping"
)

// reorderAndRestep implements §4.5 step 10: re-lay each line's clusters in
// visual (BiDi) order, then re-step the pen per line using that line's
// ascender/descender, resetting the running Y accumulator line by line
// (there is no shear accumulator here to reset: shear is a per-glyph style
// field carried since step 3, not running pipeline state).
func reorderAndRestep(info *model.TextInfo) {
	glyphs := info.Glyphs
	var penY model.Pos26_6

	for li := range info.Lines {
		line := &info.Lines[li]
		if line.Start >= line.End {
			continue
		}
		reorderLine(glyphs, line.Start, line.End)

		penY += line.Ascender
		var penX model.Pos26_6
		for i := line.Start; i < line.End; i++ {
			g := &glyphs[i]
			g.Pos = model.Point{X: penX, Y: penY}
			if !g.Skip {
				penX += g.ClusterAdvance.X
			}
		}
		penY += line.Descender
	}
}

// reorderLine permutes glyphs[start:end] into visual order in place.
func reorderLine(glyphs []model.GlyphInfo, start, end int) {
	n := end - start
	if n <= 1 {
		return
	}
	runes := make([]rune, n)
	for i := 0; i < n; i++ {
		runes[i] = glyphs[start+i].Symbol
	}
	order := shaping.ReorderVisual(runes)

	reordered := make([]model.GlyphInfo, n)
	for i, srcIdx := range order {
		reordered[i] = glyphs[start+srcIdx]
	}
	copy(glyphs[start:end], reordered)
}

// alignLines implements §4.5.2: shift each line horizontally per its
// alignment's horizontal part, or, when a justify mode is set and the line
// has slack width, spread that slack across the line's inter-word gaps
// instead of bunching it at one edge.
func alignLines(info *model.TextInfo) {
	glyphs := info.Glyphs
	maxWidth := info.MaxTextWidth

	for li := range info.Lines {
		line := &info.Lines[li]
		if line.Start >= line.End {
			continue
		}
		align := glyphs[line.Start].Alignment
		justify := glyphs[line.Start].Justify
		extra := maxWidth - line.Width

		if justify != model.JustifyAuto && extra > 0 {
			justifyLine(glyphs, line.Start, line.End, extra)
			continue
		}

		var shift model.Pos26_6
		switch align.HorizontalPart() {
		case 1: // center
			shift = extra / 2
		case 2: // right
			shift = extra
		}
		if shift != 0 {
			for i := line.Start; i < line.End; i++ {
				glyphs[i].Pos.X += shift
			}
		}
	}
}

// justifyLine distributes extra width evenly across a line's inter-word
// gaps rather than as a single edge margin.
func justifyLine(glyphs []model.GlyphInfo, start, end int, extra model.Pos26_6) {
	var gaps []int
	for i := start; i < end; i++ {
		if glyphs[i].Symbol == ' ' && !glyphs[i].Skip {
			gaps = append(gaps, i)
		}
	}
	if len(gaps) == 0 {
		return
	}
	per := extra / model.Pos26_6(len(gaps))

	var shift model.Pos26_6
	gapIdx := 0
	for i := start; i < end; i++ {
		glyphs[i].Pos.X += shift
		if gapIdx < len(gaps) && gaps[gapIdx] == i {
			shift += per
			gapIdx++
		}
	}
}
