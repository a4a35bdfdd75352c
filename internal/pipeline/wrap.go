package pipeline

import "github.com/libsubs/ssarender/internal/model"

// wrapLinesSmart implements §4.5.1: a greedy pass 1 that breaks lines at
// the last soft-break (space) opportunity once the running pen exceeds
// availWidth, followed by a balancing pass 2 for WrapSmart/WrapSmartWide
// that redistributes soft breaks within a forced-break group toward equal
// line widths. Pass 1 runs for every wrap style except WrapSmartNoBreak;
// pass 2 additionally only runs for WrapSmart/WrapSmartWide, so WrapNone
// still auto-wraps but never rebalances.
func wrapLinesSmart(info *model.TextInfo, wrapStyle model.WrapStyle, availWidth model.Pos26_6) {
	info.Lines = info.Lines[:0]
	glyphs := info.Glyphs
	doAutoWrap := wrapStyle != model.WrapSmartNoBreak

	lineStart := 0
	var lineWidth model.Pos26_6
	lastSpace := -1

	for i := range glyphs {
		g := &glyphs[i]
		if g.LineBreak == 2 {
			line := info.GrowLines()
			*line = model.Line{Start: lineStart, End: i + 1, ForcedBreak: true}
			lineStart = i + 1
			lineWidth = 0
			lastSpace = -1
			continue
		}
		if g.Skip {
			continue
		}
		if g.Symbol == ' ' {
			lastSpace = i
		}
		lineWidth += g.ClusterAdvance.X
		if doAutoWrap && availWidth > 0 && lineWidth > availWidth && i > lineStart {
			breakAt := lastSpace
			if breakAt < lineStart {
				breakAt = i - 1 // no soft break point available; hard-break before this glyph
			}
			glyphs[breakAt].LineBreak = 1
			line := info.GrowLines()
			*line = model.Line{Start: lineStart, End: breakAt + 1}
			lineStart = breakAt + 1
			lastSpace = -1
			lineWidth = 0
			for j := lineStart; j <= i; j++ {
				if !glyphs[j].Skip {
					lineWidth += glyphs[j].ClusterAdvance.X
				}
			}
		}
	}
	final := info.GrowLines()
	*final = model.Line{Start: lineStart, End: len(glyphs)}

	if wrapStyle == model.WrapSmart || wrapStyle == model.WrapSmartWide {
		balanceLines(info)
	}
	normalizeLineX(info)
}

// balanceLines implements §4.5.1 pass 2: within each maximal run of lines
// produced between two forced breaks, re-pick the soft-break positions so
// the lines come out closer to equal width, rather than leaving pass 1's
// first-fit breaks in place.
func balanceLines(info *model.TextInfo) {
	glyphs := info.Glyphs
	lines := info.Lines
	var out []model.Line
	i := 0
	for i < len(lines) {
		j := i
		for j < len(lines) && !lines[j].ForcedBreak {
			j++
		}
		if j < len(lines) {
			j++ // include the forced-break line itself in the group
		}
		group := lines[i:j]
		if len(group) <= 1 {
			out = append(out, group...)
			i = j
			continue
		}
		start := group[0].Start
		end := group[len(group)-1].End
		forced := group[len(group)-1].ForcedBreak
		out = append(out, rebalanceGroup(glyphs, start, end, len(group), forced)...)
		i = j
	}
	info.Lines = out
}

func rebalanceGroup(glyphs []model.GlyphInfo, start, end, n int, forced bool) []model.Line {
	widths := make([]model.Pos26_6, end-start+1)
	var candidates []int
	var cum model.Pos26_6
	for idx := start; idx < end; idx++ {
		widths[idx-start] = cum
		if glyphs[idx].LineBreak == 1 {
			glyphs[idx].LineBreak = 0
		}
		if !glyphs[idx].Skip {
			cum += glyphs[idx].ClusterAdvance.X
		}
		if glyphs[idx].Symbol == ' ' && !glyphs[idx].Skip {
			candidates = append(candidates, idx)
		}
	}
	widths[end-start] = cum
	total := cum

	if len(candidates) < n-1 || total <= 0 {
		return []model.Line{{Start: start, End: end, ForcedBreak: forced}}
	}

	target := total / model.Pos26_6(n)
	var breaks []int
	remaining := candidates
	for k := 1; k < n && len(remaining) > 0; k++ {
		want := target * model.Pos26_6(k)
		best, bi := remaining[0], 0
		bestDiff := absPos(widths[best-start] - want)
		for ci, c := range remaining {
			d := absPos(widths[c-start] - want)
			if d < bestDiff {
				bestDiff, best, bi = d, c, ci
			}
		}
		breaks = append(breaks, best)
		remaining = remaining[bi+1:]
	}

	var out []model.Line
	prev := start
	for _, b := range breaks {
		glyphs[b].LineBreak = 1
		out = append(out, model.Line{Start: prev, End: b + 1})
		prev = b + 1
	}
	out = append(out, model.Line{Start: prev, End: end, ForcedBreak: forced})
	return out
}

func absPos(v model.Pos26_6) model.Pos26_6 {
	if v < 0 {
		return -v
	}
	return v
}

// normalizeLineX resets each line's glyphs' pen X so a line starts at 0,
// undoing the continuously-advancing pen preliminaryLayout produced across
// what are now separate lines.
func normalizeLineX(info *model.TextInfo) {
	for li := range info.Lines {
		line := &info.Lines[li]
		if line.Start >= line.End {
			continue
		}
		offset := info.Glyphs[line.Start].Pos.X
		if offset == 0 {
			continue
		}
		for i := line.Start; i < line.End; i++ {
			info.Glyphs[i].Pos.X -= offset
		}
	}
}

// trimWhitespace implements §4.5.1's VSFilter-compatible trimmed-whitespace
// rule: leading and trailing run-of-spaces glyphs on each line are marked
// Skip+IsTrimmedWhitespace so they render nothing and measure_text excludes
// them from width, without removing them from the glyph array (preserving
// index stability for reorder/align).
func trimWhitespace(info *model.TextInfo) {
	glyphs := info.Glyphs
	for li := range info.Lines {
		line := &info.Lines[li]
		s, e := line.Start, line.End
		if e > s && glyphs[e-1].LineBreak != 0 && glyphs[e-1].Symbol == '\n' {
			e--
		}
		for i := s; i < e; i++ {
			if glyphs[i].Symbol != ' ' {
				break
			}
			glyphs[i].Skip = true
			glyphs[i].IsTrimmedWhitespace = true
		}
		for i := e - 1; i >= s; i-- {
			if glyphs[i].Symbol != ' ' {
				break
			}
			glyphs[i].Skip = true
			glyphs[i].IsTrimmedWhitespace = true
		}
	}
}

// measureText implements §4.5.1's measure_text: per-line width (excluding
// trimmed whitespace and skipped glyphs) and ascender/descender, plus the
// event-wide MaxTextWidth/Height summary TextInfo carries.
func measureText(info *model.TextInfo) {
	var maxWidth, totalHeight model.Pos26_6
	for li := range info.Lines {
		line := &info.Lines[li]
		var width, asc, desc model.Pos26_6
		for i := line.Start; i < line.End; i++ {
			g := &info.Glyphs[i]
			if g.Skip || g.IsTrimmedWhitespace {
				continue
			}
			width += g.ClusterAdvance.X
			if a := model.Pos26_6(g.Ascender); a > asc {
				asc = a
			}
			if d := model.Pos26_6(g.Descender); d > desc {
				desc = d
			}
		}
		line.Width = width
		line.Ascender = asc
		line.Descender = desc
		if width > maxWidth {
			maxWidth = width
		}
		totalHeight += asc + desc
	}
	info.MaxTextWidth = maxWidth
	info.Height = totalHeight
}
