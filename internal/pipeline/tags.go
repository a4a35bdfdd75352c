package pipeline

import (
	"strconv"
	"strings"

	"github.com/libsubs/ssarender/internal/model"
)

// objectReplacementChar is U+FFFC, used as the symbol for a drawing-mode
// cluster (§4.5 step 3: "interpreting drawing-mode runs as one 'object
// replacement' cluster").
const objectReplacementChar = '￼'

// parseTagsAndCharacters implements §4.5 step 3: walk the text, dispatch
// "{...}" runs to the tag interpreter, interpret drawing-mode runs as a
// single object-replacement cluster, else read the next rune. For each
// produced character a fresh GlyphInfo is snapshotted from the current
// render state and fix_glyph_scaling is applied.
func (p *Pipeline) parseTagsAndCharacters(text string, rs *model.RenderState, info *model.TextInfo) error {
	runes := []rune(text)
	drawingBuf := strings.Builder{}
	drawingActive := false
	karaokeClockMs := int64(0)

	flushDrawing := func() {
		if drawingBuf.Len() == 0 {
			return
		}
		g := info.GrowGlyphs()
		g.SnapshotFrom(rs)
		g.Symbol = objectReplacementChar
		s := drawingBuf.String()
		g.Drawing = &s
		fixGlyphScaling(g)
		drawingBuf.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '{':
			end := indexRune(runes[i+1:], '}')
			if end < 0 {
				// Unterminated override block: consume to end of text.
				end = len(runes) - i - 1
			}
			block := string(runes[i+1 : i+1+end])
			applyTagBlock(p, rs, block, &drawingActive, &karaokeClockMs)
			i += end + 1

		case drawingActive:
			drawingBuf.WriteRune(r)

		case r == '\\' && i+1 < len(runes) && runes[i+1] == 'N':
			g := info.GrowGlyphs()
			g.SnapshotFrom(rs)
			g.Symbol = '\n'
			g.LineBreak = 2
			fixGlyphScaling(g)
			i++

		default:
			flushDrawing()
			g := info.GrowGlyphs()
			g.SnapshotFrom(rs)
			g.Symbol = r
			if r == '\n' {
				g.LineBreak = 2
			}
			fixGlyphScaling(g)
		}
	}
	flushDrawing()
	return nil
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}

// fixGlyphScaling fills in scale and size defaults (§4.5 step 3): a zero
// ScaleX/ScaleY becomes 1 and a non-positive FontSize becomes the default
// style's size. It does not trade font size against scale; the font
// loader is asked for FontSize as it stands.
func fixGlyphScaling(g *model.GlyphInfo) {
	if g.ScaleX == 0 {
		g.ScaleX = 1
	}
	if g.ScaleY == 0 {
		g.ScaleY = 1
	}
	if g.FontSize <= 0 {
		g.FontSize = model.DefaultStyle().FontSize
	}
}

// applyTagBlock dispatches the semicolon-free backslash-command list in an
// override block to the render state.
func applyTagBlock(p *Pipeline, rs *model.RenderState, block string, drawingActive *bool, karaokeClockMs *int64) {
	for _, tag := range splitTags(block) {
		applyTag(p, rs, tag, drawingActive, karaokeClockMs)
	}
}

// splitTags splits an override block into individual "\tag..." commands.
func splitTags(block string) []string {
	var tags []string
	for {
		idx := strings.Index(block, "\\")
		if idx < 0 {
			break
		}
		block = block[idx+1:]
		next := strings.Index(block, "\\")
		if next < 0 {
			tags = append(tags, block)
			break
		}
		tags = append(tags, block[:next])
		block = block[next:]
	}
	return tags
}

func applyTag(p *Pipeline, rs *model.RenderState, tag string, drawingActive *bool, karaokeClockMs *int64) {
	name, arg := splitTagNameArg(tag)
	switch name {
	case "b":
		rs.Bold = arg != "0" && arg != ""
	case "i":
		rs.Italic = arg != "0" && arg != ""
	case "u":
		rs.Underline = arg != "0" && arg != ""
	case "s":
		rs.StrikeOut = arg != "0" && arg != ""
	case "fn":
		rs.FontFamily = arg
	case "fs":
		if v, err := strconv.ParseFloat(arg, 64); err == nil && v > 0 {
			rs.FontSize = v
		}
	case "fsp":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.Spacing = v
		}
	case "fscx":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.ScaleX = v / 100
		}
	case "fscy":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.ScaleY = v / 100
		}
	case "bord":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.BorderX, rs.BorderY = v, v
		}
	case "xbord":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.BorderX = v
		}
	case "ybord":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.BorderY = v
		}
	case "shad":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.ShadowX, rs.ShadowY = v, v
		}
	case "xshad":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.ShadowX = v
		}
	case "yshad":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.ShadowY = v
		}
	case "be":
		if v, err := strconv.Atoi(arg); err == nil {
			rs.BlurEdges = v
		}
	case "blur":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.BlurRadius = v
		}
	case "frx":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.FrX = v
		}
	case "fry":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.FrY = v
		}
	case "frz", "fr":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.FrZ = v
		}
	case "fax":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.FaX = v
		}
	case "fay":
		if v, err := strconv.ParseFloat(arg, 64); err == nil {
			rs.FaY = v
		}
	case "an":
		if v, err := strconv.Atoi(arg); err == nil {
			rs.Alignment = model.Alignment(v)
		}
	case "c", "1c":
		rs.PrimaryColor = parseAssColor(arg, rs.PrimaryColor)
	case "2c":
		rs.SecondaryColor = parseAssColor(arg, rs.SecondaryColor)
	case "3c":
		rs.OutlineColor = parseAssColor(arg, rs.OutlineColor)
	case "4c":
		rs.BackColor = parseAssColor(arg, rs.BackColor)
	case "alpha":
		a := parseAssAlpha(arg)
		rs.PrimaryColor.A, rs.SecondaryColor.A = a, a
		rs.OutlineColor.A, rs.BackColor.A = a, a
	case "1a":
		rs.PrimaryColor.A = parseAssAlpha(arg)
	case "2a":
		rs.SecondaryColor.A = parseAssAlpha(arg)
	case "3a":
		rs.OutlineColor.A = parseAssAlpha(arg)
	case "4a":
		rs.BackColor.A = parseAssAlpha(arg)
	case "pos":
		if x, y, ok := parsePair(arg); ok {
			rs.EvType = model.EventPositioned
			rs.Pos = model.Point{X: model.Pos26_6(x * 64), Y: model.Pos26_6(y * 64)}
			rs.Explicit = true
		}
	case "move":
		if x1, y1, x2, y2, t1, t2, ok := parseMove(arg); ok {
			rs.EvType = model.EventPositioned
			rs.MoveFrom = model.Point{X: model.Pos26_6(x1 * 64), Y: model.Pos26_6(y1 * 64)}
			rs.MoveTo = model.Point{X: model.Pos26_6(x2 * 64), Y: model.Pos26_6(y2 * 64)}
			rs.MoveStartMs, rs.MoveEndMs = t1, t2
			rs.HasMove = true
			rs.Explicit = true
		}
	case "org":
		if x, y, ok := parsePair(arg); ok {
			rs.Org = model.Point{X: model.Pos26_6(x * 64), Y: model.Pos26_6(y * 64)}
			rs.HasOrg = true
		}
	case "clip":
		applyClip(rs, arg, model.ClipNormal)
	case "iclip":
		applyClip(rs, arg, model.ClipInverse)
	case "k":
		startKaraoke(rs, karaokeClockMs, model.KaraokeK, arg)
	case "kf", "K":
		startKaraoke(rs, karaokeClockMs, model.KaraokeKF, arg)
	case "ko":
		startKaraoke(rs, karaokeClockMs, model.KaraokeKO, arg)
	case "kt":
		if v, err := strconv.ParseInt(arg, 10, 64); err == nil {
			*karaokeClockMs = v * 10
		}
	case "r":
		// \r resets to the named style (or the line's base style if arg is
		// empty); a full style lookup requires the track's style table,
		// which the tag interpreter doesn't have direct access to here, so
		// every \r resets to the line's base style (rs.Style), and only its
		// bold/italic/underline/strikeout attributes.
		rs.Bold, rs.Italic, rs.Underline, rs.StrikeOut = rs.Style.Bold, rs.Style.Italic, rs.Style.Underline, rs.Style.StrikeOut
	case "p":
		if v, err := strconv.Atoi(arg); err == nil {
			*drawingActive = v > 0
		}
	case "q":
		if v, err := strconv.Atoi(arg); err == nil {
			rs.WrapStyle = model.WrapStyle(v)
		}
	}
}

func splitTagNameArg(tag string) (name, arg string) {
	i := 0
	for i < len(tag) && (isAlpha(tag[i])) {
		i++
	}
	return tag[:i], tag[i:]
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func startKaraoke(rs *model.RenderState, clockMs *int64, mode model.KaraokeMode, arg string) {
	durCenti, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}
	rs.Karaoke = model.KaraokeState{Mode: mode, StartMs: *clockMs, DurationMs: durCenti * 10}
	*clockMs += durCenti * 10
}

func applyClip(rs *model.RenderState, arg string, mode model.ClipMode) {
	if x0, y0, x1, y1, ok := parseRect(arg); ok {
		rs.Clip = model.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
		rs.ClipMode = mode
		rs.HasClip = true
	}
}

func parsePair(arg string) (x, y float64, ok bool) {
	parts := strings.Split(strings.Trim(arg, "()"), ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	var e1, e2 error
	x, e1 = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, e2 = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	return x, y, e1 == nil && e2 == nil
}

func parseRect(arg string) (x0, y0, x1, y1 float64, ok bool) {
	parts := strings.Split(strings.Trim(arg, "()"), ",")
	if len(parts) < 4 {
		return 0, 0, 0, 0, false
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], true
}

func parseMove(arg string) (x1, y1, x2, y2 float64, t1, t2 int64, ok bool) {
	parts := strings.Split(strings.Trim(arg, "()"), ",")
	if len(parts) < 4 {
		return
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return
		}
		vals[i] = v
	}
	x1, y1, x2, y2 = vals[0], vals[1], vals[2], vals[3]
	if len(parts) >= 6 {
		a, e1 := strconv.ParseInt(strings.TrimSpace(parts[4]), 10, 64)
		b, e2 := strconv.ParseInt(strings.TrimSpace(parts[5]), 10, 64)
		if e1 == nil && e2 == nil {
			t1, t2 = a, b
		}
	}
	return x1, y1, x2, y2, t1, t2, true
}

// parseAssColor parses an ASS "&HBBGGRR&"-style override color, leaving
// the existing alpha channel of prev untouched (colors and alpha are
// separate override tags).
func parseAssColor(arg string, prev model.Color) model.Color {
	hex := strings.Trim(arg, "&H&")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return prev
	}
	return model.Color{
		R: byte(v & 0xFF),
		G: byte((v >> 8) & 0xFF),
		B: byte((v >> 16) & 0xFF),
		A: prev.A,
	}
}

func parseAssAlpha(arg string) byte {
	hex := strings.Trim(arg, "&H&")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0
	}
	return byte(v & 0xFF)
}

// markStyleRuns implements §4.5 step 4: mark glyph boundaries where any
// style dimension, face, effect, vertical flag, color, or transform
// parameter changes.
func markStyleRuns(glyphs []model.GlyphInfo) {
	for i := range glyphs {
		if i == 0 {
			glyphs[i].StartsNewRun = true
			continue
		}
		glyphs[i].StartsNewRun = !glyphs[i-1].SameStyleRun(&glyphs[i])
	}
}
