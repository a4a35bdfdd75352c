package pipeline

import (
	"time"

	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/style"
)

// computeDeviceOrigin implements §4.5 step 12: place the text block's
// top-left device-space origin according to the event's positioning mode.
// A \move interpolates linearly between its two endpoints over its timing
// window (or the event's own lifetime when the window is zero-length);
// scroll modes fall back to the same default placement a plain event would
// get, since this module doesn't track a separate scroll-speed/fade state
// beyond what the tag interpreter already resolves into rs.
func computeDeviceOrigin(rs model.RenderState, geom style.FrameGeometry, coords style.CoordParams, text model.TextInfo, event model.Event, now time.Duration) model.Point {
	switch rs.EvType {
	case model.EventPositioned:
		if rs.HasMove {
			return interpolateMove(rs, event, now)
		}
		return model.Point{
			X: model.Pos26_6(coords.X2ScrPos(float64(rs.Pos.X)/64) * 64),
			Y: rs.Pos.Y, // vertical script->screen mapping is 1:1 and margin-free for positioned events
		}
	default:
		return defaultOrigin(rs, geom, coords, text)
	}
}

func interpolateMove(rs model.RenderState, event model.Event, now time.Duration) model.Point {
	t1, t2 := rs.MoveStartMs, rs.MoveEndMs
	if t2 <= t1 {
		t1, t2 = 0, event.Duration.Milliseconds()
	}
	elapsed := now.Milliseconds() - t1
	var frac float64
	switch {
	case t2 <= t1:
		frac = 1
	case elapsed <= 0:
		frac = 0
	case elapsed >= t2-t1:
		frac = 1
	default:
		frac = float64(elapsed) / float64(t2-t1)
	}
	x := float64(rs.MoveFrom.X) + (float64(rs.MoveTo.X)-float64(rs.MoveFrom.X))*frac
	y := float64(rs.MoveFrom.Y) + (float64(rs.MoveTo.Y)-float64(rs.MoveFrom.Y))*frac
	return model.Point{X: model.Pos26_6(x), Y: model.Pos26_6(y)}
}

// defaultOrigin places text the way an unpositioned event is placed: x
// anchored per the alignment's horizontal part within the left and right
// margins; y anchored per the alignment's vertical part, with a bottom-
// aligned block ending the vertical margin above the bottom edge, a
// middle-aligned block centered vertically, and a top-aligned block
// starting the vertical margin below the top edge. No line_position
// adjustment is applied.
func defaultOrigin(rs model.RenderState, geom style.FrameGeometry, coords style.CoordParams, text model.TextInfo) model.Point {
	align := rs.Alignment
	width := float64(text.MaxTextWidth) / 64
	height := float64(text.Height) / 64

	var x float64
	switch align.HorizontalPart() {
	case 0: // left
		x = coords.X2Scr(float64(rs.Style.Margins.Left))
	case 1: // center
		x = coords.X2Scr((geom.PlayResX + float64(rs.Style.Margins.Left) - float64(rs.Style.Margins.Right) - width) / 2)
	case 2: // right
		x = coords.X2Scr(geom.PlayResX-float64(rs.Style.Margins.Right)) - width
	}

	var y float64
	switch align.VerticalPart() {
	case 0: // bottom
		y = coords.Y2Scr(geom.PlayResY-float64(rs.Style.Margins.Vertical)) - height
	case 1: // middle
		y = coords.Y2Scr((geom.PlayResY - height) / 2)
	case 2: // top
		y = coords.Y2Scr(float64(rs.Style.Margins.Vertical))
	}

	return model.Point{X: model.Pos26_6(x * 64), Y: model.Pos26_6(y * 64)}
}

// resolveClip implements §4.5 step 13: convert an explicit \clip/\iclip
// rectangle from script to screen space and intersect it with the screen
// bounds; absent an explicit clip, the frame rectangle itself is the clip
// (i.e. nothing is cut).
func resolveClip(rs model.RenderState, coords style.CoordParams, geom style.FrameGeometry) (model.Rect, model.ClipMode) {
	screen := model.Rect{X0: 0, Y0: 0, X1: geom.FrameWidth, Y1: geom.FrameHeight}
	if !rs.HasClip {
		return screen, model.ClipNormal
	}
	scr := model.Rect{
		X0: coords.X2Scr(rs.Clip.X0),
		Y0: coords.Y2Scr(rs.Clip.Y0),
		X1: coords.X2Scr(rs.Clip.X1),
		Y1: coords.Y2Scr(rs.Clip.Y1),
	}
	return scr.Intersect(screen), rs.ClipMode
}

// resolveRotationOrigin implements §4.5 step 14: an explicit \org wins,
// converted to screen space; otherwise the origin is the alignment-
// dependent base point of the text's own bounding box at its resolved
// device origin (e.g. bottom-center alignment rotates around the bottom
// middle of the rendered block).
func resolveRotationOrigin(rs model.RenderState, coords style.CoordParams, text model.TextInfo, deviceOrigin model.Point) model.Point {
	if rs.HasOrg {
		return model.Point{
			X: model.Pos26_6(coords.X2ScrPos(float64(rs.Org.X)/64) * 64),
			Y: rs.Org.Y,
		}
	}

	width := text.MaxTextWidth
	height := text.Height
	align := rs.Alignment

	x := deviceOrigin.X
	switch align.HorizontalPart() {
	case 1:
		x += width / 2
	case 2:
		x += width
	}

	y := deviceOrigin.Y
	switch align.VerticalPart() {
	case 0: // bottom
		y += height
	case 1: // middle
		y += height / 2
	}

	return model.Point{X: x, Y: y}
}
