// Package pipeline implements C4, the ordered per-event phases of §4.5:
// validate, initialize render state, parse tags/characters, split style
// runs, shape, retrieve outlines, preliminary layout, wrap, karaoke,
// reorder, align, compute device origin, resolve clip, and derive the
// rotation origin. Composition (§4.6, step 15) is a separate package
// (internal/compose) that consumes this package's output.
package pipeline

import (
	"errors"
	"strings"
	"time"

	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
	"github.com/libsubs/ssarender/internal/shaping"
	"github.com/libsubs/ssarender/internal/style"
)

// Event-level pipeline failures (§7): these cause the frame assembler to
// log a warning, release per-event state, and continue with the next
// event rather than aborting the frame.
var (
	ErrNoFont         = errors.New("pipeline: no font available for style")
	ErrShapingFailed  = errors.New("pipeline: shaping failed")
	ErrAllocationFail = errors.New("pipeline: allocation failed")
)

// Pipeline holds the external collaborators and configuration the
// per-event phases need: the shaper (§1 out-of-scope collaborator), the
// outline cache (C3), and geometry/override configuration (C7).
type Pipeline struct {
	Shaper   shaping.Shaper
	Outlines *outline.Cache

	Geometry style.FrameGeometry
	Coords   style.CoordParams

	OverrideStyle model.Style
	OverrideBits  style.OverrideBits

	// Hinting is the renderer-configured hint mode (§6 "hinting {none,
	// light, normal, native}"), passed through to the outline cache's
	// glyph key so distinct hint settings don't collide in the cache.
	Hinting uint8

	FontHandle func(family string, bold, italic bool) (uintptr, bool)
}

// Result is the output of the per-event pipeline: the laid-out glyph
// array plus the positioning/clip/rotation metadata composition needs.
type Result struct {
	Text TextResult

	EvType         model.EventTypeFlags
	DeviceOrigin   model.Point
	RotationOrigin model.Point
	Clip           model.Rect
	ClipMode       model.ClipMode

	RenderState model.RenderState
}

// TextResult bundles the glyph/line arrays so callers can reuse their
// backing storage across events (§3 Lifecycle).
type TextResult struct {
	model.TextInfo
}

// RenderEvent runs the full per-event pipeline (§4.5 steps 1-14) for a
// single event. now is the event-relative playback position, used by
// karaoke timing (step 9). styles is the track's style list, indexed by
// event.StyleIndex.
func (p *Pipeline) RenderEvent(event model.Event, styles []model.Style, now time.Duration, reuse *TextResult) (*Result, error) {
	if err := event.Validate(len(styles)); err != nil {
		return nil, err
	}
	if reuse == nil {
		reuse = &TextResult{}
	}
	reuse.Reset()

	baseStyle := styles[event.StyleIndex]
	rs := p.initRenderState(event, baseStyle)

	if err := p.parseTagsAndCharacters(event.Text, &rs, &reuse.TextInfo); err != nil {
		return nil, err
	}

	markStyleRuns(reuse.TextInfo.Glyphs)

	if err := p.shapeRuns(reuse.TextInfo.Glyphs, &rs); err != nil {
		return nil, err
	}

	if err := p.retrieveOutlines(reuse.TextInfo.Glyphs, &rs); err != nil {
		return nil, err
	}

	preliminaryLayout(reuse.TextInfo.Glyphs)

	availWidth := model.Pos26_6((p.Geometry.PlayResX - float64(rs.Style.Margins.Left) - float64(rs.Style.Margins.Right)) * 64)
	wrapLinesSmart(&reuse.TextInfo, rs.WrapStyle, availWidth)
	trimWhitespace(&reuse.TextInfo)
	measureText(&reuse.TextInfo)

	applyKaraoke(reuse.TextInfo.Glyphs, now)

	reorderAndRestep(&reuse.TextInfo)
	alignLines(&reuse.TextInfo)

	origin := computeDeviceOrigin(rs, p.Geometry, p.Coords, reuse.TextInfo, event, now)
	clip, clipMode := resolveClip(rs, p.Coords, p.Geometry)
	rotOrigin := resolveRotationOrigin(rs, p.Coords, reuse.TextInfo, origin)

	return &Result{
		Text:           *reuse,
		EvType:         rs.EvType,
		DeviceOrigin:   origin,
		RotationOrigin: rotOrigin,
		Clip:           clip,
		ClipMode:       clipMode,
		RenderState:    rs,
	}, nil
}

// ReleaseOutlineRefs drops the outline-cache references RenderEvent took
// out on text's glyphs (§4.5 step 6). Callers must invoke this exactly
// once per RenderEvent result, after composition (internal/compose) has
// finished reading each glyph's OutlineKey to build its bitmap, and
// before the same TextResult is reused (Reset) for the next event — this
// balances the IncRef retrieveOutlines took per glyph (§3 Invariants).
func (p *Pipeline) ReleaseOutlineRefs(text *TextResult) {
	if p.Outlines == nil {
		return
	}
	for i := range text.Glyphs {
		g := &text.Glyphs[i]
		if g.HasOutlineRef {
			p.Outlines.DecRef(g.OutlineKey)
			g.HasOutlineRef = false
		}
	}
}

// initRenderState implements §4.5 step 2: initialize from the script
// style, set Explicit from the text's own position markers (an event whose
// text contains \pos( or \move( is explicit), and apply selective
// overrides, which an explicit event suppresses except for the font
// scale. The tag interpreter also sets rs.Explicit when it applies those
// tags.
func (p *Pipeline) initRenderState(event model.Event, baseStyle model.Style) model.RenderState {
	explicit := strings.Contains(event.Text, `\pos(`) || strings.Contains(event.Text, `\move(`)
	merged := style.MergeOverrides(baseStyle, p.OverrideStyle, p.OverrideBits, explicit, p.Geometry.PlayResY)
	rs := model.FromStyle(merged)
	rs.Style.Margins = event.Margins
	rs.Explicit = explicit
	return rs
}
