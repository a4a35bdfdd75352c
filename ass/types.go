// Package ass is the public API (§6): renderer construction/teardown,
// per-frame rendering, and the auxiliary glyph-info export. It orchestrates
// the internal packages — internal/pipeline (C4), internal/compose (C5),
// and this package's own frame assembly (C6) — into the renderer_init /
// render_frame / frame_ref contract §6 specifies.
//
// Script parsing, font discovery, and library init/teardown are out of
// scope (§1); callers hand this package an already-parsed Track and
// already-resolved font/shaper collaborators via Config.
package ass

import (
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/outline"
	"github.com/libsubs/ssarender/internal/shaping"
	"github.com/libsubs/ssarender/internal/style"
)

// Style, Event, Color, and Margins re-export the data model (§3) under the
// public package so callers never need to import an internal/ path.
type (
	Style   = model.Style
	Event   = model.Event
	Color   = model.Color
	Margins = model.Margins
)

// Re-exported style enums (§3 "Style").
const (
	AlignBottomLeft   = model.AlignBottomLeft
	AlignBottomCenter = model.AlignBottomCenter
	AlignBottomRight  = model.AlignBottomRight
	AlignMiddleLeft   = model.AlignMiddleLeft
	AlignMiddleCenter = model.AlignMiddleCenter
	AlignMiddleRight  = model.AlignMiddleRight
	AlignTopLeft      = model.AlignTopLeft
	AlignTopCenter    = model.AlignTopCenter
	AlignTopRight     = model.AlignTopRight

	BorderStyleOutline = model.BorderStyleOutline
	BorderStyleBox     = model.BorderStyleBox
)

// Track is the pre-parsed script this package's own scope begins from
// (§1: "script file parsing ... treated as external collaborators"):
// its assumed canvas and the styles/events a caller has already parsed.
type Track struct {
	PlayResX, PlayResY float64
	Styles             []Style
	Events             []Event
}

// FontLoader and Stroker are the narrow external-collaborator seams for
// font file loading and the stroker/rasterizer primitives (§1 out of
// scope); production callers wire real FreeType-backed implementations.
type FontLoader = outline.FontLoader
type Stroker = outline.Stroker

// Shaper is the external text-shaping collaborator (§1 out of scope).
type Shaper = shaping.Shaper

// HintingMode mirrors §6's `hinting` renderer configuration enum.
type HintingMode uint8

const (
	HintingNone HintingMode = iota
	HintingLight
	HintingNormal
	HintingNative
)

// ShaperKind mirrors §6's `shaper` renderer configuration enum.
type ShaperKind uint8

const (
	ShaperSimple ShaperKind = iota
	ShaperComplex
)

// OverrideBits is §6's `selective_style_overrides` bitmask.
type OverrideBits = style.OverrideBits

const (
	OverrideFullStyle         = style.OverrideFullStyle
	OverrideStyle             = style.OverrideStyle
	OverrideFontName          = style.OverrideFontName
	OverrideFontSizeFields    = style.OverrideFontSizeFields
	OverrideColors            = style.OverrideColors
	OverrideBorder            = style.OverrideBorder
	OverrideAttributes        = style.OverrideAttributes
	OverrideAlignment         = style.OverrideAlignment
	OverrideJustify           = style.OverrideJustify
	OverrideMargins           = style.OverrideMargins
	OverrideSelectiveFontScale = style.OverrideSelectiveFontScale
)
