package model

import (
	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/outline"
)

// EffectType is the per-glyph transition effect derived from karaoke tags
// or \fad (§3 "GlyphInfo ... effect type/timing").
type EffectType int

const (
	EffectNone EffectType = iota
	EffectKaraoke
	EffectKaraokeFill
	EffectKaraokeOutline
)

// GlyphFlags are the boolean attributes a GlyphInfo carries alongside its
// style snapshot (§3: "flags (decoration, vertical-rotate)").
type GlyphFlags uint8

const (
	FlagDecoration    GlyphFlags = 1 << iota // underline/strikeout segment
	FlagVerticalRotate
)

// GlyphInfo is one entry per cluster: a full style/geometry snapshot plus
// shaping/layout bookkeeping (§3 "GlyphInfo"). Arrays of GlyphInfo are
// reused across events (§3 Lifecycle: "glyph array reset per event
// (reusable storage)"); Reset zeroes the fields the pipeline must not leak
// across events while keeping the backing array's capacity.
type GlyphInfo struct {
	Symbol rune

	FontHandle uintptr
	FaceIndex  int
	GlyphIndex uint32

	// Style snapshot (RenderState fields at the point this glyph was
	// produced by the tag interpreter, §4.5 step 3).
	PrimaryColor, SecondaryColor, OutlineColor, BackColor Color
	FontFamily                                            string
	FontSize                                               float64
	Bold, Italic, Underline, StrikeOut                     bool
	ScaleX, ScaleY                                          float64
	Spacing                                                 float64
	BorderX, BorderY                                        float64
	ShadowX, ShadowY                                        float64
	BlurEdges                                               int
	BlurRadius                                              float64
	FrX, FrY, FrZ                                           float64
	FaX, FaY                                                float64
	Alignment                                               Alignment
	Justify                                                 Justify
	BorderStyle                                             BorderStyle

	// Pos is the glyph's pen position in 6.6 fixed point, updated through
	// preliminary layout (§4.5 step 7), wrap (§4.5.1), and reorder/align
	// (§4.5 steps 10-11).
	Pos Point

	// ClusterAdvance is this cluster's advance vector, set by shaping
	// (§4.5 step 5) and adjusted for italic protrusion/spacing/shear
	// (§4.5 step 6).
	ClusterAdvance Point

	OutlineKey outline.Key
	// HasOutlineRef records whether retrieveOutlines incremented the
	// outline cache's refcount for OutlineKey, so the glyph array's
	// eventual release decrements exactly the entries it took a
	// reference on (§3 Invariants, shared ownership via reference counts).
	HasOutlineRef bool
	BBox          Rect32 // integer bbox after pre-transform scale

	Ascender, Descender int32 // per-face, 26.6 units

	Flags GlyphFlags

	Effect       EffectType
	EffectStartMs, EffectDurationMs int64

	// StartsNewRun marks the first glyph of a new style run (§4.5 step 4).
	StartsNewRun bool
	// Skip marks a glyph that contributes no visible output (e.g. trimmed
	// whitespace, §4.5.1 trim_whitespace).
	Skip bool
	// IsTrimmedWhitespace additionally records *why* Skip is set, since
	// measure_text's VSFilter-compatible rule (§4.5.1) treats trimmed
	// whitespace differently from an ordinarily-skipped glyph.
	IsTrimmedWhitespace bool

	// Next links to the next glyph in the same cluster; nil for
	// single-glyph clusters or the cluster's last glyph. The chain is
	// acyclic and each cluster head owns its successors' outline
	// references (§3 Invariants).
	Next *GlyphInfo

	// Drawing holds the raw \p drawing command text when this glyph is a
	// drawing-mode object-replacement cluster (U+FFFC), else nil.
	Drawing *string

	// LineBreak is nonzero when a line break follows this glyph; used by
	// §3's n_lines invariant ("1 + the number of glyphs with linebreak != 0
	// that fall within [0, length)").
	LineBreak int

	Bitmap       *blit.Bitmap
	BorderBitmap *blit.Bitmap
}

// Rect32 is an integer bounding box in 26.6 units.
type Rect32 struct {
	X0, Y0, X1, Y1 int32
}

// Reset clears the fields that must not leak to the next event while the
// GlyphInfo struct itself (and any slice it lives in) is reused, matching
// §3 Lifecycle's "glyph array reset per event (reusable storage)".
func (g *GlyphInfo) Reset() {
	*g = GlyphInfo{}
}

// SnapshotFrom copies the style-relevant fields of rs into g, implementing
// §4.5 step 3 ("For each produced character, snapshot the current render
// state into a fresh GlyphInfo").
func (g *GlyphInfo) SnapshotFrom(rs *RenderState) {
	g.PrimaryColor = rs.PrimaryColor
	g.SecondaryColor = rs.SecondaryColor
	g.OutlineColor = rs.OutlineColor
	g.BackColor = rs.BackColor
	g.FontFamily = rs.FontFamily
	g.FontSize = rs.FontSize
	g.Bold = rs.Bold
	g.Italic = rs.Italic
	g.Underline = rs.Underline
	g.StrikeOut = rs.StrikeOut
	g.ScaleX = rs.ScaleX
	g.ScaleY = rs.ScaleY
	g.Spacing = rs.Spacing
	g.BorderX = rs.BorderX
	g.BorderY = rs.BorderY
	g.ShadowX = rs.ShadowX
	g.ShadowY = rs.ShadowY
	g.BlurEdges = rs.BlurEdges
	g.BlurRadius = rs.BlurRadius
	g.FrX, g.FrY, g.FrZ = rs.FrX, rs.FrY, rs.FrZ
	g.FaX, g.FaY = rs.FaX, rs.FaY
	g.Alignment = rs.Alignment
	g.Justify = rs.Justify
	g.BorderStyle = rs.BorderStyle

	switch rs.Karaoke.Mode {
	case KaraokeK, KaraokeKT:
		g.Effect = EffectKaraoke
	case KaraokeKF:
		g.Effect = EffectKaraokeFill
	case KaraokeKO:
		g.Effect = EffectKaraokeOutline
	default:
		g.Effect = EffectNone
	}
	g.EffectStartMs = rs.Karaoke.StartMs
	g.EffectDurationMs = rs.Karaoke.DurationMs
}

// SameStyleRun reports whether a and b belong in the same style run: no
// style dimension, face, effect, vertical flag, color, or transform
// parameter differs between them (§4.5 step 4).
func (a *GlyphInfo) SameStyleRun(b *GlyphInfo) bool {
	return a.FontFamily == b.FontFamily &&
		a.FontSize == b.FontSize &&
		a.Bold == b.Bold && a.Italic == b.Italic &&
		a.Underline == b.Underline && a.StrikeOut == b.StrikeOut &&
		a.ScaleX == b.ScaleX && a.ScaleY == b.ScaleY &&
		a.Spacing == b.Spacing &&
		a.BorderX == b.BorderX && a.BorderY == b.BorderY &&
		a.ShadowX == b.ShadowX && a.ShadowY == b.ShadowY &&
		a.BlurEdges == b.BlurEdges && a.BlurRadius == b.BlurRadius &&
		a.FrX == b.FrX && a.FrY == b.FrY && a.FrZ == b.FrZ &&
		a.FaX == b.FaX && a.FaY == b.FaY &&
		a.PrimaryColor == b.PrimaryColor && a.SecondaryColor == b.SecondaryColor &&
		a.OutlineColor == b.OutlineColor && a.BackColor == b.BackColor &&
		a.Effect == b.Effect &&
		a.Flags&FlagVerticalRotate == b.Flags&FlagVerticalRotate
}
