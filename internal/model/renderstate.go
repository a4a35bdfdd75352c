package model

// KaraokeMode selects how karaoke timing affects a glyph's color (GLOSSARY
// "Karaoke modes").
type KaraokeMode int

const (
	KaraokeNone KaraokeMode = iota
	KaraokeK                // sweep fill colour
	KaraokeKF               // sweep with leftmost-x tracking
	KaraokeKO               // outline-only sweep
	KaraokeKT                // absolute time sweep
)

// ClipMode selects whether a clip rectangle/path keeps its interior visible
// (Normal) or cuts it out (Inverse, from \iclip).
type ClipMode int

const (
	ClipNormal ClipMode = iota
	ClipInverse
)

// Rect is an axis-aligned rectangle in script or screen pixels, depending
// on context.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Empty reports whether r has zero or negative area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Intersect returns the intersection of r and o.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		X0: max(r.X0, o.X0), Y0: max(r.Y0, o.Y0),
		X1: min(r.X1, o.X1), Y1: min(r.Y1, o.Y1),
	}
	return out
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Fade describes a \fad/\fade transition as a piecewise alpha ramp sampled
// at the event's current time; the pipeline (§4.5 step 2 "apply transition
// effects") resolves it into concrete per-glyph alpha before shaping.
type Fade struct {
	Enabled                    bool
	A1, A2, A3                 uint8
	T1, T2, T3, T4             int64 // milliseconds, relative to event start
}

// KaraokeState tracks the current sweep's mode and timing window, consumed
// by the external karaoke-color collaborator (§4.5 step 9) before reorder.
type KaraokeState struct {
	Mode          KaraokeMode
	StartMs       int64
	DurationMs    int64
}

// RenderState is the mutable working state of the per-event pipeline (§3
// "RenderState"). It is reset per event and snapshotted into each GlyphInfo
// as the tag interpreter walks the text.
type RenderState struct {
	Style Style // active style, possibly overridden by \r or inline tags

	PrimaryColor, SecondaryColor, OutlineColor, BackColor Color

	FontFamily string
	FontSize   float64
	Bold, Italic, Underline, StrikeOut bool

	ScaleX, ScaleY float64
	Spacing        float64

	BorderX, BorderY float64
	ShadowX, ShadowY float64

	BlurEdges int     // BE pass count
	BlurRadius float64

	FrX, FrY, FrZ float64 // rotation, degrees
	FaX, FaY      float64 // shear

	Alignment Alignment
	Justify   Justify
	WrapStyle WrapStyle

	EvType EventTypeFlags
	// Pos is the explicit \pos target, valid when EvType==EventPositioned.
	Pos Point
	// Move carries \move's start/end positions and timing window.
	MoveFrom, MoveTo Point
	MoveStartMs, MoveEndMs int64
	HasMove bool

	// Org is the explicit \org rotation origin; when unset the pipeline
	// derives one from the alignment-dependent glyph bbox base point
	// (§4.5 step 14).
	Org      Point
	HasOrg   bool

	Clip     Rect
	ClipMode ClipMode
	HasClip  bool

	Fade Fade

	Karaoke KaraokeState

	// Explicit mirrors §4.5 step 2: set when the event text carries a hard
	// position/move or an override that suppresses most selective-style
	// overrides (§4.7).
	Explicit bool

	BorderStyle BorderStyle
}

// FromStyle initializes a RenderState from a resolved Style, the starting
// point of §4.5 step 2 before tag overrides are applied.
func FromStyle(s Style) RenderState {
	return RenderState{
		Style:          s,
		PrimaryColor:   s.PrimaryColor,
		SecondaryColor: s.SecondaryColor,
		OutlineColor:   s.OutlineColor,
		BackColor:      s.BackColor,
		FontFamily:     s.FontFamily,
		FontSize:       s.FontSize,
		Bold:           s.Bold,
		Italic:         s.Italic,
		Underline:      s.Underline,
		StrikeOut:      s.StrikeOut,
		ScaleX:         s.ScaleX,
		ScaleY:         s.ScaleY,
		Spacing:        s.Spacing,
		BorderX:        s.OutlineW,
		BorderY:        s.OutlineW,
		ShadowX:        s.ShadowX,
		ShadowY:        s.ShadowY,
		Alignment:      s.Alignment,
		Justify:        s.Justify,
		BorderStyle:    s.BorderStyle,
	}
}
