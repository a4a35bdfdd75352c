package model

// Alignment is the numpad-style (1-9) ASS alignment value: 1-3 bottom,
// 4-6 middle, 7-9 top; within each row, 1/4/7 left, 2/5/8 center, 3/6/9
// right.
type Alignment int

const (
	AlignBottomLeft   Alignment = 1
	AlignBottomCenter Alignment = 2
	AlignBottomRight  Alignment = 3
	AlignMiddleLeft   Alignment = 4
	AlignMiddleCenter Alignment = 5
	AlignMiddleRight  Alignment = 6
	AlignTopLeft      Alignment = 7
	AlignTopCenter    Alignment = 8
	AlignTopRight     Alignment = 9
)

// HorizontalPart returns 0=left, 1=center, 2=right.
func (a Alignment) HorizontalPart() int {
	if a <= 0 {
		return 1
	}
	return (int(a) - 1) % 3
}

// VerticalPart returns 0=bottom, 1=middle, 2=top.
func (a Alignment) VerticalPart() int {
	if a <= 0 {
		return 0
	}
	return (int(a) - 1) / 3
}

// Justify controls how a line's glyphs spread across the available width
// independent of the block's horizontal alignment.
type Justify int

const (
	JustifyAuto Justify = iota
	JustifyLeft
	JustifyCenter
	JustifyRight
)

// BorderStyle selects outline-and-shadow (1) or opaque-box (3) rendering.
type BorderStyle int

const (
	BorderStyleOutline BorderStyle = 1
	BorderStyleBox     BorderStyle = 3
)

// WrapStyle controls line-break distribution (§4.5.1).
type WrapStyle int

const (
	WrapSmart        WrapStyle = 0 // balance after greedy wrap (the "implement 0 and 3 correctly" quirk, preserved)
	WrapNone         WrapStyle = 1 // greedy end-of-line wrap; no balancing
	WrapSmartNoBreak WrapStyle = 2 // no auto-wrap at all; still no balancing
	WrapSmartWide    WrapStyle = 3 // same balancing branch as WrapSmart, per spec
)

// Margins are in script pixels; V applies to whichever vertical edge is
// relevant for the event's alignment.
type Margins struct {
	Left, Right, Vertical int32
}

// Style is a named bundle of text appearance attributes, as read from the
// script (§3 "Style").
type Style struct {
	Name string

	FontFamily string
	FontSize   float64

	ScaleX, ScaleY float64 // percent/100
	Spacing        float64 // extra tracking, script pixels

	PrimaryColor   Color
	SecondaryColor Color
	OutlineColor   Color
	BackColor      Color

	Bold, Italic, Underline, StrikeOut bool

	BorderStyle  BorderStyle
	OutlineW     float64
	ShadowX      float64
	ShadowY      float64
	Angle        float64 // frz, degrees
	Alignment    Alignment
	Justify      Justify
	Margins      Margins

	ScaledBorderAndShadow bool
}

// DefaultStyle returns a Style with libass-compatible defaults (used when an
// event references an out-of-range style index and a fallback is needed;
// §7 treats that as an event-level failure instead, but the default is
// still useful for tests and for the renderer's built-in "Default" style).
func DefaultStyle() Style {
	return Style{
		Name:       "Default",
		FontFamily: "sans-serif",
		FontSize:   18,
		ScaleX:     1, ScaleY: 1,
		PrimaryColor: Color{R: 255, G: 255, B: 255, A: 0},
		OutlineColor: Color{A: 0},
		BackColor:    Color{A: 128},
		BorderStyle:  BorderStyleOutline,
		OutlineW:     2,
		Alignment:    AlignBottomCenter,
	}
}
