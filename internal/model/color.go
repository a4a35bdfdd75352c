// Package model holds the renderer's data model: Event, Style, RenderState,
// GlyphInfo, and the handful of supporting value types shared across every
// pipeline stage (C2-C7). It depends on golang.org/x/image/math/fixed for
// sub-pixel geometry and, for GlyphInfo's outline and bitmap fields, on
// internal/outline and internal/blit; neither of those imports model, so
// the other stages can depend on it without import cycles.
package model

import "golang.org/x/image/math/fixed"

// Pos26_6 is the spec's "6.6 fixed point" (d6): a signed position in
// 1/64-pixel units. golang.org/x/image/math/fixed.Int26_6 is exactly this
// representation, already used by every glyph-geometry stack in the
// surrounding ecosystem (the go-text/typesetting glyph cache this module's
// design notes were cross-checked against uses the same type), so this
// module adopts it rather than hand-rolling a fixed-point type.
type Pos26_6 = fixed.Int26_6

// Point is a 2-D point in 6.6 fixed point.
type Point struct {
	X, Y Pos26_6
}

// Color is a color with a transparency channel, matching the spec's
// "RGBA packed color (big-endian RGBA where A is transparency)": A=0 is
// fully opaque, A=255 is fully transparent.
type Color struct {
	R, G, B, A uint8
}

// Transparent reports whether c is fully transparent.
func (c Color) Transparent() bool { return c.A == 255 }

// Opaque reports whether c is fully opaque.
func (c Color) Opaque() bool { return c.A == 0 }

// Pack returns the big-endian RGBA packed representation used by the
// public ASS_Image.Color field (§6).
func (c Color) Pack() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// WithAlpha returns a copy of c with the transparency channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// LerpColor linearly interpolates between a and b at t in [0,1], used by
// karaoke color sweeps (§4.5 step 9).
func LerpColor(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return Color{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}
