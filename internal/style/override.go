package style

import "github.com/libsubs/ssarender/internal/model"

// OverrideBits is the selective_style_overrides bitmask from §6.
type OverrideBits uint16

const (
	OverrideFullStyle OverrideBits = 1 << iota
	OverrideStyle
	OverrideFontName
	OverrideFontSizeFields
	OverrideColors
	OverrideBorder
	OverrideAttributes
	OverrideAlignment
	OverrideJustify
	OverrideMargins
	OverrideSelectiveFontScale
)

// PlayResYReference is the canvas §4.7 says user override values are
// specified against ("User values are specified against PlayResY=288 and
// scaled").
const PlayResYReference = 288

// MergeOverrides implements handle_selective_style_overrides: it produces
// a fresh merged style from (script style, user override style, bitmask).
// When explicit is true (the event is positioned or hard-overridden), only
// OverrideSelectiveFontScale still applies, per §4.7 ("When the event is
// explicit ..., most overrides are suppressed unless the selective-font-
// scale bit is set").
func MergeOverrides(script, user model.Style, bits OverrideBits, explicit bool, playResY float64) model.Style {
	out := script

	apply := func(b OverrideBits) bool {
		if bits&b == 0 {
			return false
		}
		if !explicit {
			return true
		}
		return b == OverrideSelectiveFontScale
	}

	scale := 1.0
	if playResY > 0 {
		scale = playResY / PlayResYReference
	}

	if apply(OverrideFullStyle) || apply(OverrideStyle) {
		out = user
	}
	if apply(OverrideFontName) {
		out.FontFamily = user.FontFamily
	}
	if apply(OverrideFontSizeFields) {
		out.FontSize = user.FontSize * scale
		out.Spacing = user.Spacing * scale
	}
	if apply(OverrideColors) {
		out.PrimaryColor = user.PrimaryColor
		out.SecondaryColor = user.SecondaryColor
		out.OutlineColor = user.OutlineColor
		out.BackColor = user.BackColor
	}
	if apply(OverrideBorder) {
		out.OutlineW = user.OutlineW * scale
		out.ShadowX = user.ShadowX * scale
		out.ShadowY = user.ShadowY * scale
		out.BorderStyle = user.BorderStyle
	}
	if apply(OverrideAttributes) {
		out.Bold, out.Italic = user.Bold, user.Italic
		out.Underline, out.StrikeOut = user.Underline, user.StrikeOut
	}
	if apply(OverrideAlignment) {
		out.Alignment = user.Alignment
	}
	if apply(OverrideJustify) {
		out.Justify = user.Justify
	}
	if apply(OverrideMargins) {
		out.Margins = user.Margins
	}
	if apply(OverrideSelectiveFontScale) {
		out.FontSize = user.FontSize * scale
	}

	return out
}
