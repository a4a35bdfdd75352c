// Package style implements C7: script/screen coordinate mapping,
// selective style-override merging, and font-scale derivation.
package style

import "github.com/libsubs/ssarender/internal/model"

// FrameGeometry is the subset of renderer configuration §4.7's helpers
// need: the script's assumed canvas (PlayResX/Y) and the actual output
// frame.
type FrameGeometry struct {
	PlayResX, PlayResY float64
	FrameWidth, FrameHeight float64
	FitHeight               float64 // used instead of PlayResY when margins are active; 0 means unset
	FontSizeCoeff           float64
}

// FontScale is the derived font_scale / border_scale / blur_scale triple
// from §4.7 init_font_scale.
type FontScale struct {
	Font, Border, Blur float64
}

// InitFontScale derives font_scale, border_scale, blur_scale from
// orig_height/PlayResY (or FitHeight when margins are active), optionally
// multiplied by font_size_coeff (§4.7).
func InitFontScale(g FrameGeometry) FontScale {
	refHeight := g.PlayResY
	if g.FitHeight > 0 {
		refHeight = g.FitHeight
	}
	if refHeight <= 0 {
		refHeight = g.FrameHeight
	}
	if refHeight <= 0 {
		refHeight = 1
	}
	base := g.FrameHeight / refHeight
	coeff := g.FontSizeCoeff
	if coeff == 0 {
		coeff = 1
	}
	scaled := base * coeff
	return FontScale{Font: scaled, Border: base, Blur: base}
}

// ParFromDAR derives the pixel aspect ratio (§4.8 "update PAR (font_scale_x)
// from DAR/SAR or explicit par"): par == 0 means "derive it", any other
// value is used directly.
func ParFromDAR(explicitPar, displayAspect, storageAspect float64) float64 {
	if explicitPar != 0 {
		return explicitPar
	}
	if storageAspect == 0 {
		return 1
	}
	return displayAspect / storageAspect
}

// X2Scr and Y2Scr implement the script->screen axis mapping (§4.7): they
// differ by whether margins are added, left/right/centre anchoring, and
// whether font_scale_x applies.
type CoordParams struct {
	Scale      FontScale
	ParX       float64 // font_scale_x
	Margins    model.Margins
	UseMargins bool
}

// X2ScrPos maps a script-space x coordinate for an explicitly positioned
// event (\pos/\move): scaled by font_scale_x, margins never apply (§4.5
// step 12, scenario 3: "positioned events ignore use_margins").
func (p CoordParams) X2ScrPos(x float64) float64 {
	return x * p.ParX
}

// X2Scr maps a script-space x coordinate for default-positioned text,
// applying the left margin when UseMargins is set.
func (p CoordParams) X2Scr(x float64) float64 {
	v := x * p.ParX
	if p.UseMargins {
		v += float64(p.Margins.Left) * p.ParX
	}
	return v
}

// Y2Scr maps a script-space y coordinate, applying the top margin when
// UseMargins is set. Vertical scale is never font_scale_x (only x is
// affected by PAR).
func (p CoordParams) Y2Scr(y float64) float64 {
	v := y
	if p.UseMargins {
		v += float64(p.Margins.Vertical)
	}
	return v
}
