package outline

// StrokerPrecision is STROKER_PRECISION from the GLOSSARY: the stroker's
// step size in outline units, fixed regardless of border width.
const StrokerPrecision = 16

// Stroker is the narrow external-collaborator seam for "the low-level
// outline/stroker/rasterizer primitives" (§1, explicitly out of scope).
// Production builds would delegate to FreeType's stroker; this module
// defines the interface plus a minimal fallback (FallbackStroker) that
// offsets the path's points away from the path's centroid, sufficient
// to produce a plausible, renderable border polyline and to exercise the
// "fails gracefully" contract below.
type Stroker interface {
	// Stroke returns the stroked contour for src scaled by 2^scaleOrd on
	// each axis and widened by (borderX, borderY) in 26.6 units, at
	// StrokerPrecision. ok is false on stroker failure (§4.3 "Fails
	// gracefully ... marks invalid").
	Stroke(src Path, scaleOrd int8, borderX, borderY int32) (out Path, ok bool)
}

func (c *Cache) constructBorder(key Key) (Value, bool) {
	if key.Source == nil || !key.Source.Valid {
		return Value{}, false
	}
	stroker := c.stroker
	if stroker == nil {
		stroker = FallbackStroker{}
	}
	border, ok := stroker.Stroke(key.Source.Fill, key.ScaleOrd, key.BorderXQ26_6, key.BorderYQ26_6)
	if !ok {
		return Value{}, false
	}
	v := Value{
		Fill:      key.Source.Fill,
		Border:    border,
		Advance:   key.Source.Advance,
		Ascender:  key.Source.Ascender,
		Descender: key.Source.Descender,
		Valid:     true,
	}
	v.Cbox = unionCbox(v.Fill, v.Border)
	return v, true
}

// FallbackStroker widens a path's points outward from its own centroid by
// (borderX, borderY), scaled by 2^scaleOrd when scaleOrd is non-negative; a
// negative scaleOrd leaves the points unscaled. It never fails for a
// non-empty path.
type FallbackStroker struct{}

func (FallbackStroker) Stroke(src Path, scaleOrd int8, borderX, borderY int32) (Path, bool) {
	if len(src.Points) == 0 {
		return Path{}, false
	}
	scale := int32(1)
	if scaleOrd >= 0 {
		scale = int32(1) << uint(scaleOrd)
	}

	var cx, cy int64
	for _, p := range src.Points {
		cx += int64(p.X)
		cy += int64(p.Y)
	}
	cx /= int64(len(src.Points))
	cy /= int64(len(src.Points))

	out := Path{Points: make([]Point2D, len(src.Points)), Tags: append([]SegmentTag(nil), src.Tags...)}
	for i, p := range src.Points {
		sx := int64(p.X)*int64(scale) + sign64(int64(p.X)-cx)*int64(borderX)
		sy := int64(p.Y)*int64(scale) + sign64(int64(p.Y)-cy)*int64(borderY)
		out.Points[i] = Point2D{X: int32(sx), Y: int32(sy)}
	}
	return out, true
}

func sign64(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
