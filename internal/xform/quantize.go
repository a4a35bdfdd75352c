// Package xform implements C2: mapping a continuous 3x3 affine/perspective
// matrix onto a discrete, hashable cache key with bounded positional error,
// and the corresponding inverse reconstruction.
//
// The integer arithmetic idiom (round-half-up division, small per-axis
// quantization steps derived from a geometric bound) follows
// internal/dsp/quantize.go's Quantize/Dequantize pair in the teacher repo;
// this package generalizes that 1-D DCT-coefficient quantizer to the 2-D/3-D
// transform quantizer spec.md §4.2 describes at design level.
package xform

import "math"

// Constants from the GLOSSARY, expressed in pixels (POSITION_PRECISION is
// specified in 1/64-pixel units; PositionPrecisionPx is that value
// converted to pixels so the rest of the package can work in one unit).
const (
	// PositionPrecision is POSITION_PRECISION, in 1/64-pixel units.
	PositionPrecision = 8
	// PositionPrecisionPx is POSITION_PRECISION expressed in pixels.
	PositionPrecisionPx = float64(PositionPrecision) / 64

	// SubpixelOrder is SUBPIXEL_ORDER: sub-pixel bits kept in a quantized position.
	SubpixelOrder = 3
	subpixelScale = 1 << SubpixelOrder

	// MaxPerspScale bounds how far z0 may be pulled down relative to m[2][2]
	// before the quantization step blows up near the horizon.
	MaxPerspScale = 16

	// maxCoeff is the coefficient-magnitude ceiling past which a matrix is
	// rejected as ill-conditioned (§4.2, §5).
	maxCoeff = 1e6

	// minStep floors a quantization step so division never blows up for a
	// degenerate (zero-area) cbox.
	minStep = 1e-6
)

// Matrix3 is a continuous 3x3 homogeneous transform: row-major, applied to
// a homogeneous point (x, y, 1) as M*[x y 1]^T.
type Matrix3 [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Apply projects (x, y) through m, returning the homogeneous result
// (fx, fy, fz). The caller divides by fz to get the 2-D image unless fz<=0,
// which signals the point is behind the camera.
func (m Matrix3) Apply(x, y float64) (fx, fy, fz float64) {
	fx = m[0][0]*x + m[0][1]*y + m[0][2]
	fy = m[1][0]*x + m[1][1]*y + m[1][2]
	fz = m[2][0]*x + m[2][1]*y + m[2][2]
	return
}

// Mul returns a*b (a applied after b).
func (a Matrix3) Mul(b Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return r
}

// Translate returns a matrix that translates by (dx, dy).
func Translate(dx, dy float64) Matrix3 {
	m := Identity()
	m[0][2] = dx
	m[1][2] = dy
	return m
}

// Cbox is the bounding box of an outline, in (fractional) pixels (the model
// package stores it in 26.6 fixed point; callers convert at the boundary).
type Cbox struct {
	X0, Y0, X1, Y1 float64
}

// Center returns the cbox's midpoint.
func (c Cbox) Center() (x, y float64) {
	return (c.X0 + c.X1) / 2, (c.Y0 + c.Y1) / 2
}

// HalfWidth and HalfHeight in pixels.
func (c Cbox) HalfWidth() float64  { return (c.X1 - c.X0) / 2 }
func (c Cbox) HalfHeight() float64 { return (c.Y1 - c.Y0) / 2 }

// Pair is a quantized 2-component row of a matrix (matrix_x, matrix_y, or
// matrix_z in the spec's BitmapHashKey).
type Pair [2]int32

// Quantized is the discrete form of a Matrix3: an integer sub-pixel
// position, a SUBPIXEL_ORDER-bit offset, and the three quantized matrix
// rows. It is Comparable and hashable, suitable as (part of) a map key.
type Quantized struct {
	PosX, PosY int32
	SubX, SubY uint8
	MatrixX    Pair
	MatrixY    Pair
	MatrixZ    Pair
}

// Residual carries the sub-pixel offset computed by a "first" call so that
// subsequent calls within the same glyph cluster (fill, then border) can
// reuse it and hash to compatible keys, per §4.2 ("first=true returns a
// residual offset to be reused on subsequent calls").
type Residual struct {
	SubX, SubY uint8
	valid      bool
}

func hasExcessiveCoefficients(m Matrix3) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(m[i][j]) > maxCoeff {
				return true
			}
		}
	}
	return false
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

func roundStep(v, step float64) int32 {
	if step < minStep {
		step = minStep
	}
	return int32(math.Round(v / step))
}

// Quantize maps a continuous matrix, together with the outline's cbox, onto
// a Quantized key. first should be true for the first call for a given
// glyph cluster (typically the fill); the caller passes the previous
// Residual back in for subsequent calls (the border) so the sub-pixel
// offsets agree. ok is false when the matrix is rejected as ill-conditioned
// (m[2][2] <= 0 or any coefficient exceeds the 10^6 bound), in which case
// the caller must treat the cluster as empty and skip the bitmap cache
// insert (§5, §7 "Quantization rejection").
func Quantize(m Matrix3, box Cbox, first bool, prev Residual) (Quantized, Residual, bool) {
	if m[2][2] <= 0 || hasExcessiveCoefficients(m) {
		return Quantized{}, Residual{}, false
	}

	cx, cy := box.Center()
	ox, oy, oz := m.Apply(cx, cy)
	if oz <= 0 {
		return Quantized{}, Residual{}, false
	}

	outX, outY := ox/oz, oy/oz

	var subX, subY uint8
	var posX, posY int32
	if !first && prev.valid {
		// Reuse the previous call's sub-pixel offset so fill and border
		// hash-compatible keys within the same cluster.
		subX, subY = prev.SubX, prev.SubY
		posX = int32(math.Round(outX - float64(subX)/subpixelScale))
		posY = int32(math.Round(outY - float64(subY)/subpixelScale))
	} else {
		scaledX := int64(math.Round(outX * subpixelScale))
		scaledY := int64(math.Round(outY * subpixelScale))
		posX, subX = splitSubpixel(scaledX)
		posY, subY = splitSubpixel(scaledY)
	}

	dx := clampMin(box.HalfWidth()+1, 1)
	dy := clampMin(box.HalfHeight()+1, 1)

	z0 := minZOverCbox(m, box)
	z0 = math.Max(z0, m[2][2]/MaxPerspScale)

	qx := clampMin(PositionPrecisionPx*z0/dx, minStep)
	qy := clampMin(PositionPrecisionPx*z0/dy, minStep)

	w := PositionPrecisionPx * math.Max(
		math.Abs(m[0][0])+math.Abs(m[0][1]),
		math.Abs(m[1][0])+math.Abs(m[1][1]),
	)
	qz := clampMin(((qx+qy)/2)/clampMin(w, minStep), minStep)

	q := Quantized{
		PosX: posX, PosY: posY,
		SubX: subX, SubY: subY,
		MatrixX: Pair{roundStep(m[0][0], qx), roundStep(m[0][1], qx)},
		MatrixY: Pair{roundStep(m[1][0], qy), roundStep(m[1][1], qy)},
		MatrixZ: Pair{roundStep(m[2][0], qz), roundStep(m[2][1], qz)},
	}
	return q, Residual{SubX: subX, SubY: subY, valid: true}, true
}

func splitSubpixel(scaled int64) (pos int32, sub uint8) {
	p := scaled >> SubpixelOrder
	s := scaled - (p << SubpixelOrder)
	if s < 0 {
		s += subpixelScale
		p--
	}
	return int32(p), uint8(s)
}

func minZOverCbox(m Matrix3, box Cbox) float64 {
	corners := [4][2]float64{
		{box.X0, box.Y0}, {box.X1, box.Y0}, {box.X0, box.Y1}, {box.X1, box.Y1},
	}
	min := math.Inf(1)
	for _, c := range corners {
		_, _, z := m.Apply(c[0], c[1])
		if z < min {
			min = z
		}
	}
	return min
}

// Restore reconstructs an approximate continuous matrix from a Quantized
// key and the outline's cbox. It is the inverse used by the bitmap
// constructor on cache miss (§4.2, §4.4): restore, then apply to the
// outline's polylines.
func Restore(q Quantized, box Cbox) Matrix3 {
	dx := clampMin(box.HalfWidth()+1, 1)
	dy := clampMin(box.HalfHeight()+1, 1)

	// z0 cannot be recovered exactly from the key alone; a unit depth is
	// assumed for the restored matrix, matching the convention that
	// quantization normalizes perspective foreshortening into the stored
	// position and matrix_z row rather than a separate depth field.
	z0 := 1.0
	qx := clampMin(PositionPrecisionPx*z0/dx, minStep)
	qy := clampMin(PositionPrecisionPx*z0/dy, minStep)

	m00 := float64(q.MatrixX[0]) * qx
	m01 := float64(q.MatrixX[1]) * qx
	m10 := float64(q.MatrixY[0]) * qy
	m11 := float64(q.MatrixY[1]) * qy

	w := PositionPrecisionPx * math.Max(math.Abs(m00)+math.Abs(m01), math.Abs(m10)+math.Abs(m11))
	qz := clampMin(((qx+qy)/2)/clampMin(w, minStep), minStep)
	m20 := float64(q.MatrixZ[0]) * qz
	m21 := float64(q.MatrixZ[1]) * qz

	outX := float64(q.PosX) + float64(q.SubX)/subpixelScale
	outY := float64(q.PosY) + float64(q.SubY)/subpixelScale

	cx, cy := box.Center()
	// Solve for the translation terms so the cbox center maps to (outX, outY)
	// under perspective depth z0.
	m02 := outX*z0 - m00*cx - m01*cy
	m12 := outY*z0 - m10*cx - m11*cy
	m22 := z0 - m20*cx - m21*cy

	return Matrix3{
		{m00, m01, m02},
		{m10, m11, m12},
		{m20, m21, m22},
	}
}
