package xform

import (
	"math"
	"testing"
)

func sampleCbox() Cbox {
	return Cbox{X0: 0, Y0: 0, X1: 40, Y1: 60}
}

func TestQuantizeRejectsNonPositiveDepth(t *testing.T) {
	m := Identity()
	m[2][2] = 0
	if _, _, ok := Quantize(m, sampleCbox(), true, Residual{}); ok {
		t.Fatal("expected rejection when m[2][2] <= 0")
	}
}

func TestQuantizeRejectsExcessiveCoefficients(t *testing.T) {
	m := Identity()
	m[0][0] = 2e6
	if _, _, ok := Quantize(m, sampleCbox(), true, Residual{}); ok {
		t.Fatal("expected rejection for coefficient magnitude > 1e6")
	}
}

// Property 1 (approximate): restore(quantize(M)) reconstructs a matrix
// whose image of the cbox center differs from M's by a small, bounded
// number of pixels.
func TestRoundTripCenterIsCloseToOriginal(t *testing.T) {
	box := sampleCbox()
	m := Translate(123.4, 56.7)
	q, _, ok := Quantize(m, box, true, Residual{})
	if !ok {
		t.Fatal("expected successful quantization")
	}
	restored := Restore(q, box)

	cx, cy := box.Center()
	ox, oy, oz := m.Apply(cx, cy)
	wantX, wantY := ox/oz, oy/oz

	rx, ry, rz := restored.Apply(cx, cy)
	gotX, gotY := rx/rz, ry/rz

	const tolerancePx = 2 * PositionPrecisionPx
	if math.Abs(gotX-wantX) > tolerancePx || math.Abs(gotY-wantY) > tolerancePx {
		t.Fatalf("restored center (%v,%v) too far from original (%v,%v)", gotX, gotY, wantX, wantY)
	}
}

// Property 2: matrices within one quantization step map to identical keys.
func TestNearbyMatricesQuantizeIdentically(t *testing.T) {
	box := sampleCbox()
	base := Translate(100, 100)
	nudged := Translate(100+1e-4, 100+1e-4)

	q1, _, ok1 := Quantize(base, box, true, Residual{})
	q2, _, ok2 := Quantize(nudged, box, true, Residual{})
	if !ok1 || !ok2 {
		t.Fatal("expected both quantizations to succeed")
	}
	if q1 != q2 {
		t.Fatalf("expected identical keys for matrices within one quantization step, got %+v vs %+v", q1, q2)
	}
}

func TestResidualReuseKeepsSubpixelOffsetsConsistent(t *testing.T) {
	box := sampleCbox()
	m := Translate(10.125, 20.375)

	fill, residual, ok := Quantize(m, box, true, Residual{})
	if !ok {
		t.Fatal("fill quantization failed")
	}
	border, _, ok := Quantize(m, box, false, residual)
	if !ok {
		t.Fatal("border quantization failed")
	}
	if fill.SubX != border.SubX || fill.SubY != border.SubY {
		t.Fatalf("expected border to reuse fill's sub-pixel offset: fill=(%d,%d) border=(%d,%d)",
			fill.SubX, fill.SubY, border.SubX, border.SubY)
	}
}

func FuzzQuantizeRestoreDoesNotPanic(f *testing.F) {
	f.Add(1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0)
	f.Fuzz(func(t *testing.T, m00, m01, m02, m10, m11, m12, m20, m21, m22 float64) {
		m := Matrix3{{m00, m01, m02}, {m10, m11, m12}, {m20, m21, m22}}
		box := sampleCbox()
		q, _, ok := Quantize(m, box, true, Residual{})
		if !ok {
			return
		}
		_ = Restore(q, box)
	})
}
