// Package blit models the renderer's "blit engine": a capability set
// {copy_bitmap, add_bitmaps, synth_blur, alloc_bitmap, tile_order,
// be_padding} selected once at startup from CPU capabilities and treated
// as immutable afterward (§9 "Global state", "Dynamic dispatch").
//
// The selection mechanism is adapted from internal/dsp/cpuid_amd64.go +
// dsp.go: the teacher probes CPUID once in init() and publishes the result
// through package-level function variables; this package keeps that
// "probe once, dispatch through an immutable table" shape but expresses
// the table as a Go interface with named implementations, since the three
// engines here (Scalar, SSE2, AVX2) differ only in which doc comment they
// carry, not in real SIMD codegen — the spec tracks this as a structural
// concern (§9), not as inline assembly.
package blit

// Bitmap is an 8-bit alpha raster with stride, width, height, and
// left/top device offsets (§3 "Bitmap"). Buf is row-major, Stride bytes
// per row, length >= Stride*Height.
type Bitmap struct {
	Buf    []byte
	Stride int
	Width  int
	Height int
	Left   int
	Top    int
}

// CacheSize implements cache.Sizer: raster bytes plus a fixed per-entry
// metadata overhead, matching §4.1 ("bitmap and composite [caches bounded]
// by summed byte footprint (raster + metadata)").
func (b Bitmap) CacheSize() int64 {
	const metadataOverhead = 64
	return int64(len(b.Buf)) + metadataOverhead
}

// Empty reports whether b has no pixels.
func (b Bitmap) Empty() bool { return b.Width == 0 || b.Height == 0 }

// At returns the alpha value at (x, y), or 0 outside the raster.
func (b Bitmap) At(x, y int) byte {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0
	}
	return b.Buf[y*b.Stride+x]
}

// Engine is the blit capability set. Scalar, SSE2, and AVX2 implementations
// are registered at init time; exactly one is selected as the process-wide
// active engine and is not swapped afterward.
type Engine interface {
	// Name identifies the engine, for diagnostics.
	Name() string

	// AllocBitmap allocates a zeroed bitmap of the given size, aligned to
	// the engine's preferred tile boundary.
	AllocBitmap(width, height int) Bitmap

	// CopyBitmap copies src into a freshly allocated bitmap that keeps src's
	// Left/Top position.
	CopyBitmap(src Bitmap) Bitmap

	// AddBitmaps composites src onto dst in place at (dx, dy), saturating
	// at 255, implementing the additive blit used when combining a run's
	// per-glyph bitmaps (§4.6.2 step 2).
	AddBitmaps(dst *Bitmap, src Bitmap, dx, dy int)

	// SynthBlur applies a Gaussian-ish blur of the given variance plus be
	// box-blur passes in place (§4.6.2 step 3, §4.6.3).
	SynthBlur(b *Bitmap, variance float64, be int)

	// TileOrder reports the engine's preferred row-processing order for
	// rasterization; scalar processes top-to-bottom, vectorized engines
	// may prefer a tiled order for cache locality.
	TileOrder() TileOrder

	// BEPadding returns the number of extra pixels a blur-edges pass of
	// count be requires around a bitmap's bounding box before compositing
	// (§4.6.2 step 1 "padded by be_padding(BE)").
	BEPadding(be int) int
}

// TileOrder identifies a rasterization traversal order.
type TileOrder int

const (
	TileOrderLinear TileOrder = iota
	TileOrderBlocked
)

var active Engine = newScalarEngine()

func init() {
	if hasAVX2() {
		active = newAVX2Engine()
	} else if hasSSE2() {
		active = newSSE2Engine()
	}
}

// Active returns the process-wide selected engine.
func Active() Engine { return active }

// SetActive overrides the selected engine; exposed for tests that need a
// deterministic engine regardless of the host CPU.
func SetActive(e Engine) { active = e }
