// Package outline implements C3: building outlines (glyph / drawing /
// border-stroke / box) and rasterizing them to bitmaps on cache miss.
//
// The four-variant key/value shape mirrors how internal/lossless and
// internal/lossy (the teacher's codec-specific caches) key work by a small
// struct and hand the miss to a construct function; the cache mechanics
// themselves are internal/cache's generic Cache, generalizing
// internal/lossless/colorcache.go's get-or-insert contract.
package outline

import (
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/libsubs/ssarender/internal/cache"
	"github.com/libsubs/ssarender/internal/xform"
)

// SegmentTag marks how a polyline point connects to the previous one.
type SegmentTag uint8

const (
	SegmentLine SegmentTag = iota
	SegmentQuadratic
	SegmentCubic
)

// Point2D is a point in 26.6 fixed-point outline units (pixels * 64).
type Point2D struct {
	X, Y int32
}

// Path is a flattened polyline with per-point segment tags.
type Path struct {
	Points []Point2D
	Tags   []SegmentTag
}

// Value is the spec's OutlineHashValue: two polylines (fill, border),
// glyph advance, ascender/descender, cbox, and a validity flag.
type Value struct {
	Fill   Path
	Border Path

	Advance    int32 // 26.6 units
	Ascender   int32
	Descender  int32

	Cbox  xform.Cbox // pixels, derived from the union of Fill and Border
	Valid bool
}

// CacheSize implements cache.Sizer; the outline cache is count-bounded
// (§4.1), so this value isn't used for eviction math but is still required
// to satisfy the generic Cache's constraint.
func (v Value) CacheSize() int64 { return 1 }

func unionCbox(paths ...Path) xform.Cbox {
	box := xform.Cbox{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	seen := false
	for _, p := range paths {
		for _, pt := range p.Points {
			seen = true
			x, y := float64(pt.X)/64, float64(pt.Y)/64
			if x < box.X0 {
				box.X0 = x
			}
			if y < box.Y0 {
				box.Y0 = y
			}
			if x > box.X1 {
				box.X1 = x
			}
			if y > box.Y1 {
				box.Y1 = y
			}
		}
	}
	if !seen {
		return xform.Cbox{}
	}
	return box
}

// KeyKind is the tag of the OutlineHashKey sum type (§9 "Tagged
// variants").
type KeyKind uint8

const (
	KindGlyph KeyKind = iota
	KindDrawing
	KindBorder
	KindBox
)

// Key is the sum type over {Glyph, Drawing, Border, Box}. Only the fields
// relevant to Kind participate in equality/hashing, matching the "compose
// with care" guidance in §9; Go's comparable-struct equality already does
// this correctly as long as irrelevant fields are left at their zero value
// for a given Kind, which the constructors below guarantee.
type Key struct {
	Kind KeyKind

	// Glyph
	FontHandle uintptr
	GlyphIndex uint32
	SizeQ26_6  int32 // requested size, quantized to 26.6
	Hinting    uint8

	// Drawing
	DrawingCommands string
	DrawingScaleOrd int8

	// Border (stroke): the outline being stroked, plus widths and scale.
	Source        *Value
	BorderXQ26_6  int32
	BorderYQ26_6  int32
	ScaleOrd      int8

	// Box: no extra fields; the unit square is parameterless.
}

// GlyphKey builds a Key for a font glyph outline.
func GlyphKey(font uintptr, glyphIndex uint32, sizeQ26_6 int32, hinting uint8) Key {
	return Key{Kind: KindGlyph, FontHandle: font, GlyphIndex: glyphIndex, SizeQ26_6: sizeQ26_6, Hinting: hinting}
}

// DrawingKey builds a Key for an inline \p drawing command string.
func DrawingKey(commands string, scaleOrd int8) Key {
	return Key{Kind: KindDrawing, DrawingCommands: commands, DrawingScaleOrd: scaleOrd}
}

// BorderKey builds a Key for a stroked variant of an existing outline.
func BorderKey(src *Value, borderX, borderY int32, scaleOrd int8) Key {
	return Key{Kind: KindBorder, Source: src, BorderXQ26_6: borderX, BorderYQ26_6: borderY, ScaleOrd: scaleOrd}
}

// BoxKey builds a Key for the unit-square box outline (§4.3 "Box").
func BoxKey() Key { return Key{Kind: KindBox} }

// FontLoader is the narrow external-collaborator seam for "font discovery
// and file loading" (§1 Non-goals/out-of-scope): given a font handle and
// glyph index, it returns the glyph's raw outline, advance, and
// ascender/descender. Production builds would implement this against
// FreeType; this module ships only the interface plus a minimal
// deterministic fallback (FallbackFontLoader) sufficient to drive and
// test the rest of the pipeline.
type FontLoader interface {
	LoadGlyph(font uintptr, glyphIndex uint32, sizeQ26_6 int32, hinting uint8) (path Path, adv advance, ascender, descender int32, ok bool)
}

// advance is a named type alias purely for the FontLoader signature's
// readability; it is an int32 in 26.6 units like everything else here.
type advance = int32

// Cache is the count-bounded outline cache (§4.1).
type Cache struct {
	loader  FontLoader
	stroker Stroker
	cache   *cache.Cache[Key, Value]
}

// NewCache creates the outline cache, wired to loader for glyph
// construction and stroker for border construction.
func NewCache(loader FontLoader, stroker Stroker) *Cache {
	c := &Cache{loader: loader, stroker: stroker}
	c.cache = cache.NewCountBoundedCache(c.construct)
	return c
}

// Get fetches (constructing on miss) the outline for key.
func (c *Cache) Get(key Key) cache.Ref[Value] { return c.cache.Get(key) }

// IncRef / DecRef / Cut mirror the shared-ownership contract of §3
// Invariants ("Every OutlineHashValue ... is retained until that referent
// is freed via reference counts").
func (c *Cache) IncRef(key Key) { c.cache.IncRef(key) }
func (c *Cache) DecRef(key Key) { c.cache.DecRef(key) }
func (c *Cache) Cut(maxEntries int64) { c.cache.Cut(maxEntries) }

func (c *Cache) construct(key Key) (Value, bool) {
	switch key.Kind {
	case KindGlyph:
		return c.constructGlyph(key)
	case KindDrawing:
		return constructDrawing(key)
	case KindBorder:
		return c.constructBorder(key)
	case KindBox:
		return constructBox(), true
	default:
		return Value{}, false
	}
}

func (c *Cache) constructGlyph(key Key) (Value, bool) {
	if c.loader == nil {
		return Value{}, false
	}
	path, adv, asc, desc, ok := c.loader.LoadGlyph(key.FontHandle, key.GlyphIndex, key.SizeQ26_6, key.Hinting)
	if !ok {
		return Value{}, false
	}
	v := Value{Fill: path, Advance: adv, Ascender: asc, Descender: desc, Valid: true}
	v.Cbox = unionCbox(v.Fill, v.Border)
	return v, true
}

// fallbackFace is the real (if tiny) bitmap font this module's fallback
// loader queries for glyph metrics: golang.org/x/image/font/basicfont's
// bundled 7x13 face, which satisfies golang.org/x/image/font.Face. "font
// discovery and file loading" is an external collaborator per §1, but the
// fallback still needs a concrete font.Face to stand in for one, rather
// than inventing glyph metrics out of thin air.
var fallbackFace font.Face = basicfont.Face7x13

// FallbackFontLoader is a minimal, deterministic FontLoader: glyph bounds
// and advance come from fallbackFace's native 7x13 metrics, rescaled to
// the requested point size. It fails only for a non-positive size (an
// unmapped rune falls back to the face's space-glyph metrics). It exists so this module's
// outline/bitmap/composition stages can be built, run, and tested
// end-to-end without a real FreeType binding.
type FallbackFontLoader struct{}

func (FallbackFontLoader) LoadGlyph(fontHandle uintptr, glyphIndex uint32, sizeQ26_6 int32, hinting uint8) (path Path, advance, ascender, descender int32, ok bool) {
	if sizeQ26_6 <= 0 {
		return Path{}, 0, 0, 0, false
	}

	// internal/shaping.FallbackShaper hands back the source rune as the
	// glyph index (there's no real cmap in the fallback chain), so that's
	// what fallbackFace is queried with here.
	r := rune(glyphIndex)
	bounds, faceAdvance, found := fallbackFace.GlyphBounds(r)
	if !found {
		bounds, faceAdvance, _ = fallbackFace.GlyphBounds(' ')
	}

	metrics := fallbackFace.Metrics()
	nativeHeight := metrics.Height
	if nativeHeight <= 0 {
		nativeHeight = fixed.I(13)
	}
	scale := float64(sizeQ26_6) / float64(nativeHeight)

	w := scaleFixed26_6(bounds.Max.X-bounds.Min.X, scale)
	h := scaleFixed26_6(bounds.Max.Y-bounds.Min.Y, scale)
	if w <= 0 {
		w = sizeQ26_6 * 3 / 5
	}
	if h <= 0 {
		h = sizeQ26_6
	}
	path = Path{
		Points: []Point2D{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: -h}, {X: 0, Y: -h}},
		Tags:   []SegmentTag{SegmentLine, SegmentLine, SegmentLine, SegmentLine},
	}

	advance = scaleFixed26_6(faceAdvance, scale)
	if advance <= 0 {
		advance = w + sizeQ26_6/10
	}
	ascender = scaleFixed26_6(metrics.Ascent, scale)
	descender = scaleFixed26_6(metrics.Descent, scale)
	return path, advance, ascender, descender, true
}

// scaleFixed26_6 rescales a golang.org/x/image/math/fixed.Int26_6 value
// (already a 26.6 fixed-point int32 under the hood, the same
// representation this package's Point2D uses) by a plain float ratio.
func scaleFixed26_6(v fixed.Int26_6, scale float64) int32 {
	return int32(math.Round(float64(v) * scale))
}
