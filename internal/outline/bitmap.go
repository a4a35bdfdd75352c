package outline

import (
	"math"
	"sort"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/cache"
	"github.com/libsubs/ssarender/internal/xform"
)

// BitmapKey is the spec's BitmapHashKey (§3): an outline reference plus a
// quantized matrix and sub-pixel offset (§4.2's xform.Quantized is exactly
// that payload).
type BitmapKey struct {
	Outline Key
	Q       xform.Quantized
}

type bitmapValue struct {
	blit.Bitmap
}

func (v bitmapValue) CacheSize() int64 { return v.Bitmap.CacheSize() }

// BitmapCache is the byte-size-bounded bitmap cache (§4.1).
type BitmapCache struct {
	outlines *Cache
	engine   blit.Engine
	cache    *cache.Cache[BitmapKey, bitmapValue]
}

// NewBitmapCache wires a bitmap cache to the outline cache it reconstructs
// rasters from, and to the active blit engine.
func NewBitmapCache(outlines *Cache, engine blit.Engine) *BitmapCache {
	if engine == nil {
		engine = blit.Active()
	}
	c := &BitmapCache{outlines: outlines, engine: engine}
	c.cache = cache.NewCache(c.construct)
	return c
}

// Get fetches (constructing on miss) the bitmap for key.
func (c *BitmapCache) Get(key BitmapKey) (blit.Bitmap, bool) {
	r := c.cache.Get(key)
	return r.Value.Bitmap, r.Valid
}

func (c *BitmapCache) IncRef(key BitmapKey)         { c.cache.IncRef(key) }
func (c *BitmapCache) DecRef(key BitmapKey)         { c.cache.DecRef(key) }
func (c *BitmapCache) Cut(maxBytes int64)           { c.cache.Cut(maxBytes) }

// construct implements §4.4: on cache miss, reconstruct the matrix from
// the key, apply it to both polylines, and rasterize to a single 8-bit
// alpha bitmap with left/top positioning.
func (c *BitmapCache) construct(key BitmapKey) (bitmapValue, bool) {
	ov := c.outlines.Get(key.Outline)
	if !ov.Valid {
		return bitmapValue{}, false
	}
	m := xform.Restore(key.Q, ov.Value.Cbox)

	perspective := key.Q.MatrixZ[0] != 0 || key.Q.MatrixZ[1] != 0

	fillDev := transformPath(ov.Value.Fill, m, perspective)
	borderDev := transformPath(ov.Value.Border, m, perspective)

	bmp := rasterize(c.engine, fillDev, borderDev)
	return bitmapValue{bmp}, true
}

// devPoint is a transformed point in device pixels (not fixed-point),
// kept as float64 for the rasterizer's sub-pixel coverage estimate.
type devPoint struct{ X, Y float64 }

func transformPath(p Path, m xform.Matrix3, perspective bool) []devPoint {
	out := make([]devPoint, len(p.Points))
	for i, pt := range p.Points {
		x, y := float64(pt.X)/64, float64(pt.Y)/64
		fx, fy, fz := m.Apply(x, y)
		if perspective && fz > 0 {
			out[i] = devPoint{fx / fz, fy / fz}
		} else {
			out[i] = devPoint{fx, fy}
		}
	}
	return out
}

// rasterize fills fill and border as nonzero-winding polygons into a
// single alpha bitmap sized to their combined bounds, border first so the
// fill is drawn on top (matching that a later fix_outline pass, not this
// function, is responsible for border/fill overlap per §4.6.2 step 4).
func rasterize(engine blit.Engine, fill, border []devPoint) blit.Bitmap {
	minX, minY, maxX, maxY := boundsOf(fill, border)
	if maxX <= minX || maxY <= minY {
		return blit.Bitmap{} // empty raster recorded as all-zero per §4.4
	}
	left := int(math.Floor(minX))
	top := int(math.Floor(minY))
	width := int(math.Ceil(maxX)) - left + 1
	height := int(math.Ceil(maxY)) - top + 1

	bmp := engine.AllocBitmap(width, height)
	bmp.Left, bmp.Top = left, top

	if len(border) > 0 {
		fillPolygon(&bmp, border, left, top)
	}
	if len(fill) > 0 {
		fillPolygon(&bmp, fill, left, top)
	}
	return bmp
}

func boundsOf(paths ...[]devPoint) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	any := false
	for _, path := range paths {
		for _, p := range path {
			any = true
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	if !any {
		return 0, 0, 0, 0
	}
	return
}

// fillPolygon applies a standard scanline, nonzero-winding-rule fill of
// path into bmp, offset by (-left, -top). One sample per pixel row-center
// keeps this simple; it is adequate for the alpha coverage approximation
// this module needs and is explicitly not the SIMD/AA rasterizer the spec
// places out of scope (§1).
func fillPolygon(bmp *blit.Bitmap, path []devPoint, left, top int) {
	if len(path) < 2 {
		return
	}
	for y := 0; y < bmp.Height; y++ {
		scanY := float64(top+y) + 0.5
		xs := scanline(path, scanY)
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Round(xs[i])) - left
			x1 := int(math.Round(xs[i+1])) - left
			if x0 < 0 {
				x0 = 0
			}
			if x1 > bmp.Width {
				x1 = bmp.Width
			}
			for x := x0; x < x1; x++ {
				bmp.Buf[y*bmp.Stride+x] = 255
			}
		}
	}
}

// scanline returns the x-intersections of path's edges with the
// horizontal line y=scanY (even-count crossings, standard polygon fill).
func scanline(path []devPoint, scanY float64) []float64 {
	var xs []float64
	n := len(path)
	for i := 0; i < n; i++ {
		a := path[i]
		b := path[(i+1)%n]
		if (a.Y <= scanY && b.Y > scanY) || (b.Y <= scanY && a.Y > scanY) {
			t := (scanY - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	return xs
}
