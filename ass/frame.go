package ass

import (
	"sort"
	"time"
	"unsafe"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/compose"
	"github.com/libsubs/ssarender/internal/model"
	"github.com/libsubs/ssarender/internal/pipeline"
	"github.com/libsubs/ssarender/internal/shaping"
	"github.com/libsubs/ssarender/internal/style"
)

// RenderFrame implements render_frame (§6, §4.8): trim the caches, select
// the events active at nowMs, run the per-event pipeline (C4) and
// composition (C5) over each, resolve same-layer collisions, and
// concatenate the results into one ordered ImageList.
func (r *Renderer) RenderFrame(track *Track, nowMs int64) (*ImageList, int, error) {
	if r == nil {
		return nil, 0, ErrInit
	}
	now := time.Duration(nowMs) * time.Millisecond

	r.outlines.Cut(r.cfg.MaxOutlineEntries)
	r.bitmaps.Cut(r.cfg.MaxBitmapBytes)
	r.combiner.Composite.Cut(r.cfg.MaxCompositeBytes)

	p := r.newPipeline(track)

	var active []*EventImages
	for _, ev := range track.Events {
		if !ev.Active(now) {
			continue
		}
		result, err := p.RenderEvent(ev, track.Styles, now-ev.Start, nil)
		if err != nil {
			r.logger.Warn("ass: event render failed, skipping", "read_order", ev.ReadOrder, "err", err)
			continue
		}
		runs := r.combiner.RenderAndCombine(result.Text.Glyphs, result.DeviceOrigin)
		p.ReleaseOutlineRefs(&result.Text)
		if ei := buildEventImages(ev, result, runs); ei != nil {
			active = append(active, ei)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Event.Layer != active[j].Event.Layer {
			return active[i].Event.Layer < active[j].Event.Layer
		}
		return active[i].Event.ReadOrder < active[j].Event.ReadOrder
	})

	for start := 0; start < len(active); {
		end := start + 1
		for end < len(active) && active[end].Event.Layer == active[start].Event.Layer {
			end++
		}
		fixCollisions(active[start:end])
		start = end
	}

	list := &ImageList{Head: concatChains(active)}
	list.ChangeLevel = detectChange(r.prevImages, list)
	r.prevImages = list
	return list, list.ChangeLevel, nil
}

// newPipeline wires a fresh per-frame Pipeline from the renderer's
// configuration and track geometry, and pushes the same derived
// font/PAR/blur scale into the combiner (§4.7, §4.8 "update PAR").
func (r *Renderer) newPipeline(track *Track) *pipeline.Pipeline {
	geom := r.frameGeometry(track)
	fontScale := style.InitFontScale(geom)
	parX := style.ParFromDAR(r.cfg.PAR, r.cfg.DisplayAspect, r.cfg.StorageAspect)
	coords := style.CoordParams{
		Scale: fontScale,
		ParX:  parX,
		Margins: model.Margins{
			Left: int32(r.cfg.LeftMargin), Right: int32(r.cfg.LeftMargin), Vertical: int32(r.cfg.TopMargin),
		},
		UseMargins: r.cfg.UseMargins,
	}

	shaper := r.cfg.TextShaper
	if shaper == nil {
		shaper = shaping.FallbackShaper{}
	}

	r.combiner.FontScaleX = parX
	r.combiner.BlurScale = fontScale.Blur
	r.combiner.LeftMargin = int32(r.cfg.LeftMargin)

	return &pipeline.Pipeline{
		Shaper:        shaper,
		Outlines:      r.outlines,
		Geometry:      geom,
		Coords:        coords,
		OverrideStyle: r.cfg.StyleOverride,
		OverrideBits:  r.cfg.SelectiveStyleOverrides,
		Hinting:       uint8(r.cfg.Hinting),
		FontHandle:    r.cfg.FontHandle,
	}
}

// frameGeometry resolves the script's assumed canvas against the renderer's
// configured output frame (§4.7 init_font_scale / §4.8 "update PAR").
func (r *Renderer) frameGeometry(track *Track) style.FrameGeometry {
	playResX, playResY := track.PlayResX, track.PlayResY
	if playResX <= 0 {
		playResX = float64(r.cfg.StorageWidth)
	}
	if playResY <= 0 {
		playResY = float64(r.cfg.StorageHeight)
	}
	g := style.FrameGeometry{
		PlayResX:      playResX,
		PlayResY:      playResY,
		FrameWidth:    float64(r.cfg.FrameWidth),
		FrameHeight:   float64(r.cfg.FrameHeight),
		FontSizeCoeff: r.cfg.FontSizeCoeff,
	}
	if r.cfg.UseMargins {
		g.FitHeight = float64(r.cfg.FrameHeight - 2*r.cfg.TopMargin)
	}
	return g
}

// buildEventImages turns one event's composed runs into an EventImages:
// one Image per non-empty shadow/border/fill layer, in that composition
// order (§5 "within an event, images follow ... shadow, then border, then
// fill"), plus the collision-detection flags §4.8 step 3 needs.
func buildEventImages(ev model.Event, result *pipeline.Result, runs []compose.CombinedBitmapInfo) *EventImages {
	ei := &EventImages{Event: ev, readOrder: ev.ReadOrder}
	bboxSet := false

	addLayer := func(bmp blit.Bitmap, color model.Color) {
		if bmp.Empty() {
			return
		}
		ei.Images = append(ei.Images, &Image{Bitmap: bmp, Color: color.Pack(), DstX: bmp.Left, DstY: bmp.Top})
		growBBox(&ei.BBox, &bboxSet, bmp)
	}

	for i := range runs {
		run := &runs[i]
		addLayer(run.ShadowBitmap, run.Back)
		addLayer(run.BorderBitmap, run.Outline)
		addLayer(run.FillBitmap, run.Primary)
	}
	if len(ei.Images) == 0 {
		return nil
	}

	ei.DetectCollisions = result.EvType == model.EventDefault
	if result.RenderState.Alignment.VerticalPart() == 2 {
		ei.ShiftDirection = 1 // toptitle: move down
	} else {
		ei.ShiftDirection = -1 // subtitle: move up
	}
	return ei
}

func growBBox(box *PixelRect, set *bool, bmp blit.Bitmap) {
	if !*set {
		*box = PixelRect{Left: bmp.Left, Top: bmp.Top, Width: bmp.Width, Height: bmp.Height}
		*set = true
		return
	}
	x0, y0 := minInt(box.Left, bmp.Left), minInt(box.Top, bmp.Top)
	x1, y1 := maxInt(box.Left+box.Width, bmp.Left+bmp.Width), maxInt(box.Top+box.Height, bmp.Top+bmp.Height)
	box.Left, box.Top, box.Width, box.Height = x0, y0, x1-x0, y1-y0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// concatChains implements §4.8's "concatenate all events' image chains in
// sorted order into images_root".
func concatChains(events []*EventImages) *Image {
	var head, tail *Image
	for _, ei := range events {
		chain := ei.chain()
		if chain == nil {
			continue
		}
		if head == nil {
			head = chain
		} else {
			tail.Next = chain
		}
		tail = chain
		for tail.Next != nil {
			tail = tail.Next
		}
	}
	return head
}

// detectChange implements §4.8's detect_change: 0 when the new chain is
// identical to prev (same bitmaps, same positions), 1 when only positions
// differ, 2 when content, color, or length differs (Property 6).
func detectChange(prev, cur *ImageList) int {
	if prev == nil {
		if cur.Head == nil {
			return 0
		}
		return 2
	}

	positionOnly := false
	pi, ci := prev.Head, cur.Head
	for pi != nil && ci != nil {
		if !sameBitmap(pi.Bitmap, ci.Bitmap) || pi.Color != ci.Color {
			return 2
		}
		if pi.DstX != ci.DstX || pi.DstY != ci.DstY {
			positionOnly = true
		}
		pi, ci = pi.Next, ci.Next
	}
	if pi != nil || ci != nil {
		return 2
	}
	if positionOnly {
		return 1
	}
	return 0
}

// sameBitmap reports whether a and b reference the same underlying raster,
// the content-identity test a content-addressed cache hit gives us for
// free: an unchanged glyph run resolves to the same cache entry, so its
// Buf backing array is the same allocation across frames.
func sameBitmap(a, b blit.Bitmap) bool {
	if a.Width != b.Width || a.Height != b.Height || a.Stride != b.Stride {
		return false
	}
	if len(a.Buf) != len(b.Buf) {
		return false
	}
	if len(a.Buf) == 0 {
		return true
	}
	return unsafe.SliceData(a.Buf) == unsafe.SliceData(b.Buf)
}
