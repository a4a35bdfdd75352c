package ass

import (
	"errors"
	"log/slog"

	"github.com/libsubs/ssarender/internal/blit"
	"github.com/libsubs/ssarender/internal/compose"
	"github.com/libsubs/ssarender/internal/outline"
)

// ErrInit is returned by NewRenderer on construction failure (§7 "Init
// failure: ... abort construction, release partial state, return null").
var ErrInit = errors.New("ass: renderer init failed")

// Renderer is the public entry point (§6 Core API): one renderer owns its
// three content-addressed caches (C1: outline, bitmap, composite; there is
// no font cache, font handles come from Config.FontHandle on each lookup)
// across frames and is not safe for
// concurrent RenderFrame calls (§5 "single-threaded cooperative").
type Renderer struct {
	cfg Config

	outlines *outline.Cache
	bitmaps  *outline.BitmapCache
	combiner *compose.Combiner
	engine   blit.Engine

	logger Logger

	prevImages *ImageList
}

// NewRenderer implements renderer_init: validate configuration, wire the
// outline/bitmap/composite caches to their collaborators, and select the
// process-wide blit engine.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return nil, ErrInit
	}
	cfg = cfg.normalize()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fontLoader := cfg.FontLoader
	if fontLoader == nil {
		fontLoader = outline.FallbackFontLoader{}
	}

	engine := blit.Active()
	outlines := outline.NewCache(fontLoader, cfg.Stroker)
	bitmaps := outline.NewBitmapCache(outlines, engine)
	combiner := compose.NewCombiner(outlines, bitmaps, engine)

	return &Renderer{
		cfg:      cfg,
		outlines: outlines,
		bitmaps:  bitmaps,
		combiner: combiner,
		engine:   engine,
		logger:   logger,
	}, nil
}

// Done implements renderer_done: idempotent teardown. The caches and any
// outstanding ImageLists are garbage-collected once their last reference
// drops; there is no external resource this module owns that needs
// explicit release (§1 places library init/teardown out of scope).
func (r *Renderer) Done() {
	if r == nil {
		return
	}
	r.outlines = nil
	r.bitmaps = nil
	r.combiner = nil
	r.prevImages = nil
}
