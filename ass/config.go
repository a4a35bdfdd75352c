package ass

// Config is the renderer configuration (§6 "Renderer configuration"),
// mirroring the teacher's `EncoderOptions`/`animation.DecodeConfig` shape:
// an exported struct of named fields with a normalize() step resolving
// zero values to defaults, rather than functional options.
type Config struct {
	// FrameWidth, FrameHeight are the output canvas in pixels.
	FrameWidth, FrameHeight int
	// StorageWidth, StorageHeight are the PAR reference resolution.
	StorageWidth, StorageHeight int
	// PAR is the pixel aspect ratio; 0 derives it from DAR/SAR.
	PAR float64
	// DisplayAspect and StorageAspect feed PAR derivation when PAR == 0.
	DisplayAspect, StorageAspect float64

	LeftMargin, TopMargin int
	UseMargins            bool

	// FontSizeCoeff defaults to 1.
	FontSizeCoeff float64

	LineSpacing  float64
	LinePosition float64 // percentage, 0-100

	Hinting HintingMode
	Shaper  ShaperKind

	DefaultFont, DefaultFamily string

	SelectiveStyleOverrides OverrideBits
	// StyleOverride is the user override style consulted when
	// SelectiveStyleOverrides is nonzero (§4.7 handle_selective_style_overrides).
	StyleOverride Style

	// FontLoader, Stroker, and TextShaper are the out-of-scope collaborators
	// (§1). A nil FontLoader/Stroker/TextShaper falls back to this module's
	// minimal deterministic stand-ins, sufficient to drive and test the
	// rest of the pipeline without a real font/shaping backend.
	FontLoader FontLoader
	Stroker    Stroker
	TextShaper Shaper

	// FontHandle resolves a (family, bold, italic) style triple to an
	// opaque font handle consumed by FontLoader; nil always returns a
	// zero handle (still usable with FontLoader implementations that
	// don't distinguish by handle).
	FontHandle func(family string, bold, italic bool) (uintptr, bool)

	// Logger receives the degraded-data and init-failure diagnostics of
	// §7. A nil Logger falls back to slog.Default().
	Logger Logger

	// MaxOutlineEntries, MaxBitmapBytes, and MaxCompositeBytes bound the
	// three rendering caches, trimmed LRU at the start of every frame (§5
	// "Resource bounds": "caches trimmed LRU at frame start"). Zero means
	// "use this module's default bound".
	MaxOutlineEntries int64
	MaxBitmapBytes    int64
	MaxCompositeBytes int64
}

const (
	defaultMaxOutlineEntries = 4096
	defaultMaxBitmapBytes    = 64 << 20
	defaultMaxCompositeBytes = 64 << 20
)

// Logger is the narrow logging seam this module needs (§1 "logging
// transport" stays out of scope; the renderer owns only the call sites
// and levels). *slog.Logger satisfies this interface directly.
type Logger interface {
	Warn(msg string, args ...any)
}

func (c Config) normalize() Config {
	if c.FontSizeCoeff == 0 {
		c.FontSizeCoeff = 1
	}
	if c.MaxOutlineEntries == 0 {
		c.MaxOutlineEntries = defaultMaxOutlineEntries
	}
	if c.MaxBitmapBytes == 0 {
		c.MaxBitmapBytes = defaultMaxBitmapBytes
	}
	if c.MaxCompositeBytes == 0 {
		c.MaxCompositeBytes = defaultMaxCompositeBytes
	}
	return c
}
