// Package shaping defines the narrow seam onto "the text shaper (bidi,
// cluster formation, cmap application)" that §1 explicitly places outside
// this module's scope, plus a minimal deterministic fallback
// implementation sufficient to drive and test the rest of the pipeline.
//
// The interface shape (a run of runes in, a slice of shaped clusters out)
// follows the shaper-interface pattern surveyed in
// _examples/other_examples/...gioui-gio__text-shaper.go.go and
// ...boxesandglue-typesetting__harfbuzz-ot_map.go.go: a narrow boundary
// that a production build would satisfy with real HarfBuzz/FreeType
// bindings.
package shaping

import (
	"golang.org/x/text/unicode/bidi"

	"github.com/libsubs/ssarender/internal/model"
)

// Run is a maximal span of text sharing one face/style, the unit the
// shaper operates on (§4.5 step 5: "invoke the shaper over contiguous
// shape-runs").
type Run struct {
	Text       []rune
	FontHandle uintptr
	FontSize   float64
	Vertical   bool
}

// Cluster is one shaped cluster: a glyph (or chain of glyphs for ligatures
// handled upstream of this module) plus its advance and source rune span.
type Cluster struct {
	GlyphIndex uint32
	Advance    model.Point
	RuneStart  int
	RuneCount  int
}

// Shaper produces shaped clusters for a Run. Implementations may return an
// error for a shaping failure (§7 "Event-level failure ... shaping
// failure"), which the pipeline converts into an aborted event.
type Shaper interface {
	Shape(run Run) ([]Cluster, error)
}

// FallbackShaper is a minimal, deterministic Shaper: one cluster per rune,
// monospace advance derived from FontSize. It never fails. It exists so
// this module's pipeline, wrap, and composition logic can be built, run,
// and tested end-to-end without a real HarfBuzz binding.
type FallbackShaper struct{}

func (FallbackShaper) Shape(run Run) ([]Cluster, error) {
	advance := model.Pos26_6(run.FontSize * 0.6 * 64) // 60% em-width approximation
	clusters := make([]Cluster, len(run.Text))
	for i := range run.Text {
		clusters[i] = Cluster{
			GlyphIndex: uint32(run.Text[i]),
			Advance:    model.Point{X: advance},
			RuneStart:  i,
			RuneCount:  1,
		}
	}
	return clusters, nil
}

// ReorderVisual reorders glyph indices into visual (BiDi) order using
// golang.org/x/text/unicode/bidi, implementing §4.5 step 10's "re-lay
// clusters in visual (BiDi) order". It operates on a paragraph-level
// direction derived from the slice's own text; the pipeline passes one
// line at a time and resolves no base direction of its own.
func ReorderVisual(line []rune) []int {
	order := make([]int, len(line))
	for i := range order {
		order[i] = i
	}
	if len(line) == 0 {
		return order
	}

	var p bidi.Paragraph
	p.SetString(string(line))
	ordering, err := p.Order()
	if err != nil {
		return order
	}

	visual := make([]int, 0, len(line))
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		start, _ := runeOffsets(line, run)
		runLen := len([]rune(run.String()))
		if run.Direction() == bidi.RightToLeft {
			for j := runLen - 1; j >= 0; j-- {
				visual = append(visual, start+j)
			}
		} else {
			for j := 0; j < runLen; j++ {
				visual = append(visual, start+j)
			}
		}
	}
	if len(visual) != len(line) {
		return order // defensive fallback if rune/byte accounting disagreed
	}
	return visual
}

// runeOffsets reports the rune offset of run's text within the original
// line, by locating its byte offset (x/text/unicode/bidi doesn't expose
// rune offsets directly) and converting.
func runeOffsets(line []rune, run bidi.Run) (runeStart int, byteStart int) {
	// Runs are produced in order, so summing consumed rune lengths from
	// prior runs would be more efficient; here we simply search, which is
	// adequate for per-line text lengths.
	target := run.String()
	s := string(line)
	idx := indexOf(s, target)
	if idx < 0 {
		return 0, 0
	}
	return len([]rune(s[:idx])), idx
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// BaseDirection reports the dominant paragraph direction for text, derived
// from the text itself. The pipeline does not call it.
func BaseDirection(text []rune) bidi.Direction {
	var p bidi.Paragraph
	p.SetString(string(text))
	dir, err := p.Direction()
	if err != nil {
		return bidi.LeftToRight
	}
	return dir
}
