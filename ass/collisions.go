package ass

// fixCollisions implements §4.8's fix_collisions over one maximal
// layer-run (events sharing one Layer value, already sorted by
// ReadOrder): for each collision-detecting event, compute a vertical
// shift that makes its bbox disjoint from every already-fixed rectangle,
// scanning in the event's own shift direction, then register it as fixed.
//
// Property 5 (§8): after this runs, any two same-layer events that both
// have DetectCollisions set end up y-disjoint or x-disjoint.
func fixCollisions(events []*EventImages) {
	var fixed []PixelRect

	for _, e := range events {
		if !e.DetectCollisions {
			continue
		}

		rect := e.BBox
		shift := resolveShift(rect, fixed, e.ShiftDirection)
		if shift != 0 {
			rect.Top += shift
			applyShift(e, shift)
		}
		fixed = insertSortedByTop(fixed, rect)
	}
}

// resolveShift finds the vertical pixel shift that moves rect clear of
// every rectangle in fixed, searching in dir (-1 up, +1 down). Bounded to
// len(fixed)+1 passes so a pathological input can't loop forever; each
// pass either clears every current overlap or the loop ends because no
// further movement was needed.
func resolveShift(rect PixelRect, fixed []PixelRect, dir int) int {
	total := 0
	cur := rect
	for pass := 0; pass <= len(fixed); pass++ {
		moved := false
		for _, f := range fixed {
			if !rectsOverlap(cur, f) {
				continue
			}
			var delta int
			if dir < 0 {
				delta = (f.Top - cur.Height) - cur.Top
			} else {
				delta = (f.Top + f.Height) - cur.Top
			}
			cur.Top += delta
			total += delta
			moved = true
		}
		if !moved {
			break
		}
	}
	return total
}

func rectsOverlap(a, b PixelRect) bool {
	yOverlap := a.Top < b.Top+b.Height && b.Top < a.Top+a.Height
	xOverlap := a.Left < b.Left+b.Width && b.Left < a.Left+a.Width
	return yOverlap && xOverlap
}

func applyShift(e *EventImages, dy int) {
	e.BBox.Top += dy
	for _, im := range e.Images {
		im.DstY += dy
	}
}

func insertSortedByTop(fixed []PixelRect, r PixelRect) []PixelRect {
	i := 0
	for i < len(fixed) && fixed[i].Top < r.Top {
		i++
	}
	fixed = append(fixed, PixelRect{})
	copy(fixed[i+1:], fixed[i:])
	fixed[i] = r
	return fixed
}
