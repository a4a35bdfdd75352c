package outline

import (
	"strconv"
	"strings"
)

// constructBox builds the unit square (0,0)-(64,64) as a four-segment
// contour, for BorderStyle=3 opaque box backgrounds (§4.3 "Box").
func constructBox() Value {
	p := Path{
		Points: []Point2D{{0, 0}, {64, 0}, {64, 64}, {0, 64}},
		Tags:   []SegmentTag{SegmentLine, SegmentLine, SegmentLine, SegmentLine},
	}
	v := Value{Fill: p, Advance: 64, Ascender: 64, Valid: true}
	v.Cbox = unionCbox(p)
	return v
}

// constructDrawing parses an inline \p drawing command string (the "m /n
// /l /b /s /p /c" mini-language, §4.3 "Drawing") into an outline. Operands
// are read as x/y pairs and stored as points in order; no curve is
// evaluated. Points read after b, s or p are tagged SegmentCubic and all
// others SegmentLine; the remaining operators only switch the current
// operator.
func constructDrawing(key Key) (Value, bool) {
	commands := tokenizeDrawing(key.DrawingCommands)
	if len(commands) == 0 {
		return Value{}, false
	}

	var pts []Point2D
	var tags []SegmentTag
	i := 0
	op := byte('m')
	for i < len(commands) {
		tok := commands[i]
		if isDrawingOp(tok) {
			op = tok[0]
			i++
			continue
		}
		x, err1 := strconv.Atoi(tok)
		if err1 != nil || i+1 >= len(commands) {
			break
		}
		y, err2 := strconv.Atoi(commands[i+1])
		if err2 != nil {
			break
		}
		i += 2
		pt := Point2D{X: int32(x) << 6, Y: int32(y) << 6}
		pts = append(pts, pt)
		switch op {
		case 'b', 's', 'p':
			tags = append(tags, SegmentCubic)
		default:
			tags = append(tags, SegmentLine)
		}
	}
	if len(pts) < 2 {
		return Value{}, false
	}

	path := Path{Points: pts, Tags: tags}
	box := unionCbox(path)
	v := Value{
		Fill:      path,
		Advance:   int32((box.X1 - box.X0) * 64),
		Ascender:  int32((box.Y1 - box.Y0) * 64),
		Cbox:      box,
		Valid:     true,
	}
	return v, true
}

func isDrawingOp(tok string) bool {
	if len(tok) != 1 {
		return false
	}
	switch tok[0] {
	case 'm', 'n', 'l', 'b', 's', 'p', 'c':
		return true
	}
	return false
}

func tokenizeDrawing(s string) []string {
	return strings.Fields(s)
}
