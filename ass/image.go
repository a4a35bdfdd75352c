package ass

import "github.com/libsubs/ssarender/internal/blit"

// Image is the public ASS_Image (§6 "Output image", bit-exact): an 8-bit
// alpha raster, packed RGBA color, destination position, and a Next link
// so a frame's images form one singly linked chain per §5's ordering
// guarantee (Layer asc, ReadOrder asc; within an event, shadow, then
// border, then fill).
type Image struct {
	Bitmap blit.Bitmap // Width/Height/Stride/left-top offsets live here
	Color  uint32      // big-endian packed RGBA, A = transparency

	DstX, DstY int

	Next *Image
}

// PixelRect is an integer device-space bounding box in pixels (§3
// "EventImages ... combined pixel bounding box (top/height/left/width)").
type PixelRect struct {
	Left, Top, Width, Height int
}

// EventImages is the per-event output of the pipeline+composition stages
// (§3 "EventImages"): the event's image chain, its combined bbox, and the
// collision bookkeeping frame assembly (C6) consumes and updates.
type EventImages struct {
	Images []*Image
	BBox   PixelRect

	Event Event

	DetectCollisions bool
	// ShiftDirection is -1 (move up, "subtitles") or +1 (move down,
	// "toptitles"), per §4.8 step 3.
	ShiftDirection int

	// readOrder is the event's position in the track. fixCollisions does
	// not read it: collisions are resolved afresh on every frame, and no
	// fixed rectangle is carried from one frame to the next.
	readOrder int
}

// chain links im.Images into a single Image linked list, in the order
// composition produced them (shadow, then border, then fill, per §5).
func (e *EventImages) chain() *Image {
	var head, tail *Image
	for _, im := range e.Images {
		if head == nil {
			head = im
		} else {
			tail.Next = im
		}
		tail = im
		im.Next = nil
	}
	return head
}

// ImageList is the renderer's per-frame output (§6 "ImageList"): a
// handle to one frame's Image chain with a holder count kept by Ref and
// Unref. RenderFrame returns the list with a count of zero and keeps it as
// the previous frame for change detection without taking a reference; the
// underlying buffers are ordinary Go memory, reclaimed by the garbage
// collector once nothing points at the list (§3 Lifecycle, §5 "Shared
// resources").
type ImageList struct {
	Head        *Image
	ChangeLevel int

	refs int
}

// Ref implements frame_ref: increments the list's reference count.
func (l *ImageList) Ref() {
	if l == nil {
		return
	}
	l.refs++
}

// Unref implements frame_unref: decrements the reference count. The
// caller must not dereference l after the count reaches zero.
func (l *ImageList) Unref() {
	if l == nil {
		return
	}
	l.refs--
}
