package ass

import (
	"testing"

	"github.com/libsubs/ssarender/internal/model"
)

// FuzzRenderFrame is this module's analog of the teacher's FuzzDecode: its
// primary defense against a malformed/adversarial input reaching a panic
// instead of a clean error or a degraded render. Event text carrying
// arbitrary ASS override tags is the nearest equivalent this module has to
// an untrusted byte stream, since script parsing itself is out of scope.
func FuzzRenderFrame(f *testing.F) {
	seeds := []string{
		"",
		"hello",
		`{\b1}bold{\b0}`,
		`{\pos(100,200)}positioned`,
		`{\move(0,0,100,100,0,1000)}moving`,
		`{\k50}ka{\k50}ra{\k50}oke`,
		`line one\Nline two`,
		`{\an8}top`,
		`{\fad(200,200)}fading`,
		`{\clip(0,0,100,100)}clipped`,
		`{\1c&H00FF00&\3c&HFF0000&}colored`,
		`{\bord3\shad2}outlined`,
		`{`, // unterminated tag block
		`{\b}`,
		`{\move(}`,
		"\x00\x01\x02",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	r, err := NewRenderer(Config{FrameWidth: 640, FrameHeight: 360, StorageWidth: 640, StorageHeight: 360})
	if err != nil {
		f.Fatalf("NewRenderer: %v", err)
	}
	defer r.Done()

	f.Fuzz(func(t *testing.T, text string) {
		track := &Track{
			PlayResX: 640,
			PlayResY: 360,
			Styles:   []Style{model.DefaultStyle()},
			Events: []Event{
				{StyleIndex: 0, Text: text, Duration: 5_000_000_000},
			},
		}
		// RenderFrame must never panic, and a malformed event must degrade
		// to "skipped" (§7) rather than fail the whole frame.
		if _, _, err := r.RenderFrame(track, 0); err != nil {
			t.Fatalf("RenderFrame returned an error for a single malformed event: %v", err)
		}
	})
}
