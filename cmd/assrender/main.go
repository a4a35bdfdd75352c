// Command assrender renders a single synthetic subtitle event through the
// renderer and either prints its frame-assembly metadata (info) or writes a
// PNG preview of the composited alpha bitmaps (render).
//
// Usage:
//
//	assrender info   [options]   Print frame metadata (image count, bbox, change level)
//	assrender render [options]   Composite the frame and write a PNG preview
//
// This module does not parse ASS/SSA script files (§1 places script
// parsing out of scope); both subcommands build their Track directly from
// flags, exercising the same public Renderer/Track/Config surface a real
// script-parsing caller would drive.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/libsubs/ssarender/ass"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "assrender: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "assrender: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  assrender info   [options]   Print frame metadata
  assrender render [options]   Write a PNG preview of the composited frame

Run "assrender <command> -help" for command-specific options.
`)
}

type sharedFlags struct {
	text       string
	width      int
	height     int
	fontSize   float64
	alignment  int
	timeMs     int64
	durationMs int64
}

func parseShared(fs *flag.FlagSet) *sharedFlags {
	f := &sharedFlags{}
	fs.StringVar(&f.text, "text", "Hello, world!", "event text (ASS tags allowed)")
	fs.IntVar(&f.width, "w", 640, "frame width in pixels")
	fs.IntVar(&f.height, "h", 360, "frame height in pixels")
	fs.Float64Var(&f.fontSize, "size", 32, "font size in script pixels")
	fs.IntVar(&f.alignment, "align", int(ass.AlignBottomCenter), "numpad alignment 1-9")
	fs.Int64Var(&f.timeMs, "t", 0, "render time in milliseconds from event start")
	fs.Int64Var(&f.durationMs, "dur", 5000, "event duration in milliseconds")
	return f
}

func (f *sharedFlags) buildTrack() *ass.Track {
	style := ass.Style{
		Name:         "Default",
		FontFamily:   "sans",
		FontSize:     f.fontSize,
		ScaleX:       1,
		ScaleY:       1,
		PrimaryColor: ass.Color{R: 255, G: 255, B: 255},
		OutlineColor: ass.Color{R: 0, G: 0, B: 0},
		BackColor:    ass.Color{R: 0, G: 0, B: 0, A: 128},
		BorderStyle:  ass.BorderStyleOutline,
		OutlineW:     2,
		Alignment:    ass.Alignment(f.alignment),
		Margins:      ass.Margins{Left: 20, Right: 20, Vertical: 20},
	}
	event := ass.Event{
		Layer:      0,
		Start:      0,
		Duration:   time.Duration(f.durationMs) * time.Millisecond,
		StyleIndex: 0,
		Text:       f.text,
	}
	return &ass.Track{
		PlayResX: float64(f.width),
		PlayResY: float64(f.height),
		Styles:   []ass.Style{style},
		Events:   []ass.Event{event},
	}
}

func (f *sharedFlags) buildRenderer() (*ass.Renderer, error) {
	cfg := ass.Config{
		FrameWidth:    f.width,
		FrameHeight:   f.height,
		StorageWidth:  f.width,
		StorageHeight: f.height,
	}
	return ass.NewRenderer(cfg)
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	f := parseShared(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := f.buildRenderer()
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	defer r.Done()

	list, changeLevel, err := r.RenderFrame(f.buildTrack(), f.timeMs)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	count, minX, minY, maxX, maxY := 0, 0, 0, 0, 0
	first := true
	for im := list.Head; im != nil; im = im.Next {
		count++
		x0, y0 := im.DstX, im.DstY
		x1, y1 := x0+im.Bitmap.Width, y0+im.Bitmap.Height
		if first {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			first = false
			continue
		}
		minX, minY = minInt(minX, x0), minInt(minY, y0)
		maxX, maxY = maxInt(maxX, x1), maxInt(maxY, y1)
	}

	fmt.Printf("Frame:        %d x %d\n", f.width, f.height)
	fmt.Printf("Images:       %d\n", count)
	if count > 0 {
		fmt.Printf("BBox:         (%d,%d)-(%d,%d)\n", minX, minY, maxX, maxY)
	}
	fmt.Printf("Change level: %d\n", changeLevel)
	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := parseShared(fs)
	output := fs.String("o", "out.png", "output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := f.buildRenderer()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer r.Done()

	list, _, err := r.RenderFrame(f.buildTrack(), f.timeMs)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	compositeOnto(canvas, list)

	out, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := png.Encode(out, canvas); err != nil {
		out.Close()
		return fmt.Errorf("render: encoding PNG: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Rendered → %s\n", *output)
	return nil
}

// compositeOnto draws a frame's image chain onto canvas with standard
// "over" alpha blending, in chain order (§5: "Layer asc, ReadOrder asc";
// within an event, shadow then border then fill) — a visualization aid
// only, not a claim this module owns frame blitting.
func compositeOnto(canvas *image.NRGBA, list *ass.ImageList) {
	for im := list.Head; im != nil; im = im.Next {
		r8, g8, b8, a8 := byte(im.Color>>24), byte(im.Color>>16), byte(im.Color>>8), byte(im.Color)
		opacity := 255 - a8 // Color.A is transparency; invert to get opacity
		col := color.NRGBA{R: r8, G: g8, B: b8, A: 255}

		for y := 0; y < im.Bitmap.Height; y++ {
			py := im.DstY + y
			if py < 0 || py >= canvas.Bounds().Dy() {
				continue
			}
			for x := 0; x < im.Bitmap.Width; x++ {
				px := im.DstX + x
				if px < 0 || px >= canvas.Bounds().Dx() {
					continue
				}
				coverage := im.Bitmap.At(x, y)
				a := uint32(coverage) * uint32(opacity) / 255
				if a == 0 {
					continue
				}
				col.A = byte(a)
				blendOver(canvas, px, py, col)
			}
		}
	}
}

func blendOver(canvas *image.NRGBA, x, y int, src color.NRGBA) {
	dst := canvas.NRGBAAt(x, y)
	a := float64(src.A) / 255
	blend := func(s, d uint8) uint8 {
		return uint8(float64(s)*a + float64(d)*(1-a))
	}
	canvas.SetNRGBA(x, y, color.NRGBA{
		R: blend(src.R, dst.R),
		G: blend(src.G, dst.G),
		B: blend(src.B, dst.B),
		A: 255,
	})
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
