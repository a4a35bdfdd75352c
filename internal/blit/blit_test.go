package blit

import "testing"

func TestAllocBitmapZeroed(t *testing.T) {
	e := newScalarEngine()
	b := e.AllocBitmap(5, 3)
	if b.Width != 5 || b.Height != 3 {
		t.Fatalf("got %dx%d, want 5x3", b.Width, b.Height)
	}
	for _, v := range b.Buf {
		if v != 0 {
			t.Fatal("expected zeroed buffer")
		}
	}
}

func TestAddBitmapsSaturates(t *testing.T) {
	e := newScalarEngine()
	dst := e.AllocBitmap(2, 2)
	for i := range dst.Buf {
		dst.Buf[i] = 200
	}
	src := e.AllocBitmap(2, 2)
	for i := range src.Buf {
		src.Buf[i] = 200
	}
	e.AddBitmaps(&dst, src, 0, 0)
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			if v := dst.Buf[y*dst.Stride+x]; v != 255 {
				t.Fatalf("expected saturation to 255, got %d", v)
			}
		}
	}
}

func TestAddBitmapsOffset(t *testing.T) {
	e := newScalarEngine()
	dst := e.AllocBitmap(4, 4)
	src := e.AllocBitmap(2, 2)
	for i := range src.Buf {
		src.Buf[i] = 50
	}
	e.AddBitmaps(&dst, src, 1, 1)
	if dst.At(1, 1) != 50 || dst.At(0, 0) != 0 {
		t.Fatalf("offset composite placed pixels incorrectly")
	}
}

func TestSynthBlurSpreadsEnergy(t *testing.T) {
	e := newScalarEngine()
	b := e.AllocBitmap(9, 9)
	b.Buf[4*b.Stride+4] = 255
	e.SynthBlur(&b, 2.0, 1)
	if b.At(4, 4) == 255 {
		t.Fatal("expected center to lose energy to neighbors after blur")
	}
	if b.At(3, 4) == 0 {
		t.Fatal("expected neighbor to gain energy after blur")
	}
}

func TestActiveEngineSelectedAndOverridable(t *testing.T) {
	orig := Active()
	defer SetActive(orig)

	SetActive(newScalarEngine())
	if Active().Name() != "scalar" {
		t.Fatalf("Name() = %q, want scalar", Active().Name())
	}
}
