package system

import (
	"image"
	"testing"
)

func TestImagePoolReuse(t *testing.T) {
	rect := image.Rect(0, 0, 64, 36)

	img := GetImage(rect)
	if img.Bounds() != rect {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), rect)
	}
	img.Pix[0] = 0xff
	PutImage(img)

	// A fresh Get for the same rect must come back cleared even when the
	// pool hands the dirty buffer straight back.
	again := GetImage(rect)
	if again.Bounds() != rect {
		t.Fatalf("bounds = %v, want %v", again.Bounds(), rect)
	}
	for i, v := range again.Pix {
		if v != 0 {
			t.Fatalf("pix[%d] = %d, want cleared buffer", i, v)
		}
	}
	PutImage(again)
}

func TestImagePoolDistinctSizes(t *testing.T) {
	a := GetImage(image.Rect(0, 0, 10, 10))
	b := GetImage(image.Rect(0, 0, 20, 20))
	if a.Bounds() == b.Bounds() {
		t.Fatal("pool mixed buffers of different sizes")
	}
	PutImage(a)
	PutImage(b)
}

func TestRenderWorkersPositive(t *testing.T) {
	if n := RenderWorkers(1920, 1080); n < 1 {
		t.Errorf("RenderWorkers = %d, want >= 1", n)
	}
	if n := RenderWorkers(0, 0); n < 1 {
		t.Errorf("RenderWorkers with zero frame = %d, want >= 1", n)
	}
}
