package viewport

import (
	"math"
	"testing"
)

func rectsEqual(a, b Rect) bool {
	const eps = 1e-9
	return math.Abs(a.W-b.W) < eps &&
		math.Abs(a.H-b.H) < eps &&
		math.Abs(a.OffsetX-b.OffsetX) < eps &&
		math.Abs(a.OffsetY-b.OffsetY) < eps
}

func TestContain(t *testing.T) {
	cases := []struct {
		name                   string
		containerW, containerH float64
		contentW, contentH     float64
		want                   Rect
	}{
		{"same aspect", 800, 450, 1920, 1080, Rect{W: 800, H: 450}},
		{"letterbox in square", 800, 800, 1920, 1080, Rect{W: 800, H: 450, OffsetY: 175}},
		{"pillarbox in square", 800, 800, 1080, 1920, Rect{W: 450, H: 800, OffsetX: 175}},
		{"portrait content in landscape", 1920, 1080, 720, 1280, Rect{W: 607.5, H: 1080, OffsetX: 656.25}},
		{"identity", 1920, 1080, 1920, 1080, Rect{W: 1920, H: 1080}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Contain(tc.containerW, tc.containerH, tc.contentW, tc.contentH)
			if !rectsEqual(got, tc.want) {
				t.Errorf("Contain(%v,%v,%v,%v) = %+v, want %+v",
					tc.containerW, tc.containerH, tc.contentW, tc.contentH, got, tc.want)
			}
		})
	}
}

func TestContainNeverExceedsContainer(t *testing.T) {
	dims := []float64{1, 128, 450, 800, 1080, 1920, 3840}
	for _, cw := range dims {
		for _, ch := range dims {
			for _, w := range dims {
				for _, h := range dims {
					r := Contain(cw, ch, w, h)
					if r.W > cw+1e-9 || r.H > ch+1e-9 {
						t.Fatalf("rect %+v exceeds container %vx%v", r, cw, ch)
					}
					// Centered on both axes.
					if math.Abs(r.OffsetX-(cw-r.W)/2) > 1e-9 || math.Abs(r.OffsetY-(ch-r.H)/2) > 1e-9 {
						t.Fatalf("rect %+v not centered in %vx%v", r, cw, ch)
					}
				}
			}
		}
	}
}

func TestContainSymmetry(t *testing.T) {
	// Swapping container and content aspect ratios swaps which axis
	// receives the offset (letterbox vs pillarbox).
	letter := Contain(800, 800, 1920, 1080)
	pillar := Contain(800, 800, 1080, 1920)

	if letter.OffsetX != 0 || letter.OffsetY == 0 {
		t.Errorf("wide content should letterbox, got %+v", letter)
	}
	if pillar.OffsetY != 0 || pillar.OffsetX == 0 {
		t.Errorf("tall content should pillarbox, got %+v", pillar)
	}
	if math.Abs(letter.OffsetY-pillar.OffsetX) > 1e-9 {
		t.Errorf("offsets should mirror: %v vs %v", letter.OffsetY, pillar.OffsetX)
	}
}

func TestContainZeroArea(t *testing.T) {
	cases := [][4]float64{
		{0, 450, 1920, 1080},
		{800, 0, 1920, 1080},
		{-1, -1, 1920, 1080},
		{800, 450, 0, 1080},
		{800, 450, 1920, 0},
	}
	for _, c := range cases {
		r := Contain(c[0], c[1], c[2], c[3])
		if !r.IsZero() {
			t.Errorf("Contain(%v) = %+v, want zero rect", c, r)
		}
	}
}
