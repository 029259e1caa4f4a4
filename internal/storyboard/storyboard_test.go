package storyboard

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ivlev/cardrender/internal/anim"
	"github.com/ivlev/cardrender/internal/overlay"
	"github.com/ivlev/cardrender/internal/refframe"
)

func sample() *Storyboard {
	return &Storyboard{
		Version: "1.0",
		Design:  refframe.Descriptor{Resolution: "1920x1080"},
		Scenes: []Scene{
			{Input: "intro.png", Duration: 4},
			{
				Input:      "body.png",
				Duration:   5,
				Transition: &Transition{Mask: "wipe.gif", Duration: 1},
			},
			{Input: "outro.png", Duration: 3},
		},
		Overlays: []overlay.Element{
			{
				ID:       "title",
				Content:  "Nina & Tom",
				Position: overlay.Position{X: 960, Y: 300},
				Styling:  overlay.Styling{FontSize: 96, Color: "#ffffff", Stroke: "#000000"},
				Window:   overlay.Window{Start: 0.5, End: 3.5},
				Entrance: overlay.Animation{Kind: anim.Fade, Duration: 1, Easing: anim.EaseInOut},
				Exit:     overlay.Animation{Kind: anim.SlideUp, Duration: 0.5},
				Layer:    2,
				Active:   true,
				Overrides: map[string]*overlay.Position{
					"9:16": {X: 50, Y: 20, Percent: true},
				},
			},
			{
				ID:       "rsvp",
				Kind:     overlay.KindQR,
				Content:  "https://example.com/rsvp/nina-tom",
				Position: overlay.Position{X: 80, Y: 85, Percent: true},
				Styling:  overlay.Styling{FontSize: 60, Color: "#000000"},
				Window:   overlay.Window{Start: 9, End: 12},
				Layer:    1,
				Active:   true,
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	want := sample()

	if err := Write(want, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Storyboard)
		ok     bool
	}{
		{"valid", func(sb *Storyboard) {}, true},
		{"no scenes", func(sb *Storyboard) { sb.Scenes = nil }, false},
		{"zero duration", func(sb *Storyboard) { sb.Scenes[0].Duration = 0 }, false},
		{"transition too long", func(sb *Storyboard) {
			sb.Scenes[1].Transition.Duration = 10
		}, false},
		{"inverted window", func(sb *Storyboard) {
			sb.Overlays[0].Window = overlay.Window{Start: 5, End: 2}
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sb := sample()
			tc.mutate(sb)
			err := sb.Validate()
			if (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, ok=%v", err, tc.ok)
			}
		})
	}
}

func TestScaleDurations(t *testing.T) {
	sb := sample()
	const fps = 30
	sb.ScaleDurations(24, fps)

	total := sb.TotalDuration()
	// Frame alignment may move each scene by up to half a frame.
	if math.Abs(total-24) > float64(len(sb.Scenes))/(2*fps)+1e-9 {
		t.Errorf("total after scaling = %v, want ~24", total)
	}
	for i, sc := range sb.Scenes {
		frames := sc.Duration * fps
		if math.Abs(frames-math.Round(frames)) > 1e-6 {
			t.Errorf("scene %d duration %v not frame aligned", i, sc.Duration)
		}
		if sc.Transition != nil && sc.Transition.Duration > sc.Duration {
			t.Errorf("scene %d transition exceeds scene", i)
		}
	}
}
