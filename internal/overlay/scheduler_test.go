package overlay

import (
	"math"
	"testing"

	"github.com/ivlev/cardrender/internal/anim"
)

func textElement(id string, start, end float64, layer int) Element {
	return Element{
		ID:      id,
		Content: id,
		Styling: Styling{FontSize: 48, Color: "#ffffff"},
		Window:  Window{Start: start, End: end},
		Layer:   layer,
		Active:  true,
	}
}

func TestVisibilityWindowTolerance(t *testing.T) {
	elements := []Element{textElement("a", 2.0, 5.0, 0)}

	visibleAt := []float64{1.81, 2.0, 3.5, 5.0, 5.19}
	for _, ts := range visibleAt {
		if got := Schedule(ts, elements); len(got) != 1 {
			t.Errorf("t=%v: expected visible, got %d placements", ts, len(got))
		}
	}

	hiddenAt := []float64{1.79, 5.21, 0, 100}
	for _, ts := range hiddenAt {
		if got := Schedule(ts, elements); len(got) != 0 {
			t.Errorf("t=%v: expected hidden, got %d placements", ts, len(got))
		}
	}
}

func TestInactiveExcluded(t *testing.T) {
	e := textElement("a", 0, 10, 0)
	e.Active = false
	if got := Schedule(5, []Element{e}); len(got) != 0 {
		t.Errorf("inactive element scheduled: %d placements", len(got))
	}
}

func TestPaintOrderStable(t *testing.T) {
	elements := []Element{
		textElement("back-first", 0, 10, 1),
		textElement("front", 0, 10, 5),
		textElement("back-second", 0, 10, 1),
		textElement("bottom", 0, 10, 0),
	}
	got := Schedule(5, elements)
	wantOrder := []string{"bottom", "back-first", "back-second", "front"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d placements, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].Element.ID != want {
			t.Errorf("paint order[%d] = %s, want %s", i, got[i].Element.ID, want)
		}
	}
}

func TestEntranceExitPhases(t *testing.T) {
	e := textElement("a", 2, 8, 0)
	e.Entrance = Animation{Kind: anim.Fade, Duration: 1}
	e.Exit = Animation{Kind: anim.Fade, Duration: 1}
	elements := []Element{e}

	cases := []struct {
		t        float64
		phase    Phase
		progress float64
	}{
		{2.0, PhaseEntrance, 0},
		{2.5, PhaseEntrance, 0.5},
		{3.0, PhaseSteady, 1},
		{5.0, PhaseSteady, 1},
		{7.0, PhaseSteady, 1},
		{7.5, PhaseExit, 0.5},
		{8.0, PhaseExit, 0},
	}
	for _, tc := range cases {
		got := Schedule(tc.t, elements)
		if len(got) != 1 {
			t.Fatalf("t=%v: got %d placements", tc.t, len(got))
		}
		pl := got[0]
		if pl.Phase != tc.phase {
			t.Errorf("t=%v: phase %v, want %v", tc.t, pl.Phase, tc.phase)
		}
		if math.Abs(pl.Progress-tc.progress) > 1e-9 {
			t.Errorf("t=%v: progress %v, want %v", tc.t, pl.Progress, tc.progress)
		}
		if math.Abs(pl.Transform.Opacity-tc.progress) > 1e-9 {
			t.Errorf("t=%v: opacity %v, want %v", tc.t, pl.Transform.Opacity, tc.progress)
		}
	}
}

func TestOverlapExitPrecedence(t *testing.T) {
	// A one-second element with 0.8s entrance and exit: both windows cover
	// most of the lifetime, so the midpoint decides the phase.
	e := textElement("a", 2, 3, 0)
	e.Entrance = Animation{Kind: anim.Fade, Duration: 0.8}
	e.Exit = Animation{Kind: anim.Fade, Duration: 0.8}
	elements := []Element{e}

	before := Schedule(2.4, elements)
	if len(before) != 1 || before[0].Phase != PhaseEntrance {
		t.Fatalf("t=2.4: want entrance phase, got %+v", before)
	}
	after := Schedule(2.6, elements)
	if len(after) != 1 || after[0].Phase != PhaseExit {
		t.Fatalf("t=2.6: want exit phase, got %+v", after)
	}
}

func TestFadeEnvelopeEndToEnd(t *testing.T) {
	// 10-second clip, one overlay [2,8] with 1s fade in/out: transparent
	// before 2, opaque in [3,7], transparent again after the window closes.
	e := textElement("a", 2, 8, 0)
	e.Entrance = Animation{Kind: anim.Fade, Duration: 1}
	e.Exit = Animation{Kind: anim.Fade, Duration: 1}
	elements := []Element{e}

	opacityAt := func(ts float64) float64 {
		pls := Schedule(ts, elements)
		if len(pls) == 0 {
			return 0
		}
		return pls[0].Transform.Opacity
	}

	if op := opacityAt(1.0); op != 0 {
		t.Errorf("t=1.0: opacity %v, want 0", op)
	}
	for ts := 3.0; ts <= 7.0; ts += 0.5 {
		if op := opacityAt(ts); op != 1 {
			t.Errorf("t=%v: opacity %v, want 1", ts, op)
		}
	}
	if op := opacityAt(9.0); op != 0 {
		t.Errorf("t=9.0: opacity %v, want 0", op)
	}
}

func TestTypewriterProgressInPlacement(t *testing.T) {
	e := textElement("a", 0, 10, 0)
	e.Entrance = Animation{Kind: anim.Typewriter, Duration: 2}
	got := Schedule(1, []Element{e})
	if len(got) != 1 {
		t.Fatal("element not scheduled")
	}
	if !got[0].Transform.Typewriter {
		t.Error("typewriter discriminant not propagated")
	}
	if math.Abs(got[0].Progress-0.5) > 1e-9 {
		t.Errorf("typewriter progress %v, want 0.5", got[0].Progress)
	}
}
