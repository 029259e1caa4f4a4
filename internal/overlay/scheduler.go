package overlay

import (
	"sort"

	"github.com/ivlev/cardrender/internal/anim"
)

// Epsilon widens each visibility window to absorb clock-sampling jitter:
// an element is visible for t in [start-Epsilon, end+Epsilon].
const Epsilon = 0.2

// Phase is where inside its window an element currently is.
type Phase int

const (
	PhaseSteady Phase = iota
	PhaseEntrance
	PhaseExit
)

// Placement is one visible element with its evaluated transform for a tick.
// Progress is the eased phase progress; for the typewriter kind it doubles
// as the fraction of the content to draw.
type Placement struct {
	Element   *Element
	Phase     Phase
	Progress  float64
	Transform anim.Transform
}

// Schedule returns the elements visible at clock time t, in paint order:
// ascending layer index, ties broken by original list order so later layers
// draw on top deterministically.
func Schedule(t float64, elements []Element) []Placement {
	var visible []*Element
	for i := range elements {
		e := &elements[i]
		if !e.Active {
			continue
		}
		if t < e.Window.Start-Epsilon || t > e.Window.End+Epsilon {
			continue
		}
		visible = append(visible, e)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Layer < visible[j].Layer
	})

	placements := make([]Placement, 0, len(visible))
	for _, e := range visible {
		phase, raw := phaseAt(e, t)
		var pl Placement
		pl.Element = e
		pl.Phase = phase
		switch phase {
		case PhaseEntrance:
			pl.Progress = anim.Ease(e.Entrance.Easing, raw)
			pl.Transform = anim.Evaluate(e.Entrance.Kind, pl.Progress)
		case PhaseExit:
			pl.Progress = anim.Ease(e.Exit.Easing, raw)
			pl.Transform = anim.Evaluate(e.Exit.Kind, pl.Progress)
		default:
			pl.Progress = 1
			pl.Transform = anim.Identity()
		}
		placements = append(placements, pl)
	}
	return placements
}

// phaseAt computes the phase and raw (un-eased) progress for an element at
// time t. When entrance and exit windows overlap on a short-lived element,
// the exit takes precedence once t passes the window midpoint.
func phaseAt(e *Element, t float64) (Phase, float64) {
	enterDur := e.Entrance.Duration
	exitDur := e.Exit.Duration

	inEntrance := enterDur > 0 && t < e.Window.Start+enterDur
	inExit := exitDur > 0 && t > e.Window.End-exitDur

	if inEntrance && inExit {
		mid := (e.Window.Start + e.Window.End) / 2
		if t >= mid {
			inEntrance = false
		} else {
			inExit = false
		}
	}

	switch {
	case inEntrance:
		return PhaseEntrance, clamp01((t - e.Window.Start) / enterDur)
	case inExit:
		return PhaseExit, clamp01(1 - (t-(e.Window.End-exitDur))/exitDur)
	default:
		return PhaseSteady, 1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
