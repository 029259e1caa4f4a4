// Package storyboard reads and writes the project descriptor: the scenes,
// transitions and overlay elements of one card video. The yaml shape
// round-trips losslessly between the content provider and the engine.
package storyboard

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/cardrender/internal/overlay"
	"github.com/ivlev/cardrender/internal/refframe"
)

// Storyboard is a complete card video description.
type Storyboard struct {
	Version  string              `yaml:"version"`
	Design   refframe.Descriptor `yaml:"design"`
	Scenes   []Scene             `yaml:"scenes"`
	Overlays []overlay.Element   `yaml:"overlays,omitempty"`
}

// Scene is one base visual shown for Duration seconds. Transition, when
// present, blends this scene into the next one over the scene's final
// seconds.
type Scene struct {
	Input      string      `yaml:"input"`
	Duration   float64     `yaml:"duration"`
	Transition *Transition `yaml:"transition,omitempty"`
}

// Transition names the mask asset driving the cross-fade into the next
// scene.
type Transition struct {
	Mask     string  `yaml:"mask"`
	Duration float64 `yaml:"duration"`
}

// Read loads a storyboard from a YAML file.
func Read(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sb Storyboard
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("parse storyboard %s: %w", path, err)
	}
	if err := sb.Validate(); err != nil {
		return nil, fmt.Errorf("storyboard %s: %w", path, err)
	}
	return &sb, nil
}

// Write saves a storyboard to a YAML file.
func Write(sb *Storyboard, path string) error {
	data, err := yaml.Marshal(sb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the invariants the engine relies on.
func (sb *Storyboard) Validate() error {
	if len(sb.Scenes) == 0 {
		return fmt.Errorf("no scenes")
	}
	for i, sc := range sb.Scenes {
		if sc.Duration <= 0 {
			return fmt.Errorf("scene %d: duration must be positive", i)
		}
		if sc.Transition != nil && sc.Transition.Duration > sc.Duration {
			return fmt.Errorf("scene %d: transition longer than scene", i)
		}
	}
	for i, e := range sb.Overlays {
		if e.Window.Start > e.Window.End {
			return fmt.Errorf("overlay %d (%s): window start after end", i, e.ID)
		}
	}
	return nil
}

// TotalDuration is the sum of scene durations. Transitions run inside the
// outgoing scene's time, so they do not extend the total.
func (sb *Storyboard) TotalDuration() float64 {
	total := 0.0
	for _, sc := range sb.Scenes {
		total += sc.Duration
	}
	return total
}

// ScaleDurations rescales scene durations so the total matches target
// seconds (e.g. to fit a soundtrack), then aligns each duration to whole
// frames at the given fps for frame-rate stability. Transitions are scaled
// with their scenes and clamped to never exceed them.
func (sb *Storyboard) ScaleDurations(target float64, fps int) {
	current := sb.TotalDuration()
	if target <= 0 || current <= 0 || fps <= 0 {
		return
	}
	scale := target / current
	for i := range sb.Scenes {
		sc := &sb.Scenes[i]
		sc.Duration = math.Round(sc.Duration*scale*float64(fps)) / float64(fps)
		if tr := sc.Transition; tr != nil {
			tr.Duration = math.Round(tr.Duration*scale*float64(fps)) / float64(fps)
			if tr.Duration > sc.Duration {
				tr.Duration = sc.Duration
			}
		}
	}
}
