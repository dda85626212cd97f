// Package viewer holds per-viewer model view state: which model is shown and
// the user's rotation and zoom. Geometry stats are supplied by the renderer.
package viewer

import (
	"math"
	"sync"
)

// Scale bounds.
const (
	MinScale = 0.1
	MaxScale = 3.0
)

// Stats describe the loaded geometry.
type Stats struct {
	Vertices  int
	Triangles int
	Materials int
	// Extents are the bounding box sizes along x, y and z.
	Extents [3]float64
}

// Snapshot is a copy of the view state.
type Snapshot struct {
	Model    string
	Rotation float64
	Scale    float64
	Stats    Stats
}

// State is safe for concurrent use.
type State struct {
	mu       sync.Mutex
	model    string
	rotation float64
	scale    float64
	stats    Stats
}

// New returns an empty view with the identity transform.
func New() *State { return &State{scale: 1} }

// Load shows a new model and resets the transform.
func (s *State) Load(ref string, st Stats) {
	s.mu.Lock()
	s.model, s.stats = ref, st
	s.rotation, s.scale = 0, 1
	s.mu.Unlock()
}

// Rotate adds delta radians.
func (s *State) Rotate(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation = WrapAngle(s.rotation + delta)
	return s.rotation
}

// SetRotation sets the absolute angle in radians.
func (s *State) SetRotation(r float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation = WrapAngle(r)
	return s.rotation
}

// Scale multiplies the current scale by factor.
func (s *State) Scale(factor float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = ClampScale(s.scale * factor)
	return s.scale
}

// SetScale sets the absolute scale.
func (s *State) SetScale(v float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = ClampScale(v)
	return s.scale
}

// Reset restores rotation 0 and scale 1, keeping the model.
func (s *State) Reset() {
	s.mu.Lock()
	s.rotation, s.scale = 0, 1
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Model: s.model, Rotation: s.rotation, Scale: s.scale, Stats: s.stats}
}

// WrapAngle maps r into [0, 2π). Non-finite input yields 0.
func WrapAngle(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	r = math.Mod(r, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	// -tiny + 2π rounds to 2π
	if r >= 2*math.Pi {
		r = 0
	}
	return r
}

// ClampScale bounds v to [MinScale, MaxScale]. NaN yields 1.
func ClampScale(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 1
	case v < MinScale:
		return MinScale
	case v > MaxScale:
		return MaxScale
	}
	return v
}
