// pkg/core/trajectory.go
package core

import "time"

// Waypoint is a timestamped 3D position a drone must pass through.
type Waypoint struct {
	Position3D
	Timestamp time.Time `json:"timestamp"`
}

// TimeWindow is the declared flight window of a trajectory. It is a
// persistence and playback concern; interpolation works off the
// waypoint timestamps themselves.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length. Negative if End precedes Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Trajectory is an ordered, time-bounded sequence of waypoints for one
// drone. Color is a rendering concern carried through persistence
// untouched by the engine.
type Trajectory struct {
	ID        string     `json:"id"`
	Color     string     `json:"color,omitempty"`
	Waypoints []Waypoint `json:"waypoints"`
	Window    TimeWindow `json:"time_window"`
}

// Len returns the number of waypoints.
func (t *Trajectory) Len() int {
	return len(t.Waypoints)
}

// FirstTime returns the timestamp of the first waypoint.
// Zero time if the trajectory is empty.
func (t *Trajectory) FirstTime() time.Time {
	if len(t.Waypoints) == 0 {
		return time.Time{}
	}
	return t.Waypoints[0].Timestamp
}

// LastTime returns the timestamp of the last waypoint.
// Zero time if the trajectory is empty.
func (t *Trajectory) LastTime() time.Time {
	if len(t.Waypoints) == 0 {
		return time.Time{}
	}
	return t.Waypoints[len(t.Waypoints)-1].Timestamp
}

// Clone returns a deep copy. Checks operate on snapshots so that an
// editor mutating the primary trajectory cannot change results
// mid-computation.
func (t *Trajectory) Clone() *Trajectory {
	cp := *t
	cp.Waypoints = make([]Waypoint, len(t.Waypoints))
	copy(cp.Waypoints, t.Waypoints)
	return &cp
}
