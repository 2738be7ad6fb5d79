// Package trajectory validates drone trajectories and computes
// continuous positions along them. Construction fails fast: by the
// time a trajectory reaches a conflict check it is already known to be
// well-formed, and every operation here is total over validated input.
package trajectory

import (
	"errors"
	"fmt"
	"time"

	"github.com/flytrace/deconflict/pkg/core"
)

// ErrInvalid is returned (wrapped) when a trajectory is malformed:
// empty waypoint list, timestamps going backwards, or non-finite
// coordinates.
var ErrInvalid = errors.New("invalid trajectory")

// New builds a validated trajectory. The waypoint slice is copied so
// later edits by the caller cannot reach into the returned value.
func New(id, color string, window core.TimeWindow, waypoints []core.Waypoint) (*core.Trajectory, error) {
	t := &core.Trajectory{
		ID:        id,
		Color:     color,
		Window:    window,
		Waypoints: make([]core.Waypoint, len(waypoints)),
	}
	copy(t.Waypoints, waypoints)
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the trajectory invariants. Equal consecutive
// timestamps are accepted: they form a zero-duration segment that the
// interpolator treats as an instantaneous jump.
func Validate(t *core.Trajectory) error {
	if len(t.Waypoints) == 0 {
		return fmt.Errorf("%w: trajectory %q has no waypoints", ErrInvalid, t.ID)
	}
	for i, wp := range t.Waypoints {
		if !wp.Position3D.IsFinite() {
			return fmt.Errorf("%w: trajectory %q waypoint %d has non-finite coordinates", ErrInvalid, t.ID, i)
		}
		if i > 0 && wp.Timestamp.Before(t.Waypoints[i-1].Timestamp) {
			return fmt.Errorf("%w: trajectory %q waypoint %d timestamp %s precedes waypoint %d",
				ErrInvalid, t.ID, i, wp.Timestamp.Format(time.RFC3339), i-1)
		}
	}
	return nil
}
