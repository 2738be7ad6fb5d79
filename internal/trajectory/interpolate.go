// internal/trajectory/interpolate.go
package trajectory

import (
	"time"

	"github.com/flytrace/deconflict/pkg/core"
)

// PositionAt returns the drone's position at time t, assuming
// constant-velocity flight between consecutive waypoints.
//
// Before the first waypoint and after the last the position clamps to
// the nearest endpoint: a drone is treated as stationary before
// takeoff and after landing, never extrapolated. On a zero-duration
// segment the whole segment is an instantaneous jump at its timestamp,
// so querying that instant yields the post-jump waypoint.
func PositionAt(t *core.Trajectory, at time.Time) core.Position3D {
	wps := t.Waypoints

	// Index of the last waypoint at or before the query time.
	before := -1
	for i := range wps {
		if !wps[i].Timestamp.After(at) {
			before = i
		} else {
			break
		}
	}

	if before < 0 {
		return wps[0].Position3D
	}
	if before == len(wps)-1 {
		return wps[before].Position3D
	}

	w0 := wps[before]
	w1 := wps[before+1]
	seg := w1.Timestamp.Sub(w0.Timestamp)
	if seg <= 0 {
		return w0.Position3D
	}
	f := float64(at.Sub(w0.Timestamp)) / float64(seg)
	return w0.Position3D.Lerp(w1.Position3D, f)
}
