package sim

import (
	"time"

	"github.com/flytrace/deconflict/internal/trajectory"
	"github.com/flytrace/deconflict/pkg/core"
)

// DronePosition is one drone's state within a frame.
type DronePosition struct {
	ID        string
	Color     string
	IsPrimary bool
	Position  core.Position3D
	Active    bool // simTime falls within the drone's waypoint span
	Distance  float64
	TooClose  bool // within the safety distance of the primary drone
}

// Frame returns every drone's interpolated position at simTime. The primary
// drone comes first. Simulated drones carry their distance to the primary;
// TooClose uses the same strict-less-than rule as the conflict evaluator.
func Frame(m *core.Mission, simTime time.Time, safetyDistance float64) []DronePosition {
	if m == nil {
		return nil
	}

	frame := make([]DronePosition, 0, m.DroneCount())

	var primaryPos core.Position3D
	hasPrimary := m.Primary != nil && m.Primary.Len() > 0
	if hasPrimary {
		primaryPos = trajectory.PositionAt(m.Primary, simTime)
		frame = append(frame, DronePosition{
			ID:        m.Primary.ID,
			Color:     m.Primary.Color,
			IsPrimary: true,
			Position:  primaryPos,
			Active:    active(m.Primary, simTime),
		})
	}

	for _, t := range m.Simulated {
		if t == nil || t.Len() == 0 {
			continue
		}
		pos := trajectory.PositionAt(t, simTime)
		dp := DronePosition{
			ID:       t.ID,
			Color:    t.Color,
			Position: pos,
			Active:   active(t, simTime),
		}
		if hasPrimary {
			dp.Distance = pos.DistanceTo(primaryPos)
			dp.TooClose = dp.Distance < safetyDistance
		}
		frame = append(frame, dp)
	}

	return frame
}

// Span returns the playback range of a mission: the earliest declared
// window start to the latest declared window end. Trajectories without a
// declared window contribute their waypoint span instead.
func Span(m *core.Mission) (time.Time, time.Time) {
	var start, end time.Time
	for _, t := range m.Trajectories() {
		if t == nil || t.Len() == 0 {
			continue
		}
		s, e := t.Window.Start, t.Window.End
		if s.IsZero() || e.IsZero() {
			s, e = t.FirstTime(), t.LastTime()
		}
		if start.IsZero() || s.Before(start) {
			start = s
		}
		if end.IsZero() || e.After(end) {
			end = e
		}
	}
	return start, end
}

func active(t *core.Trajectory, at time.Time) bool {
	return !at.Before(t.FirstTime()) && !at.After(t.LastTime())
}
