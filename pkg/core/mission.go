// pkg/core/mission.go
package core

import "time"

// Mission groups the primary trajectory with the simulated flights it
// is checked against. It is a container: it has no lifecycle of its
// own beyond load and save.
type Mission struct {
	Name        string
	Description string
	Created     time.Time
	Primary     *Trajectory
	Simulated   []*Trajectory
}

// DroneCount returns the number of drones in the mission, primary
// included.
func (m *Mission) DroneCount() int {
	n := len(m.Simulated)
	if m.Primary != nil {
		n++
	}
	return n
}

// Trajectories returns every trajectory in the mission, primary first.
func (m *Mission) Trajectories() []*Trajectory {
	out := make([]*Trajectory, 0, m.DroneCount())
	if m.Primary != nil {
		out = append(out, m.Primary)
	}
	out = append(out, m.Simulated...)
	return out
}

// UploadMetadata describes an exported mission file for upload to a fleet
// management frontend.
type UploadMetadata struct {
	MissionName     string
	DroneCount      int
	MissionDuration float64 // seconds
	Tag             string
}
