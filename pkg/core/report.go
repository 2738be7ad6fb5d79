// pkg/core/report.go
package core

import "time"

// Status is the overall outcome of a deconfliction check.
type Status string

const (
	StatusClear    Status = "clear"
	StatusConflict Status = "conflict"
)

// ConflictRecord describes one sampled instant at which two drones
// were closer than the safety distance. A sustained close-pass
// produces one record per violating sample; clustering into incidents
// is a separate post-processing step.
type ConflictRecord struct {
	PrimaryDrone     string     `json:"primary_drone,omitempty"`
	ConflictingDrone string     `json:"conflicting_drone"`
	Location         Position3D `json:"location"`
	PrimaryLocation  Position3D `json:"primary_location"`
	Time             time.Time  `json:"time"`
	Distance         float64    `json:"distance"`
}

// ConflictReport is the self-contained result of one check.
type ConflictReport struct {
	Status    Status           `json:"status"`
	Conflicts []ConflictRecord `json:"details"`
}

// Clear reports whether the check found no conflicts.
func (r *ConflictReport) Clear() bool {
	return r.Status == StatusClear
}
