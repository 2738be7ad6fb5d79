package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/flytrace/deconflict/pkg/core"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Mission{},
	&Trajectory{},
	&ConflictReport{},
	&ConflictRecord{},
}

// Mission is a planned multi-drone flight session.
type Mission struct {
	gorm.Model
	Name        string    `json:"name" gorm:"size:127"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedTime time.Time `json:"created"`
	DroneCount  int       `json:"droneCount"`
}

func (*Mission) TableName() string {
	return "missions"
}

// Trajectory is one drone's planned path within a mission. Waypoints
// are stored as a JSON document; the engine never queries inside them.
type Trajectory struct {
	gorm.Model
	MissionID   uint           `json:"missionId" gorm:"index:idx_trajectory_mission_id"`
	Mission     Mission        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	DroneID     string         `json:"droneId" gorm:"size:127"`
	Color       string         `json:"color" gorm:"size:31"`
	IsPrimary   bool           `json:"isPrimary"`
	WindowStart time.Time      `json:"windowStart"`
	WindowEnd   time.Time      `json:"windowEnd"`
	Waypoints   datatypes.JSON `json:"waypoints"`
}

func (*Trajectory) TableName() string {
	return "trajectories"
}

// ConflictReport is the stored outcome of one deconfliction check.
type ConflictReport struct {
	gorm.Model
	MissionID      uint    `json:"missionId" gorm:"index:idx_report_mission_id"`
	Mission        Mission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Status         string  `json:"status" gorm:"size:15"`
	SafetyDistance float64 `json:"safetyDistance"`
	SamplesPerPair int     `json:"samplesPerPair"`
	RecordCount    int     `json:"recordCount"`
}

func (*ConflictReport) TableName() string {
	return "conflict_reports"
}

// ConflictRecord is one flagged sample within a report.
type ConflictRecord struct {
	gorm.Model
	ReportID         uint           `json:"reportId" gorm:"index:idx_record_report_id"`
	Report           ConflictReport `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:ReportID;"`
	PrimaryDrone     string         `json:"primaryDrone" gorm:"size:127"`
	ConflictingDrone string         `json:"conflictingDrone" gorm:"size:127"`
	// Trajectory row IDs resolved through the cache at insert time. Zero
	// when the drone was not part of the persisted mission.
	PrimaryTrajectoryID     uint      `json:"primaryTrajectoryId"`
	ConflictingTrajectoryID uint      `json:"conflictingTrajectoryId"`
	Time                    time.Time `json:"time" gorm:"index:idx_record_time"`
	Distance                float64   `json:"distance"`
	PrimaryX                float64   `json:"primaryX"`
	PrimaryY                float64   `json:"primaryY"`
	PrimaryZ                float64   `json:"primaryZ"`
	LocationX               float64   `json:"locationX"`
	LocationY               float64   `json:"locationY"`
	LocationZ               float64   `json:"locationZ"`
}

func (*ConflictRecord) TableName() string {
	return "conflict_records"
}

// TrajectoryFromCore converts an engine trajectory to its database row.
func TrajectoryFromCore(missionID uint, t *core.Trajectory, isPrimary bool) (Trajectory, error) {
	waypoints, err := json.Marshal(t.Waypoints)
	if err != nil {
		return Trajectory{}, err
	}
	return Trajectory{
		MissionID:   missionID,
		DroneID:     t.ID,
		Color:       t.Color,
		IsPrimary:   isPrimary,
		WindowStart: t.Window.Start,
		WindowEnd:   t.Window.End,
		Waypoints:   datatypes.JSON(waypoints),
	}, nil
}

// ToCore converts a stored trajectory back to the engine type.
func (t *Trajectory) ToCore() (*core.Trajectory, error) {
	var waypoints []core.Waypoint
	if err := json.Unmarshal(t.Waypoints, &waypoints); err != nil {
		return nil, err
	}
	return &core.Trajectory{
		ID:        t.DroneID,
		Color:     t.Color,
		Waypoints: waypoints,
		Window:    core.TimeWindow{Start: t.WindowStart, End: t.WindowEnd},
	}, nil
}

// RecordFromCore converts an engine conflict record to its database row.
func RecordFromCore(reportID uint, r core.ConflictRecord) ConflictRecord {
	return ConflictRecord{
		ReportID:         reportID,
		PrimaryDrone:     r.PrimaryDrone,
		ConflictingDrone: r.ConflictingDrone,
		Time:             r.Time,
		Distance:         r.Distance,
		PrimaryX:         r.PrimaryLocation.X,
		PrimaryY:         r.PrimaryLocation.Y,
		PrimaryZ:         r.PrimaryLocation.Z,
		LocationX:        r.Location.X,
		LocationY:        r.Location.Y,
		LocationZ:        r.Location.Z,
	}
}
