package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flytrace/deconflict/internal/database"
	"github.com/flytrace/deconflict/internal/deconflict"
	"github.com/flytrace/deconflict/internal/model"
	"github.com/flytrace/deconflict/pkg/core"
)

var missionStart = time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC)

func wp(x, y, z float64, at time.Time) core.Waypoint {
	return core.Waypoint{
		Position3D: core.Position3D{X: x, Y: y, Z: z},
		Timestamp:  at,
	}
}

func testMission() *core.Mission {
	return &core.Mission{
		Name:    "Test Mission",
		Created: missionStart,
		Primary: &core.Trajectory{
			ID: "PRIMARY",
			Waypoints: []core.Waypoint{
				wp(0, 0, 10, missionStart),
				wp(100, 0, 10, missionStart.Add(time.Minute)),
			},
			Window: core.TimeWindow{Start: missionStart, End: missionStart.Add(time.Minute)},
		},
		Simulated: []*core.Trajectory{
			{
				ID: "DRONE_1",
				Waypoints: []core.Waypoint{
					wp(50, 5, 10, missionStart),
				},
				Window: core.TimeWindow{Start: missionStart, End: missionStart.Add(time.Minute)},
			},
		},
	}
}

// newTestBackend creates a Backend over a throwaway file-based SQLite DB.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	db, err := database.GetSqliteDBStandalone(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	b := New(Dependencies{
		DB:            db,
		Logger:        zerolog.Nop(),
		FlushInterval: time.Hour, // flush manually in tests
	})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestStartMissionPersistsRows(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMission(testMission()))

	var missions []model.Mission
	require.NoError(t, b.deps.DB.Find(&missions).Error)
	require.Len(t, missions, 1)
	assert.Equal(t, "Test Mission", missions[0].Name)
	assert.Equal(t, 2, missions[0].DroneCount)

	var trajectories []model.Trajectory
	require.NoError(t, b.deps.DB.Order("id").Find(&trajectories).Error)
	require.Len(t, trajectories, 2)
	assert.Equal(t, "PRIMARY", trajectories[0].DroneID)
	assert.True(t, trajectories[0].IsPrimary)
	assert.Equal(t, "DRONE_1", trajectories[1].DroneID)
	assert.False(t, trajectories[1].IsPrimary)
	assert.Equal(t, missions[0].ID, trajectories[0].MissionID)
}

func TestRecordReportFlushes(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMission(testMission()))

	report := &core.ConflictReport{
		Status: core.StatusConflict,
		Conflicts: []core.ConflictRecord{
			{
				PrimaryDrone:     "PRIMARY",
				ConflictingDrone: "DRONE_1",
				Time:             missionStart.Add(30 * time.Second),
				Distance:         1.0,
			},
		},
	}
	require.NoError(t, b.RecordReport(report, deconflict.DefaultOptions()))
	assert.Equal(t, 1, b.QueueLen())

	require.NoError(t, b.EndMission())
	assert.Equal(t, 0, b.QueueLen())

	var reports []model.ConflictReport
	require.NoError(t, b.deps.DB.Find(&reports).Error)
	require.Len(t, reports, 1)
	assert.Equal(t, "conflict", reports[0].Status)
	assert.Equal(t, 1, reports[0].RecordCount)

	var records []model.ConflictRecord
	require.NoError(t, b.deps.DB.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, reports[0].ID, records[0].ReportID)
	assert.Equal(t, "DRONE_1", records[0].ConflictingDrone)

	// Drone IDs resolve to their trajectory rows through the cache.
	var trajectories []model.Trajectory
	require.NoError(t, b.deps.DB.Order("id").Find(&trajectories).Error)
	require.Len(t, trajectories, 2)
	assert.Equal(t, trajectories[0].ID, records[0].PrimaryTrajectoryID)
	assert.Equal(t, trajectories[1].ID, records[0].ConflictingTrajectoryID)
}

func TestRecordReportWithoutMission(t *testing.T) {
	b := newTestBackend(t)
	err := b.RecordReport(&core.ConflictReport{Status: core.StatusClear}, deconflict.DefaultOptions())
	assert.Error(t, err)
}

func TestInitWithoutDB(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})
	assert.Error(t, b.Init())
}
