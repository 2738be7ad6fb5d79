// Package gormstorage implements the storage.Backend interface on top of a
// GORM database handle with internal queues and a background DB writer
// goroutine. It is database-agnostic; the sqlite wrapper and the factory
// decide which dialector backs it.
package gormstorage

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/flytrace/deconflict/internal/cache"
	"github.com/flytrace/deconflict/internal/deconflict"
	"github.com/flytrace/deconflict/internal/model"
	"github.com/flytrace/deconflict/internal/queue"
	"github.com/flytrace/deconflict/pkg/core"
)

// DefaultFlushInterval is how often the writer goroutine drains the queues.
const DefaultFlushInterval = 1 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        zerolog.Logger
	FlushInterval time.Duration
}

// pendingReport pairs a report row with its detail rows awaiting insertion.
type pendingReport struct {
	Report  model.ConflictReport
	Records []core.ConflictRecord
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps         Dependencies
	reports      *queue.Queue[pendingReport]
	trajectories *cache.TrajectoryCache
	missionID    atomic.Uint64
	stopChan     chan struct{}
	dbReady      bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:         deps,
		reports:      queue.New[pendingReport](),
		trajectories: cache.NewTrajectoryCache(),
	}
}

// Init migrates the schema and starts the background writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database handle")
	}

	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	b.dbReady = true
	b.stopChan = make(chan struct{})
	go b.writerLoop()

	return nil
}

// Close stops the writer and flushes any remaining rows.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.stopChan = nil
	}
	return b.flush()
}

// StartMission persists the mission and its trajectories, keeping the
// mission row ID for subsequent report writes.
func (b *Backend) StartMission(mission *core.Mission) error {
	if !b.dbReady {
		return fmt.Errorf("backend not initialized")
	}

	row := model.Mission{
		Name:        mission.Name,
		Description: mission.Description,
		CreatedTime: mission.Created,
		DroneCount:  mission.DroneCount(),
	}
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create mission row: %w", err)
	}
	b.missionID.Store(uint64(row.ID))

	rows := make([]model.Trajectory, 0, mission.DroneCount())
	if mission.Primary != nil {
		tr, err := model.TrajectoryFromCore(row.ID, mission.Primary, true)
		if err != nil {
			return err
		}
		rows = append(rows, tr)
	}
	for _, t := range mission.Simulated {
		tr, err := model.TrajectoryFromCore(row.ID, t, false)
		if err != nil {
			return err
		}
		rows = append(rows, tr)
	}

	if len(rows) > 0 {
		if err := b.deps.DB.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create trajectory rows: %w", err)
		}
	}

	b.trajectories.Reset()
	for _, tr := range rows {
		b.trajectories.Add(tr)
	}

	b.deps.Logger.Info().Uint("missionId", row.ID).Int("drones", len(rows)).Msg("Mission persisted")
	return nil
}

// RecordReport queues a check outcome for batch insertion.
func (b *Backend) RecordReport(report *core.ConflictReport, opts deconflict.Options) error {
	missionID := uint(b.missionID.Load())
	if missionID == 0 {
		return fmt.Errorf("no mission started")
	}

	b.reports.Push(pendingReport{
		Report: model.ConflictReport{
			MissionID:      missionID,
			Status:         string(report.Status),
			SafetyDistance: opts.SafetyDistance,
			SamplesPerPair: opts.SamplesPerPair,
			RecordCount:    len(report.Conflicts),
		},
		Records: report.Conflicts,
	})
	return nil
}

// EndMission flushes all queued rows.
func (b *Backend) EndMission() error {
	return b.flush()
}

// QueueLen returns the number of reports waiting for the writer.
func (b *Backend) QueueLen() int {
	return b.reports.Len()
}

func (b *Backend) writerLoop() {
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.flush(); err != nil {
				b.deps.Logger.Error().Err(err).Msg("Failed to flush report queue")
			}
		}
	}
}

// flush drains the report queue into the database. Each report row is
// created first so its ID can key the detail rows.
func (b *Backend) flush() error {
	if !b.dbReady {
		return nil
	}

	for _, pending := range b.reports.GetAndEmpty() {
		if err := b.deps.DB.Create(&pending.Report).Error; err != nil {
			return fmt.Errorf("failed to create report row: %w", err)
		}

		if len(pending.Records) == 0 {
			continue
		}

		rows := make([]model.ConflictRecord, 0, len(pending.Records))
		for _, r := range pending.Records {
			row := model.RecordFromCore(pending.Report.ID, r)
			row.PrimaryTrajectoryID = b.trajectories.GetRowID(r.PrimaryDrone)
			row.ConflictingTrajectoryID = b.trajectories.GetRowID(r.ConflictingDrone)
			rows = append(rows, row)
		}
		if err := b.deps.DB.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create record rows: %w", err)
		}
	}
	return nil
}
