// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/flytrace/deconflict/internal/config"
	"github.com/flytrace/deconflict/internal/deconflict"
	"github.com/flytrace/deconflict/internal/queue"
	"github.com/flytrace/deconflict/pkg/core"
)

// ReportEntry groups a conflict report with the options it was checked under
type ReportEntry struct {
	Report    core.ConflictReport
	Opts      deconflict.Options
	CheckedAt time.Time
}

// Backend stores mission data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	mission *core.Mission
	reports *queue.Queue[ReportEntry]

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		reports: queue.New[ReportEntry](),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMission begins recording a new mission
func (b *Backend) StartMission(mission *core.Mission) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mission = mission
	b.reports = queue.New[ReportEntry]()

	return nil
}

// RecordReport buffers a check outcome for export
func (b *Backend) RecordReport(report *core.ConflictReport, opts deconflict.Options) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.mission == nil {
		return fmt.Errorf("no mission started")
	}

	b.reports.Push(ReportEntry{
		Report:    *report,
		Opts:      opts,
		CheckedAt: time.Now().UTC(),
	})
	return nil
}

// EndMission finalizes and exports the mission data
func (b *Backend) EndMission() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return fmt.Errorf("no mission started")
	}

	return b.exportJSON()
}

// QueueLen returns the number of reports buffered for export
func (b *Backend) QueueLen() int {
	return b.reports.Len()
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last exported mission for upload
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	meta := core.UploadMetadata{Tag: "deconfliction"}
	if b.mission == nil {
		return meta
	}

	meta.MissionName = b.mission.Name
	meta.DroneCount = b.mission.DroneCount()
	if start, end := missionSpan(b.mission); end.After(start) {
		meta.MissionDuration = end.Sub(start).Seconds()
	}
	return meta
}

// missionSpan returns the earliest window start and latest window end,
// falling back to waypoint spans for trajectories without a window.
func missionSpan(m *core.Mission) (time.Time, time.Time) {
	var start, end time.Time
	for _, t := range m.Trajectories() {
		if t == nil || len(t.Waypoints) == 0 {
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
