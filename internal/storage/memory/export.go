// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flytrace/deconflict/internal/geo"
	"github.com/flytrace/deconflict/pkg/core"
)

// MissionExport is the root JSON structure
type MissionExport struct {
	MissionName string       `json:"missionName"`
	Description string       `json:"description,omitempty"`
	Created     time.Time    `json:"created"`
	DroneCount  int          `json:"droneCount"`
	Drones      []DroneJSON  `json:"drones"`
	Reports     []ReportJSON `json:"reports"`
}

// DroneJSON represents one drone's planned trajectory
type DroneJSON struct {
	ID          string    `json:"id"`
	Color       string    `json:"color,omitempty"`
	IsPrimary   int       `json:"isPrimary"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	// Positions rows are [x, y, z, timestamp]
	Positions [][]any `json:"positions"`
	// Path is the trajectory as a WKT LINESTRING Z, for GIS tooling
	Path string `json:"path,omitempty"`
}

// ReportJSON represents one deconfliction check outcome
type ReportJSON struct {
	Status         string                `json:"status"`
	SafetyDistance float64               `json:"safetyDistance"`
	SamplesPerPair int                   `json:"samplesPerPair"`
	CheckedAt      time.Time             `json:"checkedAt"`
	Details        []core.ConflictRecord `json:"details"`
}

// exportJSON writes the mission data to a JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	missionName := strings.ReplaceAll(b.mission.Name, " ", "_")
	missionName = strings.ReplaceAll(missionName, ":", "_")
	timestamp := b.mission.Created.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", missionName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", missionName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() MissionExport {
	export := MissionExport{
		MissionName: b.mission.Name,
		Description: b.mission.Description,
		Created:     b.mission.Created,
		DroneCount:  b.mission.DroneCount(),
		Drones:      make([]DroneJSON, 0),
		Reports:     make([]ReportJSON, 0),
	}

	if b.mission.Primary != nil {
		export.Drones = append(export.Drones, droneJSON(b.mission.Primary, true))
	}
	for _, t := range b.mission.Simulated {
		export.Drones = append(export.Drones, droneJSON(t, false))
	}

	for _, entry := range b.reports.GetAndEmpty() {
		details := entry.Report.Conflicts
		if details == nil {
			details = make([]core.ConflictRecord, 0)
		}
		export.Reports = append(export.Reports, ReportJSON{
			Status:         string(entry.Report.Status),
			SafetyDistance: entry.Opts.SafetyDistance,
			SamplesPerPair: entry.Opts.SamplesPerPair,
			CheckedAt:      entry.CheckedAt,
			Details:        details,
		})
	}

	return export
}

func droneJSON(t *core.Trajectory, primary bool) DroneJSON {
	d := DroneJSON{
		ID:          t.ID,
		Color:       t.Color,
		IsPrimary:   boolToInt(primary),
		WindowStart: t.Window.Start,
		WindowEnd:   t.Window.End,
		Positions:   make([][]any, 0, len(t.Waypoints)),
	}
	for _, wp := range t.Waypoints {
		d.Positions = append(d.Positions, []any{
			wp.X, wp.Y, wp.Z, wp.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	if ls, err := geo.PathLineString(t); err == nil {
		d.Path = ls.AsText()
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (b *Backend) writeJSON(path string, export MissionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

func (b *Backend) writeGzipJSON(path string, export MissionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	if err := json.NewEncoder(gz).Encode(export); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}
