// internal/deconflict/cluster.go
package deconflict

import (
	"time"

	"github.com/flytrace/deconflict/pkg/core"
)

// Default clustering thresholds: records within two minutes or fifty
// metres of an already-reported record belong to the same conflict
// zone.
const (
	DefaultClusterWindow = 2 * time.Minute
	DefaultClusterRadius = 50.0
)

// Cluster collapses per-sample records into distinct conflict zones.
// A record joins an existing zone when it is within window of that
// zone's first record OR within radius of its primary location; the
// first record of each zone is kept. The evaluator itself never
// deduplicates, so callers wanting one incident per close-pass apply
// this afterwards.
//
// Records are expected in check output order (time ascending). The
// input slice is not modified.
func Cluster(records []core.ConflictRecord, window time.Duration, radius float64) []core.ConflictRecord {
	if len(records) == 0 {
		return nil
	}

	var zones []core.ConflictRecord
	for _, rec := range records {
		grouped := false
		for _, zone := range zones {
			if rec.ConflictingDrone != zone.ConflictingDrone || rec.PrimaryDrone != zone.PrimaryDrone {
				continue
			}
			dt := rec.Time.Sub(zone.Time)
			if dt < 0 {
				dt = -dt
			}
			if dt <= window || rec.PrimaryLocation.DistanceTo(zone.PrimaryLocation) <= radius {
				grouped = true
				break
			}
		}
		if !grouped {
			zones = append(zones, rec)
		}
	}
	return zones
}
