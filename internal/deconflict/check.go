// Package deconflict evaluates pairwise separation between drone
// trajectories and aggregates violations into a conflict report. A
// check is a pure function of its inputs: it owns no state between
// invocations, never mutates the trajectories it is given, and returns
// bit-identical reports for identical input.
package deconflict

import (
	"sort"

	"github.com/flytrace/deconflict/internal/trajectory"
	"github.com/flytrace/deconflict/pkg/core"
)

// DefaultSafetyDistance is the minimum separation, in metres, applied
// when the caller does not configure one.
const DefaultSafetyDistance = 2.0

// Options configure one check. They are threaded explicitly rather
// than read from process-wide state so tests can vary them per case.
type Options struct {
	// SafetyDistance is the minimum allowed separation in metres.
	// Separation exactly equal to it is safe; only strictly closer
	// counts as a conflict. Zero means only exact spatial coincidence
	// at a sampled instant conflicts. Negative values are clamped to
	// zero.
	SafetyDistance float64

	// SamplesPerPair is the number of instants checked across each
	// pair's time overlap. Zero or negative selects
	// trajectory.DefaultSamplesPerPair.
	SamplesPerPair int

	// AllPairs extends the check to simulated-vs-simulated pairs. The
	// default checks the primary against each simulated flight only.
	AllPairs bool
}

// DefaultOptions returns the options used by the interactive planner.
func DefaultOptions() Options {
	return Options{
		SafetyDistance: DefaultSafetyDistance,
		SamplesPerPair: trajectory.DefaultSamplesPerPair,
	}
}

// Check runs a deconfliction check of the primary trajectory against
// every simulated flight. All inputs must already be validated via
// trajectory.New or trajectory.Validate.
func Check(primary *core.Trajectory, simulated []*core.Trajectory, opts Options) core.ConflictReport {
	if opts.SafetyDistance < 0 {
		opts.SafetyDistance = 0
	}

	var records []core.ConflictRecord
	for _, sim := range simulated {
		records = append(records, evaluatePair(primary, sim, opts)...)
	}
	if opts.AllPairs {
		for i := 0; i < len(simulated); i++ {
			for j := i + 1; j < len(simulated); j++ {
				records = append(records, evaluatePair(simulated[i], simulated[j], opts)...)
			}
		}
	}

	sortRecords(records)

	status := core.StatusClear
	if len(records) > 0 {
		status = core.StatusConflict
	}
	return core.ConflictReport{Status: status, Conflicts: records}
}

// evaluatePair samples one unordered pair across its time overlap and
// flags every instant where separation falls strictly below the safety
// distance. Disjoint windows are a hard pass filter: no samples, no
// distance math.
func evaluatePair(a, b *core.Trajectory, opts Options) []core.ConflictRecord {
	overlap, ok := trajectory.PairOverlap(a, b)
	if !ok {
		return nil
	}

	var records []core.ConflictRecord
	for _, at := range trajectory.SampleTimes(overlap, opts.SamplesPerPair) {
		posA := trajectory.PositionAt(a, at)
		posB := trajectory.PositionAt(b, at)
		d := posA.DistanceTo(posB)
		if d < opts.SafetyDistance {
			records = append(records, core.ConflictRecord{
				PrimaryDrone:     a.ID,
				ConflictingDrone: b.ID,
				Location:         posB,
				PrimaryLocation:  posA,
				Time:             at,
				Distance:         d,
			})
		}
	}
	return records
}

// sortRecords orders records by time ascending, then by drone pair,
// for deterministic output.
func sortRecords(records []core.ConflictRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Time.Equal(records[j].Time) {
			return records[i].Time.Before(records[j].Time)
		}
		if records[i].PrimaryDrone != records[j].PrimaryDrone {
			return records[i].PrimaryDrone < records[j].PrimaryDrone
		}
		return records[i].ConflictingDrone < records[j].ConflictingDrone
	})
}
