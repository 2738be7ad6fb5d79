package deconflict

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/flytrace/deconflict/internal/trajectory"
	"github.com/flytrace/deconflict/pkg/core"
)

var t0 = time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC)

func wp(x, y, z float64, at time.Time) core.Waypoint {
	return core.Waypoint{
		Position3D: core.Position3D{X: x, Y: y, Z: z},
		Timestamp:  at,
	}
}

func mustNew(t *testing.T, id string, wps ...core.Waypoint) *core.Trajectory {
	t.Helper()
	traj, err := trajectory.New(id, "", core.TimeWindow{
		Start: wps[0].Timestamp,
		End:   wps[len(wps)-1].Timestamp,
	}, wps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return traj
}

// straightPrimary flies from (0,0,0) to (10,0,0) over ten seconds.
func straightPrimary(t *testing.T) *core.Trajectory {
	return mustNew(t, "PRIMARY",
		wp(0, 0, 0, t0),
		wp(10, 0, 0, t0.Add(10*time.Second)),
	)
}

func stationary(t *testing.T, id string, x, y, z float64, start, end time.Time) *core.Trajectory {
	return mustNew(t, id, wp(x, y, z, start), wp(x, y, z, end))
}

func TestCheck_CloseStationaryDroneConflicts(t *testing.T) {
	primary := straightPrimary(t)
	sim := stationary(t, "SIM_001", 5, 1, 0, t0, t0.Add(10*time.Second))

	report := Check(primary, []*core.Trajectory{sim}, Options{SafetyDistance: 2.0, SamplesPerPair: 101})

	if report.Status != core.StatusConflict {
		t.Fatalf("expected conflict, got %s", report.Status)
	}
	if len(report.Conflicts) == 0 {
		t.Fatal("expected at least one record")
	}

	// The closest approach is near t0+5s, primary at (5,0,0),
	// separation about one metre.
	mid := t0.Add(5 * time.Second)
	found := false
	for _, rec := range report.Conflicts {
		if rec.ConflictingDrone != "SIM_001" {
			t.Fatalf("unexpected drone %q", rec.ConflictingDrone)
		}
		dt := rec.Time.Sub(mid)
		if dt < 0 {
			dt = -dt
		}
		if dt <= 500*time.Millisecond {
			found = true
			if math.Abs(rec.Distance-1.0) > 0.05 {
				t.Errorf("distance near midpoint = %f, want ~1.0", rec.Distance)
			}
			if math.Abs(rec.PrimaryLocation.X-5.0) > 0.1 {
				t.Errorf("primary X near midpoint = %f, want ~5.0", rec.PrimaryLocation.X)
			}
		}
	}
	if !found {
		t.Error("no record near the expected closest approach at t0+5s")
	}
}

func TestCheck_DistantStationaryDroneClear(t *testing.T) {
	primary := straightPrimary(t)
	sim := stationary(t, "SIM_001", 5, 10, 0, t0, t0.Add(10*time.Second))

	report := Check(primary, []*core.Trajectory{sim}, Options{SafetyDistance: 2.0, SamplesPerPair: 101})

	if report.Status != core.StatusClear {
		t.Fatalf("expected clear, got %s with %d records", report.Status, len(report.Conflicts))
	}
	if len(report.Conflicts) != 0 {
		t.Errorf("expected zero records, got %d", len(report.Conflicts))
	}
}

func TestCheck_DisjointWindowsClearDespiteCoincidence(t *testing.T) {
	primary := straightPrimary(t)
	// Identical geometry, twenty seconds later: time disjointness is a
	// hard pass filter.
	sim := mustNew(t, "SIM_001",
		wp(0, 0, 0, t0.Add(20*time.Second)),
		wp(10, 0, 0, t0.Add(30*time.Second)),
	)

	report := Check(primary, []*core.Trajectory{sim}, Options{SafetyDistance: 100, SamplesPerPair: 50})

	if report.Status != core.StatusClear {
		t.Fatalf("expected clear, got %s", report.Status)
	}
}

func TestCheck_ZeroSafetyDistanceOnlyExactCoincidence(t *testing.T) {
	primary := straightPrimary(t)
	// One metre away at all times: a near-miss of any positive
	// distance is clear when the safety distance is zero.
	near := stationary(t, "SIM_001", 5, 1, 0, t0, t0.Add(10*time.Second))

	report := Check(primary, []*core.Trajectory{near}, Options{SafetyDistance: 0, SamplesPerPair: 101})
	if report.Status != core.StatusClear {
		t.Fatalf("expected clear at zero safety distance, got %s", report.Status)
	}

	// Exactly coincident paths do conflict even at zero... except that
	// d < 0 is impossible, so coincidence is also clear. Distance zero
	// is not strictly below zero.
	coincident := mustNew(t, "SIM_002",
		wp(0, 0, 0, t0),
		wp(10, 0, 0, t0.Add(10*time.Second)),
	)
	report = Check(primary, []*core.Trajectory{coincident}, Options{SafetyDistance: 0, SamplesPerPair: 101})
	if report.Status != core.StatusClear {
		t.Fatalf("strict inequality: d=0 is not below a zero threshold, got %s", report.Status)
	}
}

func TestCheck_SeparationEqualToThresholdIsSafe(t *testing.T) {
	primary := stationary(t, "PRIMARY", 0, 0, 0, t0, t0.Add(10*time.Second))
	sim := stationary(t, "SIM_001", 2, 0, 0, t0, t0.Add(10*time.Second))

	report := Check(primary, []*core.Trajectory{sim}, Options{SafetyDistance: 2.0, SamplesPerPair: 11})
	if report.Status != core.StatusClear {
		t.Fatalf("separation exactly at threshold must be safe, got %s", report.Status)
	}
}

func TestCheck_Idempotent(t *testing.T) {
	primary := straightPrimary(t)
	sims := []*core.Trajectory{
		stationary(t, "SIM_001", 5, 1, 0, t0, t0.Add(10*time.Second)),
		stationary(t, "SIM_002", 5, 0.5, 0, t0.Add(2*time.Second), t0.Add(8*time.Second)),
	}
	opts := Options{SafetyDistance: 2.0, SamplesPerPair: 73}

	first := Check(primary, sims, opts)
	second := Check(primary, sims, opts)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must produce bit-identical reports")
	}
}

func TestCheck_RecordsSortedByTimeThenDrone(t *testing.T) {
	primary := stationary(t, "PRIMARY", 0, 0, 0, t0, t0.Add(10*time.Second))
	sims := []*core.Trajectory{
		stationary(t, "SIM_B", 1, 0, 0, t0, t0.Add(10*time.Second)),
		stationary(t, "SIM_A", 0, 1, 0, t0, t0.Add(10*time.Second)),
	}

	report := Check(primary, sims, Options{SafetyDistance: 2.0, SamplesPerPair: 5})
	if len(report.Conflicts) != 10 {
		t.Fatalf("expected 10 records (2 drones x 5 samples), got %d", len(report.Conflicts))
	}
	for i := 1; i < len(report.Conflicts); i++ {
		prev, cur := report.Conflicts[i-1], report.Conflicts[i]
		if cur.Time.Before(prev.Time) {
			t.Fatalf("record %d out of time order", i)
		}
		if cur.Time.Equal(prev.Time) && cur.ConflictingDrone < prev.ConflictingDrone {
			t.Fatalf("record %d out of drone order at equal time", i)
		}
	}
}

func TestCheck_NoDeduplicationAcrossSamples(t *testing.T) {
	// A sustained close-pass yields one record per violating sample.
	primary := stationary(t, "PRIMARY", 0, 0, 0, t0, t0.Add(10*time.Second))
	sim := stationary(t, "SIM_001", 1, 0, 0, t0, t0.Add(10*time.Second))

	report := Check(primary, []*core.Trajectory{sim}, Options{SafetyDistance: 2.0, SamplesPerPair: 37})
	if len(report.Conflicts) != 37 {
		t.Fatalf("expected 37 records, got %d", len(report.Conflicts))
	}
}

func TestCheck_AllPairsIncludesSimulatedPairs(t *testing.T) {
	primary := stationary(t, "PRIMARY", 0, 0, 0, t0, t0.Add(10*time.Second))
	simA := stationary(t, "SIM_A", 100, 0, 0, t0, t0.Add(10*time.Second))
	simB := stationary(t, "SIM_B", 100.5, 0, 0, t0, t0.Add(10*time.Second))
	sims := []*core.Trajectory{simA, simB}

	defaultReport := Check(primary, sims, Options{SafetyDistance: 2.0, SamplesPerPair: 5})
	if defaultReport.Status != core.StatusClear {
		t.Fatal("primary-vs-simulated only: both sims are far from the primary")
	}

	allReport := Check(primary, sims, Options{SafetyDistance: 2.0, SamplesPerPair: 5, AllPairs: true})
	if allReport.Status != core.StatusConflict {
		t.Fatal("AllPairs must flag the close simulated pair")
	}
	for _, rec := range allReport.Conflicts {
		if rec.PrimaryDrone != "SIM_A" || rec.ConflictingDrone != "SIM_B" {
			t.Fatalf("unexpected pair %q/%q", rec.PrimaryDrone, rec.ConflictingDrone)
		}
	}
}

func TestCheck_DoesNotMutateInputs(t *testing.T) {
	primary := straightPrimary(t)
	sim := stationary(t, "SIM_001", 5, 1, 0, t0, t0.Add(10*time.Second))
	before := primary.Clone()

	Check(primary, []*core.Trajectory{sim}, DefaultOptions())

	if !reflect.DeepEqual(primary, before) {
		t.Fatal("check mutated the primary trajectory")
	}
}
