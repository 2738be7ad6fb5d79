package trajectory

import (
	"math"
	"testing"
	"time"

	"github.com/flytrace/deconflict/pkg/core"
)

const tol = 1e-9

func mustNew(t *testing.T, id string, wps ...core.Waypoint) *core.Trajectory {
	t.Helper()
	traj, err := New(id, "", core.TimeWindow{Start: wps[0].Timestamp, End: wps[len(wps)-1].Timestamp}, wps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return traj
}

func approxEqual(a, b core.Position3D) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestPositionAt_SingleWaypointClampsEverywhere(t *testing.T) {
	traj := mustNew(t, "D1", wp(3, 4, 5, t0))

	queries := []time.Time{
		t0.Add(-time.Hour),
		t0,
		t0.Add(time.Hour),
	}
	want := core.Position3D{X: 3, Y: 4, Z: 5}
	for _, q := range queries {
		if got := PositionAt(traj, q); got != want {
			t.Errorf("PositionAt(%v) = %+v, want %+v", q, got, want)
		}
	}
}

func TestPositionAt_ExactAtKnots(t *testing.T) {
	traj := mustNew(t, "D1",
		wp(0, 0, 0, t0),
		wp(10, 20, 30, t0.Add(10*time.Second)),
		wp(-5, 7, 12, t0.Add(25*time.Second)),
	)
	for i, w := range traj.Waypoints {
		if got := PositionAt(traj, w.Timestamp); got != w.Position3D {
			t.Errorf("waypoint %d: got %+v, want %+v", i, got, w.Position3D)
		}
	}
}

func TestPositionAt_ClampsOutsideSpan(t *testing.T) {
	traj := mustNew(t, "D1",
		wp(1, 2, 3, t0),
		wp(9, 8, 7, t0.Add(time.Minute)),
	)
	if got := PositionAt(traj, t0.Add(-time.Second)); got != traj.Waypoints[0].Position3D {
		t.Errorf("before-first query: got %+v", got)
	}
	if got := PositionAt(traj, t0.Add(2*time.Minute)); got != traj.Waypoints[1].Position3D {
		t.Errorf("after-last query: got %+v", got)
	}
}

func TestPositionAt_AffineBlend(t *testing.T) {
	traj := mustNew(t, "D1",
		wp(0, 0, 10, t0),
		wp(100, 100, 10, t0.Add(5*time.Minute)),
	)

	cases := []struct {
		offset time.Duration
		want   core.Position3D
	}{
		{150 * time.Second, core.Position3D{X: 50, Y: 50, Z: 10}},
		{75 * time.Second, core.Position3D{X: 25, Y: 25, Z: 10}},
		{time.Minute, core.Position3D{X: 20, Y: 20, Z: 10}},
	}
	for _, tc := range cases {
		got := PositionAt(traj, t0.Add(tc.offset))
		if !approxEqual(got, tc.want) {
			t.Errorf("PositionAt(+%v) = %+v, want %+v", tc.offset, got, tc.want)
		}
	}
}

func TestPositionAt_ZeroDurationSegment(t *testing.T) {
	// An instantaneous jump: before the shared instant the drone is at
	// the pre-jump point, at and after it the post-jump point governs.
	traj := mustNew(t, "D1",
		wp(0, 0, 0, t0),
		wp(10, 0, 0, t0.Add(10*time.Second)),
		wp(50, 50, 0, t0.Add(10*time.Second)),
		wp(60, 50, 0, t0.Add(20*time.Second)),
	)

	if got := PositionAt(traj, t0.Add(9*time.Second)); !approxEqual(got, core.Position3D{X: 9}) {
		t.Errorf("pre-jump: got %+v", got)
	}
	if got := PositionAt(traj, t0.Add(10*time.Second)); got != (core.Position3D{X: 50, Y: 50}) {
		t.Errorf("at jump instant: got %+v", got)
	}
	if got := PositionAt(traj, t0.Add(15*time.Second)); !approxEqual(got, core.Position3D{X: 55, Y: 50}) {
		t.Errorf("post-jump: got %+v", got)
	}
}

func TestPositionAt_VariableSegmentSpeeds(t *testing.T) {
	// Velocity is per segment: a fast first leg and a slow second leg
	// interpolate independently.
	traj := mustNew(t, "D1",
		wp(0, 0, 0, t0),
		wp(100, 0, 0, t0.Add(10*time.Second)),
		wp(110, 0, 0, t0.Add(110*time.Second)),
	)
	if got := PositionAt(traj, t0.Add(5*time.Second)); !approxEqual(got, core.Position3D{X: 50}) {
		t.Errorf("fast leg midpoint: got %+v", got)
	}
	if got := PositionAt(traj, t0.Add(60*time.Second)); !approxEqual(got, core.Position3D{X: 105}) {
		t.Errorf("slow leg midpoint: got %+v", got)
	}
}
