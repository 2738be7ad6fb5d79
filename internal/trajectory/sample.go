// internal/trajectory/sample.go
package trajectory

import (
	"time"

	"github.com/flytrace/deconflict/pkg/core"
)

// DefaultSamplesPerPair is the number of instants checked across each
// pair's overlap when the caller does not configure one.
const DefaultSamplesPerPair = 100

// Overlap is the interval during which two drones are simultaneously
// airborne.
type Overlap struct {
	Start time.Time
	End   time.Time
}

// Duration returns the overlap length.
func (o Overlap) Duration() time.Duration {
	return o.End.Sub(o.Start)
}

// PairOverlap computes the intersection of two trajectories' waypoint
// spans. ok is false when the spans are disjoint (or touch at a single
// instant): such a pair contributes zero samples and cannot conflict
// regardless of spatial proximity.
func PairOverlap(a, b *core.Trajectory) (o Overlap, ok bool) {
	o.Start = a.FirstTime()
	if bs := b.FirstTime(); bs.After(o.Start) {
		o.Start = bs
	}
	o.End = a.LastTime()
	if be := b.LastTime(); be.Before(o.End) {
		o.End = be
	}
	return o, o.Start.Before(o.End)
}

// SampleTimes returns n instants spread evenly across the overlap,
// endpoints included. Each pair is sampled across its own overlapping
// span rather than a single global grid, so staggered windows with
// more than two drones each get full resolution. The slice is rebuilt
// on every call: trajectories may mutate between checks and nothing is
// cached.
func SampleTimes(o Overlap, n int) []time.Time {
	if n <= 0 {
		n = DefaultSamplesPerPair
	}
	if n == 1 || !o.Start.Before(o.End) {
		return []time.Time{o.Start}
	}
	span := o.End.Sub(o.Start)
	times := make([]time.Time, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		times[i] = o.Start.Add(time.Duration(frac * float64(span)))
	}
	// Guard against rounding drift on the final sample.
	times[n-1] = o.End
	return times
}
