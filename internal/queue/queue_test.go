package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/flytrace/deconflict/pkg/core"
)

func record(drone string, distance float64) core.ConflictRecord {
	return core.ConflictRecord{
		ConflictingDrone: drone,
		Time:             time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC),
		Distance:         distance,
	}
}

func TestQueueNew(t *testing.T) {
	q := New[core.ConflictRecord]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueuePushPop(t *testing.T) {
	q := New[core.ConflictRecord]()

	// Pop from empty queue returns the zero value.
	zero := q.Pop()
	if zero.ConflictingDrone != "" || zero.Distance != 0 {
		t.Errorf("expected zero value, got %+v", zero)
	}

	q.Push(record("DRONE_A", 1.5))
	q.Push(record("DRONE_B", 0.8), record("DRONE_C", 3.2))
	if q.Len() != 3 {
		t.Fatalf("expected length 3, got %d", q.Len())
	}

	first := q.Pop()
	if first.ConflictingDrone != "DRONE_A" {
		t.Errorf("expected DRONE_A first, got %s", first.ConflictingDrone)
	}
	if q.Len() != 2 {
		t.Errorf("expected length 2, got %d", q.Len())
	}
}

func TestQueueGetAndEmpty(t *testing.T) {
	q := New[core.ConflictRecord]()
	q.Push(record("DRONE_A", 1.0), record("DRONE_B", 2.0))

	items := q.GetAndEmpty()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ConflictingDrone != "DRONE_A" || items[1].ConflictingDrone != "DRONE_B" {
		t.Errorf("items out of order: %+v", items)
	}
	if !q.Empty() {
		t.Error("expected queue to be empty after GetAndEmpty")
	}

	// Draining an empty queue yields an empty slice, not nil panic.
	if got := q.GetAndEmpty(); len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	q := New[core.ConflictRecord]()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				q.Push(record("DRONE", float64(i)))
			}
		}()
	}
	wg.Wait()

	if q.Len() != workers*perWorker {
		t.Errorf("expected %d items, got %d", workers*perWorker, q.Len())
	}
}
