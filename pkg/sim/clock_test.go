package sim

import (
	"testing"
	"time"
)

var simStart = time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC)

// fakeWall drives a Clock with manually advanced wall time.
type fakeWall struct {
	t time.Time
}

func (f *fakeWall) now() time.Time {
	return f.t
}

func (f *fakeWall) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func newTestClock(speed float64) (*Clock, *fakeWall) {
	wall := &fakeWall{t: time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)}
	c := NewClock(simStart, speed)
	c.now = wall.now
	c.Seek(simStart) // rebase wallStart onto the fake wall
	return c, wall
}

func TestClockAdvances(t *testing.T) {
	c, wall := newTestClock(1.0)

	if got := c.Now(); !got.Equal(simStart) {
		t.Fatalf("expected %v at start, got %v", simStart, got)
	}

	wall.advance(10 * time.Second)
	if got, want := c.Now(), simStart.Add(10*time.Second); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClockSpeedMultiplier(t *testing.T) {
	c, wall := newTestClock(2.0)

	wall.advance(10 * time.Second)
	if got, want := c.Now(), simStart.Add(20*time.Second); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClockInvalidSpeed(t *testing.T) {
	c, wall := newTestClock(-3.0)

	if c.Speed() != 1.0 {
		t.Errorf("expected speed 1.0, got %v", c.Speed())
	}
	wall.advance(5 * time.Second)
	if got, want := c.Now(), simStart.Add(5*time.Second); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClockPauseResume(t *testing.T) {
	c, wall := newTestClock(1.0)

	wall.advance(10 * time.Second)
	c.Pause()
	if !c.Paused() {
		t.Fatal("expected paused clock")
	}

	wall.advance(30 * time.Second)
	if got, want := c.Now(), simStart.Add(10*time.Second); !got.Equal(want) {
		t.Errorf("paused clock moved: expected %v, got %v", want, got)
	}

	// Pause is idempotent.
	c.Pause()

	c.Resume()
	wall.advance(5 * time.Second)
	if got, want := c.Now(), simStart.Add(15*time.Second); !got.Equal(want) {
		t.Errorf("expected %v after resume, got %v", want, got)
	}
}

func TestClockSetSpeedNoJump(t *testing.T) {
	c, wall := newTestClock(1.0)

	wall.advance(10 * time.Second)
	c.SetSpeed(4.0)

	if got, want := c.Now(), simStart.Add(10*time.Second); !got.Equal(want) {
		t.Fatalf("speed change jumped sim time: expected %v, got %v", want, got)
	}

	wall.advance(10 * time.Second)
	if got, want := c.Now(), simStart.Add(50*time.Second); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClockSeek(t *testing.T) {
	c, wall := newTestClock(1.0)

	wall.advance(42 * time.Second)
	target := simStart.Add(5 * time.Minute)
	c.Seek(target)

	if got := c.Now(); !got.Equal(target) {
		t.Errorf("expected %v after seek, got %v", target, got)
	}

	wall.advance(3 * time.Second)
	if got, want := c.Now(), target.Add(3*time.Second); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
