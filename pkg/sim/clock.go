// Package sim provides realtime playback support: a clock that maps wall
// time onto simulation time with an adjustable speed multiplier, and frame
// snapshots of every drone's interpolated position.
package sim

import (
	"sync"
	"time"
)

// Clock maps wall-clock time onto simulation time. Simulation time advances
// at Speed seconds per wall second while running and holds still while
// paused.
type Clock struct {
	mu        sync.Mutex
	simStart  time.Time
	wallStart time.Time
	elapsed   time.Duration // sim time accumulated before wallStart
	speed     float64
	paused    bool
	now       func() time.Time
}

// NewClock creates a running clock positioned at simStart.
// A speed of 0 or less is treated as 1.0.
func NewClock(simStart time.Time, speed float64) *Clock {
	if speed <= 0 {
		speed = 1.0
	}
	c := &Clock{
		simStart: simStart,
		speed:    speed,
		now:      time.Now,
	}
	c.wallStart = c.now()
	return c
}

// Now returns the current simulation time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.simStart.Add(c.elapsed + c.running())
}

// running returns sim time accrued since wallStart. Callers hold mu.
func (c *Clock) running() time.Duration {
	if c.paused {
		return 0
	}
	return time.Duration(float64(c.now().Sub(c.wallStart)) * c.speed)
}

// Pause freezes simulation time. Pausing a paused clock is a no-op.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.elapsed += c.running()
	c.paused = true
}

// Resume restarts a paused clock. Resuming a running clock is a no-op.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.wallStart = c.now()
	c.paused = false
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// SetSpeed changes the speed multiplier without jumping simulation time.
// A speed of 0 or less is treated as 1.0.
func (c *Clock) SetSpeed(speed float64) {
	if speed <= 0 {
		speed = 1.0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed += c.running()
	c.wallStart = c.now()
	c.speed = speed
}

// Speed returns the current speed multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Seek jumps simulation time to the given instant without touching the
// speed or pause state.
func (c *Clock) Seek(simTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.simStart = simTime
	c.elapsed = 0
	c.wallStart = c.now()
}
