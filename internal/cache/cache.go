package cache

import (
	"sync"

	"github.com/flytrace/deconflict/internal/model"
)

// TrajectoryCache caches trajectory rows when they are created to avoid
// subsequent db reads. Report record inserts resolve drone IDs to their
// trajectory row IDs through this cache.
type TrajectoryCache struct {
	m            sync.Mutex
	Trajectories map[string]model.Trajectory
}

func NewTrajectoryCache() *TrajectoryCache {
	return &TrajectoryCache{
		m:            sync.Mutex{},
		Trajectories: make(map[string]model.Trajectory),
	}
}

func (c *TrajectoryCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Trajectories = make(map[string]model.Trajectory)
}

func (c *TrajectoryCache) Get(droneID string) (model.Trajectory, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if t, ok := c.Trajectories[droneID]; ok {
		return t, true
	}
	return model.Trajectory{}, false
}

// GetRowID resolves a drone ID to its trajectory row ID. Returns 0 when the
// drone is unknown.
func (c *TrajectoryCache) GetRowID(droneID string) uint {
	c.m.Lock()
	defer c.m.Unlock()
	if t, ok := c.Trajectories[droneID]; ok {
		return t.ID
	}
	return 0
}

func (c *TrajectoryCache) Add(t model.Trajectory) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Trajectories[t.DroneID] = t
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
