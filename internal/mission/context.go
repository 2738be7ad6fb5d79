package mission

import (
	"sync"

	"github.com/flytrace/deconflict/pkg/core"
)

// Context holds the currently loaded mission. The planner mutates the
// primary trajectory between checks; readers take value snapshots
// under the lock.
type Context struct {
	mu      sync.RWMutex
	mission *core.Mission
}

// NewContext creates a new Context with an empty mission.
func NewContext() *Context {
	return &Context{
		mission: &core.Mission{Name: "No mission loaded"},
	}
}

// GetMission returns the current mission.
func (mc *Context) GetMission() *core.Mission {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.mission
}

// SetMission replaces the current mission.
func (mc *Context) SetMission(m *core.Mission) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.mission = m
}

// Snapshot returns deep copies of the primary and simulated
// trajectories, safe to hand to a check while the planner keeps
// editing.
func (mc *Context) Snapshot() (*core.Trajectory, []*core.Trajectory) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var primary *core.Trajectory
	if mc.mission.Primary != nil {
		primary = mc.mission.Primary.Clone()
	}
	simulated := make([]*core.Trajectory, len(mc.mission.Simulated))
	for i, sim := range mc.mission.Simulated {
		simulated[i] = sim.Clone()
	}
	return primary, simulated
}
