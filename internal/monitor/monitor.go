// Package monitor periodically reports engine health: the loaded mission,
// the check runner's queue depth and the storage write queue.
package monitor

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flytrace/deconflict/internal/mission"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger          *slog.Logger
	MissionContext  *mission.Context
	RunnerQueueLen  func() int
	StorageQueueLen func() int
	ChecksProcessed func() int
	StatusDir       string // directory for status.json, empty to disable
}

// Status is one snapshot of engine health
type Status struct {
	Time         time.Time `json:"time"`
	MissionName  string    `json:"missionName"`
	DroneCount   int       `json:"droneCount"`
	RunnerQueue  int       `json:"runnerQueue"`
	StorageQueue int       `json:"storageQueue"`
	ChecksDone   int       `json:"checksDone"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{
		deps: deps,
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current engine status
func (s *Service) GetStatus() Status {
	status := Status{Time: time.Now()}

	if m := s.deps.MissionContext.GetMission(); m != nil {
		status.MissionName = m.Name
		status.DroneCount = m.DroneCount()
	}
	if s.deps.RunnerQueueLen != nil {
		status.RunnerQueue = s.deps.RunnerQueueLen()
	}
	if s.deps.StorageQueueLen != nil {
		status.StorageQueue = s.deps.StorageQueueLen()
	}
	if s.deps.ChecksProcessed != nil {
		status.ChecksDone = s.deps.ChecksProcessed()
	}

	return status
}

// Start starts the status monitor goroutine
func (s *Service) Start(interval time.Duration) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Starting status monitor goroutine")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				status := s.GetStatus()

				s.deps.Logger.Debug("Engine status",
					"mission", status.MissionName,
					"drones", status.DroneCount,
					"runnerQueue", status.RunnerQueue,
					"storageQueue", status.StorageQueue,
					"checksDone", status.ChecksDone)

				if s.deps.StatusDir != "" {
					s.writeStatusFile(status)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

func (s *Service) writeStatusFile(status Status) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		s.deps.Logger.Error("Error encoding status", "error", err)
		return
	}
	path := filepath.Join(s.deps.StatusDir, "status.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.deps.Logger.Error("Error writing status file", "error", err)
	}
}
