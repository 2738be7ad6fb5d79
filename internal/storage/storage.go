// internal/storage/storage.go
package storage

import (
	"github.com/flytrace/deconflict/internal/deconflict"
	"github.com/flytrace/deconflict/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Mission management
	StartMission(mission *core.Mission) error
	EndMission() error

	// Report recording
	RecordReport(report *core.ConflictReport, opts deconflict.Options) error
}

// Exportable is an optional interface for storage backends that produce
// files suitable for upload to a fleet management frontend.
type Exportable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
