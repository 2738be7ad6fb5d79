package memory_test

import (
	"github.com/flytrace/deconflict/internal/storage"
	"github.com/flytrace/deconflict/internal/storage/memory"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Exportable = (*memory.Backend)(nil)
)
