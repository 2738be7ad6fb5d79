package sqlitestorage_test

import (
	"github.com/flytrace/deconflict/internal/storage"
	sqlitestorage "github.com/flytrace/deconflict/internal/storage/sqlite"
)

// Compile-time interface check
var _ storage.Backend = (*sqlitestorage.Backend)(nil)
