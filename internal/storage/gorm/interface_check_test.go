package gormstorage_test

import (
	"github.com/flytrace/deconflict/internal/storage"
	gormstorage "github.com/flytrace/deconflict/internal/storage/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*gormstorage.Backend)(nil)
