package backend

import (
	"context"

	"gastos/internal/ports"
)

// Backend bundles the outbound adapters selected by DATA_BACKEND.
// Recorder and History are nil when import history is disabled.
type Backend struct {
	Catalog  ports.CategoryReader
	Recorder ports.ImportRecorder
	History  ports.ImportLister

	// Ready reports whether the backing services are reachable.
	Ready func(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
