package ports

import (
	"context"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	// CategoryReader loads the category catalog.
	CategoryReader interface {
		Categories(ctx context.Context) (core.Catalog, error)
	}

	// ImportRecorder stores the audit entry of a finished import.
	ImportRecorder interface {
		RecordImport(ctx context.Context, rec core.ImportRecord) error
	}

	// ImportLister returns the most recent import records, newest first.
	ImportLister interface {
		ListImports(ctx context.Context, limit int) ([]core.ImportRecord, error)
	}
)
