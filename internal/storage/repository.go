package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"

	_ "modernc.org/sqlite"
)

// importedAtLayout is fixed width so that imported_at sorts as text.
const importedAtLayout = "2006-01-02T15:04:05.000000000Z"

const defaultListLimit = 50

var (
	_ ports.CategoryReader = (*SQLiteRepository)(nil)
	_ ports.ImportRecorder = (*SQLiteRepository)(nil)
	_ ports.ImportLister   = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	logger.Info("SQLite database ready", "db_path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Categories implements ports.CategoryReader
func (r *SQLiteRepository) Categories(ctx context.Context) (core.Catalog, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("list categories: %w", err)
	}
	cats := make([]core.Category, len(rows))
	for i, c := range rows {
		cats[i] = core.Category{ID: c.ID, Name: c.Name, Color: c.Color}
	}
	catalog, err := core.NewCatalog(cats)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("build catalog: %w", err)
	}
	return catalog, nil
}

// RecordImport implements ports.ImportRecorder. Records are keyed by ID, so
// writing the same record twice stores it once.
func (r *SQLiteRepository) RecordImport(ctx context.Context, rec core.ImportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now()
	}
	n, err := r.queries.InsertImport(ctx, InsertImportParams{
		ImportID:      rec.ID,
		SessionID:     rec.SessionID,
		Bank:          rec.Bank,
		FileName:      rec.FileName,
		RowCount:      int64(rec.Rows),
		AcceptedCount: int64(rec.Accepted),
		SkippedCount:  int64(rec.Skipped),
		TotalAmount:   rec.TotalAmount.String(),
		ImportedAt:    rec.ImportedAt.UTC().Format(importedAtLayout),
	})
	if err != nil {
		return fmt.Errorf("insert import: %w", err)
	}
	if n == 0 {
		r.logger.DebugContext(ctx, "Import already recorded", "import_id", rec.ID)
		return nil
	}

	r.logger.InfoContext(ctx, "Import recorded",
		"import_id", rec.ID,
		log.FieldSessionID, rec.SessionID,
		log.FieldFileName, rec.FileName,
		log.FieldAccepted, rec.Accepted)
	return nil
}

// ListImports implements ports.ImportLister
func (r *SQLiteRepository) ListImports(ctx context.Context, limit int) ([]core.ImportRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.queries.ListImports(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}

	records := make([]core.ImportRecord, 0, len(rows))
	for _, h := range rows {
		rec, err := toImportRecord(h)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", h.ImportID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toImportRecord(h ImportHistory) (core.ImportRecord, error) {
	total, err := decimal.NewFromString(h.TotalAmount)
	if err != nil {
		return core.ImportRecord{}, fmt.Errorf("total amount %q: %w", h.TotalAmount, err)
	}
	at, err := time.Parse(importedAtLayout, h.ImportedAt)
	if err != nil {
		return core.ImportRecord{}, fmt.Errorf("imported_at %q: %w", h.ImportedAt, err)
	}
	return core.ImportRecord{
		ID:          h.ImportID,
		SessionID:   h.SessionID,
		Bank:        h.Bank,
		FileName:    h.FileName,
		Rows:        int(h.RowCount),
		Accepted:    int(h.AcceptedCount),
		Skipped:     int(h.SkippedCount),
		TotalAmount: total,
		ImportedAt:  at,
	}, nil
}
