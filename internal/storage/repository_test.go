package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/log"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "gastos.db"), log.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 2 || v2 != 2 {
		t.Fatalf("expected schema version 2, got %d and %d", v1, v2)
	}
}

func TestSQLiteRepository_Categories(t *testing.T) {
	repo := newTestRepo(t)
	cat, err := repo.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	want := core.DefaultCatalog().All()
	got := cat.All()
	if len(got) != len(want) {
		t.Fatalf("expected %d seeded categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSQLiteRepository_ImportHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"jan.xlsx", "feb.xlsx", "mar.csv"} {
		rec := core.ImportRecord{
			ID:          "imp-" + name,
			SessionID:   "s1",
			Bank:        "nubank",
			FileName:    name,
			Rows:        10,
			Accepted:    8,
			Skipped:     2,
			TotalAmount: decimal.RequireFromString("1234.56"),
			ImportedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.RecordImport(ctx, rec); err != nil {
			t.Fatalf("RecordImport(%s): %v", name, err)
		}
	}

	// redelivery of the same record is a no-op
	if err := repo.RecordImport(ctx, core.ImportRecord{ID: "imp-jan.xlsx", SessionID: "s1", Bank: "nubank", FileName: "jan.xlsx", ImportedAt: base}); err != nil {
		t.Fatalf("duplicate RecordImport: %v", err)
	}

	got, err := repo.ListImports(ctx, 10)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].FileName != "mar.csv" || got[2].FileName != "jan.xlsx" {
		t.Fatalf("expected newest first, got %s..%s", got[0].FileName, got[2].FileName)
	}
	first := got[2]
	if first.Rows != 10 || first.Accepted != 8 || first.Skipped != 2 {
		t.Fatalf("counts not preserved: %+v", first)
	}
	if !first.TotalAmount.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("total not preserved: %s", first.TotalAmount)
	}
	if !first.ImportedAt.Equal(base) {
		t.Fatalf("timestamp not preserved: %v", first.ImportedAt)
	}

	limited, err := repo.ListImports(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %d, %v", len(limited), err)
	}
}

func TestSQLiteRepository_RecordImportDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.RecordImport(ctx, core.ImportRecord{SessionID: "s", Bank: "nubank", FileName: "f.csv"}); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	got, err := repo.ListImports(ctx, 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListImports = %d, %v", len(got), err)
	}
	if got[0].ID == "" || got[0].ImportedAt.IsZero() {
		t.Fatalf("id and timestamp should be filled in: %+v", got[0])
	}
}
