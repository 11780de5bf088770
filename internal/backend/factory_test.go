package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"unknown type", Config{Type: "postgres"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"amqp without queue", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", AMQPURL: "amqp://x", AMQPExchange: "e"}, "AMQP exchange and queue"},
		{"sheets without id", Config{Type: SheetsBackend, GoogleSheetName: "Categories", CatalogRefresh: time.Minute}, "Spreadsheet ID"},
		{"sheets without refresh", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleSheetName: "Categories"}, "refresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg := &config.Config{
		DataBackend:               "sheets",
		GoogleSpreadsheetID:       "sheet-id",
		GoogleCategoriesSheetName: "Cats",
		CatalogRefresh:            time.Minute,
	}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() = %v", err)
	}
	if bc.Type != SheetsBackend || bc.GoogleSheetName != "Cats" || bc.CatalogRefresh != time.Minute {
		t.Fatalf("unexpected backend config %+v", bc)
	}
	cfg.DataBackend = "redis"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatalf("expected error for invalid backend")
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend() = %v", err)
	}
	if res.Backend.Recorder != nil || res.Backend.History != nil {
		t.Fatalf("memory backend must not record history")
	}
	cat, err := res.Backend.Catalog.Categories(context.Background())
	if err != nil || cat.Len() != core.DefaultCatalog().Len() {
		t.Fatalf("Categories() = %d, %v", cat.Len(), err)
	}
	if err := res.Backend.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() = %v", err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(log.Discard()).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "gastos.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() = %v", err)
	}
	defer res.Cleanup()

	b := res.Backend
	if b.Recorder == nil || b.History == nil {
		t.Fatalf("sqlite backend should enable history")
	}
	if err := b.Ready(ctx); err != nil {
		t.Fatalf("Ready() = %v", err)
	}
	if err := b.Recorder.RecordImport(ctx, core.ImportRecord{ID: "i1", SessionID: "s", Bank: "nubank", FileName: "f.csv"}); err != nil {
		t.Fatalf("RecordImport() = %v", err)
	}
	recs, err := b.History.ListImports(ctx, 5)
	if err != nil || len(recs) != 1 {
		t.Fatalf("ListImports() = %d, %v", len(recs), err)
	}
}

func TestCreateBackend_MissingCatalogFile(t *testing.T) {
	_, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{
		Type:        MemoryBackend,
		CatalogFile: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}
