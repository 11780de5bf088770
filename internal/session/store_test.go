package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/readers"
)

func sampleTxs(ids ...string) []core.Transaction {
	out := make([]core.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.Transaction{ID: id, Description: "tx " + id, Amount: decimal.NewFromInt(1)})
	}
	return out
}

func TestStore_ReplaceAndExpensesCopy(t *testing.T) {
	s := NewStore("s1")
	s.Replace(sampleTxs("a", "b"))

	got := s.Expenses()
	got[0].Description = "mutated"
	if s.Expenses()[0].Description != "tx a" {
		t.Fatalf("Expenses must return a copy")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2, got %d", s.Len())
	}
}

func TestStore_ImportReplacesWholeList(t *testing.T) {
	s := NewStore("s1")
	s.Replace(sampleTxs("old1", "old2", "old3"))

	csv := "date,title,amount\n2023-11-01,Grocery Store,78.52\n2023-11-02,Bad Row,abc\n"
	res, err := s.Import(context.Background(), readers.Nubank, readers.Source{Name: "n.csv", Data: []byte(csv)})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	got := s.Expenses()
	if len(got) != len(res.Transactions) || len(got) != 1 {
		t.Fatalf("state should equal import result, got %+v", got)
	}
	if got[0].ID != res.Transactions[0].ID {
		t.Fatalf("state differs from import result")
	}

	summary, ok := s.LastImport()
	if !ok || summary.FileName != "n.csv" || summary.Accepted != 1 || len(summary.Skipped) != 1 {
		t.Fatalf("unexpected summary %+v ok=%v", summary, ok)
	}
}

func TestStore_ImportWithNoAcceptedRowsEmptiesList(t *testing.T) {
	s := NewStore("s1")
	s.Replace(sampleTxs("a", "b"))

	csv := "date,title,amount\n2023-11-01,Bad Row,abc\n"
	res, err := s.Import(context.Background(), readers.Nubank, readers.Source{Name: "n.csv", Data: []byte(csv)})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Transactions) != 0 || s.Len() != 0 {
		t.Fatalf("state should equal the empty import result, got %d transactions", s.Len())
	}
	if summary, ok := s.LastImport(); !ok || summary.Accepted != 0 || len(summary.Skipped) != 1 {
		t.Fatalf("unexpected summary %+v ok=%v", summary, ok)
	}
}

func TestStore_ImportFailureKeepsList(t *testing.T) {
	s := NewStore("s1")
	s.Replace(sampleTxs("a"))

	_, err := s.Import(context.Background(), readers.Bank("unknown"), readers.Source{Name: "n.csv", Data: []byte("x")})
	if !errors.Is(err, readers.ErrNoReader) {
		t.Fatalf("expected ErrNoReader, got %v", err)
	}
	_, err = s.Import(context.Background(), readers.Nubank, readers.Source{Name: "n.xlsx", Data: []byte("PK\x03\x04broken")})
	if !errors.Is(err, readers.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
	if s.Len() != 1 || s.Expenses()[0].ID != "a" {
		t.Fatalf("failed import must not touch the list")
	}
	if _, ok := s.LastImport(); ok {
		t.Fatalf("failed import must not record a summary")
	}
}

func TestStore_Tagging(t *testing.T) {
	s := NewStore("s1")
	s.Replace(sampleTxs("a", "b"))

	if _, err := s.SetCategory("a", "cat"); err != nil {
		t.Fatalf("SetCategory error = %v", err)
	}
	if _, err := s.SetIdentifier("a", "netflix"); err != nil {
		t.Fatalf("SetIdentifier error = %v", err)
	}
	tx, err := s.ToggleRecurring("a")
	if err != nil || !tx.MonthlyRecurring {
		t.Fatalf("ToggleRecurring = %+v, %v", tx, err)
	}
	tx, _ = s.ToggleRecurring("a")
	if tx.MonthlyRecurring {
		t.Fatalf("second toggle should clear the flag")
	}

	got, err := s.Get("a")
	if err != nil || got.CategoryID != "cat" || got.Identifier != "netflix" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if other, _ := s.Get("b"); other.CategoryID != "" {
		t.Fatalf("tagging leaked to another transaction")
	}

	for name, fn := range map[string]func() error{
		"category":   func() error { _, err := s.SetCategory("x", "cat"); return err },
		"identifier": func() error { _, err := s.SetIdentifier("x", "id"); return err },
		"recurring":  func() error { _, err := s.ToggleRecurring("x"); return err },
		"get":        func() error { _, err := s.Get("x"); return err },
	} {
		if err := fn(); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore("s1")
	s.Replace(sampleTxs("a", "b", "c"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); _, _ = s.ToggleRecurring("a") }()
		go func() { defer wg.Done(); _ = s.Expenses() }()
		go func() { defer wg.Done(); s.Replace(sampleTxs("a", "b", "c")) }()
	}
	wg.Wait()
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager(2, time.Hour, log.Discard())

	s1, created := m.GetOrCreate("")
	if !created || s1.ID() == "" {
		t.Fatalf("expected a new session")
	}
	again, created := m.GetOrCreate(s1.ID())
	if created || again != s1 {
		t.Fatalf("expected the same session back")
	}
	if _, created := m.GetOrCreate("forged-id"); !created {
		t.Fatalf("unknown ids must start a new session")
	}

	m.GetOrCreate("")
	if m.Size() != 2 {
		t.Fatalf("capacity should cap sessions at 2, got %d", m.Size())
	}

	m.Delete(s1.ID())
	if _, ok := m.Get(s1.ID()); ok {
		t.Fatalf("deleted session still present")
	}
}
