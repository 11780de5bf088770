package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func tx(amount string, category string, recurring bool, desc string) Transaction {
	return Transaction{
		Description:      desc,
		Amount:           decimal.RequireFromString(amount),
		CategoryID:       category,
		MonthlyRecurring: recurring,
	}
}

func testCatalog() Catalog {
	return MustCatalog([]Category{
		{ID: "A", Name: "Alpha", Color: "#3b82f6"},
		{ID: "B", Name: "Beta", Color: "#ef4444"},
		{ID: "C", Name: "Gamma", Color: "#10b981"},
	})
}

func TestAggregate_CategoryAndUncategorized(t *testing.T) {
	got := Aggregate([]Transaction{
		tx("100", "A", false, "one"),
		tx("300", "", false, "two"),
	}, testCatalog())

	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(got), got)
	}
	if got[0].CategoryID != "A" || !got[0].Total.Equal(decimal.NewFromInt(100)) || got[0].Percentage != 25 {
		t.Fatalf("unexpected A bucket %+v", got[0])
	}
	if got[1].CategoryID != UncategorizedID || !got[1].Total.Equal(decimal.NewFromInt(300)) || got[1].Percentage != 75 {
		t.Fatalf("unexpected uncategorized bucket %+v", got[1])
	}
	if got[1].Color != UncategorizedColor || got[1].ColorName != "gray" {
		t.Fatalf("uncategorized bucket should be gray, got %+v", got[1])
	}
}

func TestAggregate_CatalogOrderAndEmptyCategoriesOmitted(t *testing.T) {
	got := Aggregate([]Transaction{
		tx("5", "C", false, ""),
		tx("1", "", false, ""),
		tx("5", "A", false, ""),
		tx("2", "C", false, ""),
	}, testCatalog())

	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.CategoryID)
	}
	want := []string{"A", "C", UncategorizedID}
	if len(ids) != len(want) {
		t.Fatalf("got ids %v want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got ids %v want %v", ids, want)
		}
	}
	if got[1].Count != 2 || !got[1].Total.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("unexpected C bucket %+v", got[1])
	}
}

func TestAggregate_UnknownCategoryCountsAsUncategorized(t *testing.T) {
	got := Aggregate([]Transaction{tx("10", "ghost", false, "")}, testCatalog())
	if len(got) != 1 || got[0].CategoryID != UncategorizedID {
		t.Fatalf("expected single uncategorized bucket, got %+v", got)
	}
}

func TestAggregate_ZeroTotal(t *testing.T) {
	got := Aggregate([]Transaction{
		tx("0", "A", false, ""),
		tx("0", "", false, ""),
	}, testCatalog())
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", got)
	}
	for _, b := range got {
		if b.Percentage != 0 {
			t.Fatalf("expected 0%% for zero total, got %+v", b)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil, testCatalog()); len(got) != 0 {
		t.Fatalf("expected no buckets, got %+v", got)
	}
}

func TestAggregate_PercentagesSumTo100(t *testing.T) {
	txs := []Transaction{
		tx("33.33", "A", false, ""),
		tx("33.33", "B", false, ""),
		tx("33.34", "C", false, ""),
		tx("0.01", "", false, ""),
		tx("17", "A", false, ""),
	}
	var sum float64
	for _, b := range Aggregate(txs, testCatalog()) {
		sum += b.Percentage
	}
	if math.Abs(sum-100) > 0.0001 {
		t.Fatalf("percentages sum to %v", sum)
	}
}

func TestSlices(t *testing.T) {
	slices := Slices([]Bucket{{Percentage: 25}, {Percentage: 75}})
	if slices[0].Start != 0 || slices[0].End != 25 || slices[1].Start != 25 || slices[1].End != 100 {
		t.Fatalf("unexpected slices %+v", slices)
	}
}

func TestBuildReport(t *testing.T) {
	txs := []Transaction{
		tx("10", "A", true, "Netflix"),
		tx("20", "", false, "Uber *trip"),
		tx("30", "B", false, "Netflix gift"),
	}
	r := BuildReport(txs, testCatalog(), Filter{Search: "NETFLIX", View: ViewNonRecurring})
	if len(r.Transactions) != 1 || r.Transactions[0].Description != "Netflix gift" {
		t.Fatalf("unexpected filtered transactions %+v", r.Transactions)
	}
	if !r.Total.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected total 30, got %s", r.Total)
	}
	if len(r.Buckets) != 1 || r.Buckets[0].CategoryID != "B" || r.Buckets[0].Percentage != 100 {
		t.Fatalf("unexpected buckets %+v", r.Buckets)
	}
}
