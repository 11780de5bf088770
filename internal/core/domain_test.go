package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateDisplay(t *testing.T) {
	cases := []struct {
		d    Date
		want string
	}{
		{NewDate(2023, 11, 1), "01/11/2023"},
		{NewDate(2025, 12, 31), "31/12/2025"},
		{Date{Time: time.Time{}}, "-"},
	}
	for i, tc := range cases {
		if got := tc.d.Display(); got != tc.want {
			t.Fatalf("case %d: got %q want %q", i, got, tc.want)
		}
	}
}

func TestNewCatalog(t *testing.T) {
	cat, err := NewCatalog([]Category{
		{ID: " a ", Name: "Food", Color: "#10B981"},
		{ID: "b", Name: "Rent", Color: "#3b82f6"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", cat.Len())
	}
	a, ok := cat.Lookup("a")
	if !ok || a.Color != "#10b981" {
		t.Fatalf("expected trimmed id and lowercased color, got %+v ok=%v", a, ok)
	}
	if cat.All()[1].ID != "b" {
		t.Fatalf("order not preserved: %+v", cat.All())
	}
	if cat.NameOf("missing") != "Undefined" {
		t.Fatalf("unknown id should render Undefined")
	}
}

func TestNewCatalogErrors(t *testing.T) {
	cases := []struct {
		name string
		in   []Category
		want error
	}{
		{"empty id", []Category{{Name: "x", Color: "#000000"}}, ErrEmptyCategoryID},
		{"empty name", []Category{{ID: "x", Color: "#000000"}}, ErrEmptyCategory},
		{"bad color", []Category{{ID: "x", Name: "x", Color: "blue"}}, ErrInvalidColor},
		{"duplicate", []Category{{ID: "x", Name: "x", Color: "#000000"}, {ID: "x", Name: "y", Color: "#000000"}}, ErrDuplicateCategory},
		{"reserved", []Category{{ID: UncategorizedID, Name: "x", Color: "#000000"}}, ErrDuplicateCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	if cat.Len() != 6 {
		t.Fatalf("expected 6 seeded categories, got %d", cat.Len())
	}
	if first := cat.All()[0]; first.Name != "Transporte" || first.Color != "#3b82f6" {
		t.Fatalf("unexpected first category %+v", first)
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		want Status
	}{
		{"recurring wins", Transaction{MonthlyRecurring: true, Identifier: "x"}, StatusMonthly},
		{"identifier", Transaction{Identifier: "netflix", CategoryID: "a"}, StatusMatched},
		{"no category", Transaction{}, StatusNeedsVerification},
		{"categorized", Transaction{CategoryID: "a"}, StatusNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(tc.tx); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestColorMaps(t *testing.T) {
	if ColorName("#3B82F6") != "blue" {
		t.Fatalf("expected blue")
	}
	if ColorName("#123456") != "gray" {
		t.Fatalf("unknown hex should map to gray")
	}
	if ColorHex("teal") != "#14b8a6" {
		t.Fatalf("expected teal hex")
	}
	if ColorHex("magenta") != UncategorizedColor {
		t.Fatalf("unknown name should map to gray hex")
	}
}
