package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	UncategorizedID    = "uncategorized"
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#6b7280"
)

type (
	Date struct {
		time.Time
	}

	// Transaction is one parsed spreadsheet row representing a monetary outflow.
	Transaction struct {
		ID               string
		Date             Date
		Description      string
		Amount           decimal.Decimal
		CategoryID       string // empty when unset
		Identifier       string // empty when unset
		MonthlyRecurring bool
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// Catalog is an ordered, immutable set of categories.
	Catalog struct {
		categories []Category
		index      map[string]int
	}

	// ImportRecord is the audit entry written after a successful import.
	// It never carries transaction data.
	ImportRecord struct {
		ID          string          `json:"id"`
		SessionID   string          `json:"session_id"`
		Bank        string          `json:"bank"`
		FileName    string          `json:"file_name"`
		Rows        int             `json:"rows"`
		Accepted    int             `json:"accepted"`
		Skipped     int             `json:"skipped"`
		TotalAmount decimal.Decimal `json:"total_amount"`
		ImportedAt  time.Time       `json:"imported_at"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrEmptyCategoryID   = errors.New("empty category id")
	ErrEmptyCategory     = errors.New("empty category name")
	ErrInvalidColor      = errors.New("invalid category color")
	ErrDuplicateCategory = errors.New("duplicate category id")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the source cell could not be parsed into a date.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Display renders the date as DD/MM/YYYY, or "-" when unknown.
func (d Date) Display() string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("02/01/2006")
}

// HasCategory reports whether the transaction has been tagged.
func (t Transaction) HasCategory() bool {
	return t.CategoryID != ""
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyCategoryID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	if !hexColor.MatchString(c.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	return nil
}

// NewCatalog validates the categories and keeps their order.
func NewCatalog(categories []Category) (Catalog, error) {
	cat := Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		c.Color = strings.ToLower(strings.TrimSpace(c.Color))
		if err := c.Validate(); err != nil {
			return Catalog{}, err
		}
		if c.ID == UncategorizedID {
			return Catalog{}, fmt.Errorf("%w: %q is reserved", ErrDuplicateCategory, c.ID)
		}
		if _, dup := cat.index[c.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, c.ID)
		}
		cat.index[c.ID] = len(cat.categories)
		cat.categories = append(cat.categories, c)
	}
	return cat, nil
}

// MustCatalog is NewCatalog for static seeds; it panics on invalid input.
func MustCatalog(categories []Category) Catalog {
	c, err := NewCatalog(categories)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in category seed.
func DefaultCatalog() Catalog {
	return MustCatalog([]Category{
		{ID: "c1a9d01x", Name: "Transporte", Color: "#3b82f6"},
		{ID: "a3b2f04z", Name: "Saúde & Bem-estar", Color: "#f97316"},
		{ID: "e8t6h93p", Name: "Casa & Utilidades", Color: "#a855f7"},
		{ID: "k7r1m55q", Name: "Educação & Desenvolvimento", Color: "#06b6d4"},
		{ID: "v2x9n88s", Name: "Assinaturas & Jogos", Color: "#10b981"},
		{ID: "l4m2n3o4", Name: "Lazer", Color: "#ef4444"},
	})
}

// All returns the categories in catalog order.
func (c Catalog) All() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c Catalog) Len() int {
	return len(c.categories)
}

func (c Catalog) Lookup(id string) (Category, bool) {
	i, ok := c.index[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

func (c Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// NameOf returns the category name, or "Undefined" for unknown ids.
func (c Catalog) NameOf(id string) string {
	if cat, ok := c.Lookup(id); ok {
		return cat.Name
	}
	return "Undefined"
}
