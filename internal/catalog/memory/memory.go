package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"gastos/internal/core"
	"gastos/internal/ports"
)

var _ ports.CategoryReader = (*Store)(nil)

// Store serves a fixed catalog held in memory.
type Store struct {
	catalog core.Catalog
}

func New(catalog core.Catalog) *Store {
	return &Store{catalog: catalog}
}

// NewFromFile loads the catalog from path, one `id,name,#hex` line per
// category. Blank lines and lines starting with # are ignored. An empty
// path returns the built-in catalog.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(core.DefaultCatalog()), nil
	}
	cats, err := readCategories(path)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return New(core.DefaultCatalog()), nil
	}
	catalog, err := core.NewCatalog(cats)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return New(catalog), nil
}

// Categories implements ports.CategoryReader.
func (s *Store) Categories(_ context.Context) (core.Catalog, error) {
	return s.catalog, nil
}

func readCategories(path string) ([]core.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	var out []core.Category
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Split(text, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("catalog file %s line %d: want id,name,color", path, line)
		}
		out = append(out, core.Category{ID: parts[0], Name: parts[1], Color: parts[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return out, nil
}
