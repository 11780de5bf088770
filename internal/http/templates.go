package http

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

const emptyPie = "conic-gradient(#e5e7eb 0% 100%)"

// templateFuncs are shared by every page and partial.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"brl":      func(d decimal.Decimal) string { return core.FormatBRL(d) },
		"pct":      func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
		"status":   core.StatusOf,
		"statuses": core.Statuses,
		"pie":      pieGradient,
		"bar":      barStyle,
		"join":     strings.Join,
	}
}

// pieGradient renders the slices as a CSS conic-gradient. Colors come from a
// validated catalog, so the result is safe to place in a style attribute.
func pieGradient(slices []core.Slice) template.CSS {
	if len(slices) == 0 || slices[len(slices)-1].End <= 0 {
		return template.CSS(emptyPie)
	}
	parts := make([]string, 0, len(slices))
	for _, s := range slices {
		if s.End <= s.Start {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.2f%% %.2f%%", s.Color, s.Start, s.End))
	}
	return template.CSS("conic-gradient(" + strings.Join(parts, ", ") + ")")
}

// barStyle sizes a bucket's bar by its share of the filtered total.
func barStyle(b core.Bucket) template.CSS {
	p := b.Percentage
	switch {
	case p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	return template.CSS(fmt.Sprintf("width: %.2f%%; background: %s", p, b.Color))
}

// parseTemplates loads every page and partial from fsys.
func parseTemplates(fsys fs.FS) (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}
