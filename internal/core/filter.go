package core

import "strings"

// View selects which transactions the report tab shows.
type View string

const (
	ViewAll          View = "all"
	ViewRecurring    View = "recurring"
	ViewNonRecurring View = "non-recurring"
)

// Views lists the tabs in display order.
func Views() []View {
	return []View{ViewAll, ViewRecurring, ViewNonRecurring}
}

// ParseView maps a query value to a View; anything unknown is ViewAll.
func ParseView(s string) View {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewRecurring:
		return ViewRecurring
	case ViewNonRecurring:
		return ViewNonRecurring
	default:
		return ViewAll
	}
}

// Label is the tab caption.
func (v View) Label() string {
	switch v {
	case ViewRecurring:
		return "Monthly Recurring"
	case ViewNonRecurring:
		return "Non-Recurring"
	default:
		return "All Expenses"
	}
}

func (v View) match(t Transaction) bool {
	switch v {
	case ViewRecurring:
		return t.MonthlyRecurring
	case ViewNonRecurring:
		return !t.MonthlyRecurring
	default:
		return true
	}
}

// Filter combines a description search with a view.
type Filter struct {
	Search string
	View   View
}

// Apply keeps transactions whose description contains Search
// (case-insensitive), then applies the view. The input is not modified.
func (f Filter) Apply(txs []Transaction) []Transaction {
	needle := strings.ToLower(f.Search)
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if needle != "" && !strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		out = append(out, t)
	}

	kept := out[:0]
	for _, t := range out {
		if f.View.match(t) {
			kept = append(kept, t)
		}
	}
	return kept
}
