package http

import (
	"fmt"
	"net/url"
	"strings"

	"gastos/internal/core"
	"gastos/internal/readers"
	"gastos/internal/session"
)

const maxSkippedShown = 20

type bankOption struct {
	Value string
	Label string
}

type indexPage struct {
	Banks       []bankOption
	Accept      string
	Extensions  string
	MaxUploadMB string
	HasReport   bool
	Notice      *importNotice
	Imports     []core.ImportRecord
	Error       string
}

type viewTab struct {
	Label      string
	URL        string
	PartialURL string
	Active     bool
}

// txRow is one table row of the report.
type txRow struct {
	core.Transaction
	Status        core.Status
	CategoryName  string
	CategoryColor string
	Categories    []core.Category
	Query         string
	View          core.View
}

type importNotice struct {
	FileName    string
	Bank        string
	Rows        int
	Accepted    int
	Skipped     []readers.SkippedRow
	MoreSkipped int
}

type reportPage struct {
	Report     core.Report
	Rows       []txRow
	Tabs       []viewTab
	Query      string
	View       core.View
	PartialURL string
	Loaded     int
	Notice     *importNotice
	Partial    bool
}

func (s *Server) newIndexPage() indexPage {
	banks := readers.Banks()
	opts := make([]bankOption, 0, len(banks))
	for _, b := range banks {
		opts = append(opts, bankOption{Value: string(b), Label: b.Label()})
	}
	accept := make([]string, 0, len(s.cfg.AllowedExtensions))
	for _, ext := range s.cfg.AllowedExtensions {
		accept = append(accept, "."+ext)
	}
	return indexPage{
		Banks:       opts,
		Accept:      strings.Join(accept, ","),
		Extensions:  strings.Join(s.cfg.AllowedExtensions, ", "),
		MaxUploadMB: formatMB(s.cfg.MaxUploadBytes),
	}
}

func newReportPage(store *session.Store, report core.Report, cat core.Catalog) reportPage {
	f := report.Filter
	categories := cat.All()

	rows := make([]txRow, 0, len(report.Transactions))
	for _, t := range report.Transactions {
		row := txRow{
			Transaction:   t,
			Status:        core.StatusOf(t),
			CategoryName:  core.UncategorizedName,
			CategoryColor: core.UncategorizedColor,
			Categories:    categories,
			Query:         f.Search,
			View:          f.View,
		}
		if c, ok := cat.Lookup(t.CategoryID); ok {
			row.CategoryName = c.Name
			row.CategoryColor = c.Color
		}
		rows = append(rows, row)
	}

	tabs := make([]viewTab, 0, len(core.Views()))
	for _, v := range core.Views() {
		tabs = append(tabs, viewTab{
			Label:      v.Label(),
			URL:        reportURL("/report", f.Search, v),
			PartialURL: reportURL("/ui/report", f.Search, v),
			Active:     v == f.View,
		})
	}

	page := reportPage{
		Report:     report,
		Rows:       rows,
		Tabs:       tabs,
		Query:      f.Search,
		View:       f.View,
		PartialURL: reportURL("/ui/report", f.Search, f.View),
		Loaded:     store.Len(),
	}
	if summary, ok := store.LastImport(); ok {
		page.Notice = newImportNotice(summary)
	}
	return page
}

func newImportNotice(s session.ImportSummary) *importNotice {
	n := &importNotice{
		FileName: s.FileName,
		Bank:     s.Bank.Label(),
		Rows:     s.Rows,
		Accepted: s.Accepted,
		Skipped:  s.Skipped,
	}
	if len(n.Skipped) > maxSkippedShown {
		n.MoreSkipped = len(n.Skipped) - maxSkippedShown
		n.Skipped = n.Skipped[:maxSkippedShown]
	}
	return n
}

// reportURL builds a report link; the default view and an empty search are omitted.
func reportURL(path, q string, v core.View) string {
	vals := url.Values{}
	if q != "" {
		vals.Set("q", q)
	}
	if v != "" && v != core.ViewAll {
		vals.Set("view", string(v))
	}
	if len(vals) == 0 {
		return path
	}
	return path + "?" + vals.Encode()
}

func formatMB(n int64) string {
	mb := float64(n) / (1 << 20)
	if mb == float64(int64(mb)) {
		return fmt.Sprintf("%d MB", int64(mb))
	}
	return fmt.Sprintf("%.1f MB", mb)
}

// transactionJSON is the API shape of a transaction.
type transactionJSON struct {
	ID               string      `json:"id"`
	Date             string      `json:"date,omitempty"`
	Description      string      `json:"description"`
	Amount           string      `json:"amount"`
	CategoryID       string      `json:"category_id,omitempty"`
	Identifier       string      `json:"identifier,omitempty"`
	MonthlyRecurring bool        `json:"monthly_recurring"`
	Status           core.Status `json:"status,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:               t.ID,
		Description:      t.Description,
		Amount:           t.Amount.StringFixed(2),
		CategoryID:       t.CategoryID,
		Identifier:       t.Identifier,
		MonthlyRecurring: t.MonthlyRecurring,
		Status:           core.StatusOf(t),
	}
	if !t.Date.IsEmpty() {
		out.Date = t.Date.Format("2006-01-02")
	}
	return out
}
