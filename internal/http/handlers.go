package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/readers"
	"gastos/internal/services"
	"gastos/internal/session"
)

const recentImports = 5

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := s.newIndexPage()
	if store, ok := s.currentSession(r); ok {
		page.HasReport = store.Len() > 0
		if summary, imported := store.LastImport(); imported && !page.HasReport {
			page.Notice = newImportNotice(summary)
		}
	}
	if s.service.HistoryEnabled() {
		recs, err := s.service.Imports(r.Context(), recentImports)
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Import history unavailable", log.FieldError, err)
		}
		page.Imports = recs
	}
	s.render(w, r, http.StatusOK, "index.html", page)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	params, err := ParseUpload(w, r, s.cfg.MaxUploadBytes, s.cfg.AllowedExtensions)
	if err != nil {
		msg, known := s.uploadMessage(err)
		if known {
			logger.InfoContext(ctx, "Upload rejected", log.FieldError, err)
			s.uploadFailed(w, r, http.StatusUnprocessableEntity, msg)
			return
		}
		logger.WarnContext(ctx, "Upload form unreadable", log.FieldError, err)
		s.uploadFailed(w, r, http.StatusBadRequest, msg)
		return
	}

	store := s.ensureSession(w, r)
	res, err := s.service.Import(ctx, store, params.Bank, params.Source)
	if err != nil {
		s.uploadFailed(w, r, http.StatusUnprocessableEntity, importMessage(err))
		return
	}

	// An import always replaces the list. With nothing accepted the report
	// sends the user back to the upload page, which shows the notice.
	if !isHTMX(r) {
		http.Redirect(w, r, "/report", http.StatusSeeOther)
		return
	}
	b := NewFragment().
		Redirect("/report").
		TransactionsUpdated(len(res.Transactions))
	switch n := len(res.Skipped); {
	case len(res.Transactions) == 0:
	case n > 0:
		b.Notify(LevelWarning, fmt.Sprintf("Imported %d transactions, %d rows skipped.", len(res.Transactions), n))
	default:
		b.Notify(LevelSuccess, fmt.Sprintf("Imported %d transactions.", len(res.Transactions)))
	}
	b.Write(w)
}

// uploadMessage maps form errors to user text. known is false for
// failures that are not the user's fault.
func (s *Server) uploadMessage(err error) (msg string, known bool) {
	switch {
	case errors.Is(err, ErrUnsupportedExtension):
		return fmt.Sprintf("Unsupported file type. Please upload one of: %s.", strings.Join(s.cfg.AllowedExtensions, ", ")), true
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("The file is larger than %s.", formatMB(s.cfg.MaxUploadBytes)), true
	case errors.Is(err, ErrEmptyFile):
		return "The file is empty.", true
	case errors.Is(err, ErrMissingFile):
		return "Please choose a file to upload.", true
	default:
		return "The upload could not be read.", false
	}
}

func importMessage(err error) string {
	switch {
	case errors.Is(err, readers.ErrNoReader):
		return "No reader registered for the selected bank."
	case errors.Is(err, readers.ErrUnreadable):
		return "The file could not be read as a spreadsheet."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The import was interrupted. Please try again."
	default:
		return "The file could not be imported."
	}
}

// uploadFailed shows msg inline for htmx, or re-renders the upload page.
func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isHTMX(r) {
		ErrorFragment(status, msg).Write(w)
		return
	}
	page := s.newIndexPage()
	page.Error = msg
	if store, ok := s.currentSession(r); ok {
		page.HasReport = store.Len() > 0
	}
	s.render(w, r, status, "index.html", page)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	store, ok := s.currentSession(r)
	if !ok || store.Len() == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	page, err := s.reportPage(r.Context(), store, ParseFilter(r.URL.Query()))
	if err != nil {
		ErrorFragment(http.StatusInternalServerError, "Could not load the report.").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "report.html", page)
}

func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	store, ok := s.currentSession(r)
	if !ok || store.Len() == 0 {
		if isHTMX(r) {
			NewFragment().Redirect("/").Write(w)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	page, err := s.reportPage(r.Context(), store, ParseFilter(r.URL.Query()))
	if err != nil {
		ErrorFragment(http.StatusInternalServerError, "Could not load the report.").Write(w)
		return
	}
	page.Partial = true
	s.render(w, r, http.StatusOK, "report_body", page)
}

func (s *Server) reportPage(ctx context.Context, store *session.Store, f core.Filter) (reportPage, error) {
	report, cat, err := s.service.Report(ctx, store, f)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Report failed",
			log.FieldError, err,
			log.FieldSessionID, store.ID())
		return reportPage{}, err
	}
	return newReportPage(store, report, cat), nil
}

// tagFunc applies one tagging operation read from the request body.
type tagFunc func(ctx context.Context, store *session.Store, txID string, body *RequestBodyParser) (core.Transaction, error)

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	s.tag(w, r, "category", func(ctx context.Context, store *session.Store, txID string, body *RequestBodyParser) (core.Transaction, error) {
		return s.service.Categorize(ctx, store, txID, body.Get("category_id"))
	})
}

func (s *Server) handleSetIdentifier(w http.ResponseWriter, r *http.Request) {
	s.tag(w, r, "identifier", func(ctx context.Context, store *session.Store, txID string, body *RequestBodyParser) (core.Transaction, error) {
		identifier, err := ValidateIdentifier(body.Get("identifier"))
		if err != nil {
			return core.Transaction{}, err
		}
		return s.service.SetIdentifier(ctx, store, txID, identifier)
	})
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	s.tag(w, r, "recurring", func(ctx context.Context, store *session.Store, txID string, _ *RequestBodyParser) (core.Transaction, error) {
		return s.service.ToggleRecurring(ctx, store, txID)
	})
}

// tag runs fn and answers in the caller's format: JSON for JSON bodies, the
// refreshed row for htmx, a redirect back to the report otherwise.
func (s *Server) tag(w http.ResponseWriter, r *http.Request, field string, fn tagFunc) {
	ctx := r.Context()
	store, ok := s.currentSession(r)
	if !ok {
		ErrorFragment(http.StatusNotFound, "No transactions loaded.").Write(w)
		return
	}

	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		ErrorFragment(http.StatusBadRequest, "Invalid request body.").Write(w)
		return
	}

	txID := chi.URLParam(r, "id")
	tx, err := fn(ctx, store, txID, body)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			ErrorFragment(http.StatusNotFound, "Transaction not found.").Write(w)
		case errors.Is(err, services.ErrUnknownCategory):
			ErrorFragment(http.StatusUnprocessableEntity, "Unknown category.").Write(w)
		case errors.Is(err, ErrIdentifierTooLong):
			ErrorFragment(http.StatusUnprocessableEntity, fmt.Sprintf("The identifier can have at most %d characters.", maxIdentifierLen)).Write(w)
		default:
			log.FromContext(ctx).ErrorContext(ctx, "Tagging failed",
				log.FieldError, err,
				log.FieldOperation, log.OpTag,
				log.FieldTransactionID, txID,
				"field", field)
			ErrorFragment(http.StatusInternalServerError, "Could not update the transaction.").Write(w)
		}
		return
	}

	f := core.Filter{Search: body.Get("q"), View: core.ParseView(body.Get("view"))}
	switch {
	case body.IsJSON():
		writeJSON(w, http.StatusOK, toTransactionJSON(tx))
	case isHTMX(r):
		s.writeRow(w, r, tx, field, f)
	default:
		http.Redirect(w, r, reportURL("/report", f.Search, f.View), http.StatusSeeOther)
	}
}

func (s *Server) writeRow(w http.ResponseWriter, r *http.Request, tx core.Transaction, field string, f core.Filter) {
	ctx := r.Context()
	cat, err := s.service.Categories(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Categories unavailable", log.FieldError, err)
		ErrorFragment(http.StatusInternalServerError, "Could not load categories.").Write(w)
		return
	}

	row := txRow{
		Transaction:   tx,
		Status:        core.StatusOf(tx),
		CategoryName:  core.UncategorizedName,
		CategoryColor: core.UncategorizedColor,
		Categories:    cat.All(),
		Query:         f.Search,
		View:          f.View,
	}
	if c, ok := cat.Lookup(tx.CategoryID); ok {
		row.CategoryName = c.Name
		row.CategoryColor = c.Color
	}

	var sb strings.Builder
	if err := s.templates.ExecuteTemplate(&sb, "tx_row", row); err != nil {
		s.logRenderError(ctx, "tx_row", err)
		ErrorFragment(http.StatusInternalServerError, "Could not render the transaction.").Write(w)
		return
	}

	NewFragment().
		TransactionTagged(tx.ID, field).
		ReportRefresh().
		HTML(sb.String()).
		Write(w)
}
