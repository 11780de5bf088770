package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"
	"gastos/internal/readers"
	"gastos/internal/session"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrHistoryDisabled = errors.New("import history is disabled")
)

// ExpenseService is the single controller behind the HTTP handlers: it runs
// imports against a session store, validates tagging against the catalog and
// builds reports.
type ExpenseService struct {
	catalog  ports.CategoryReader
	recorder ports.ImportRecorder
	history  ports.ImportLister

	logger *log.Logger
	events *log.StructuredLogger
	newID  func() string
	now    func() time.Time
}

// NewExpenseService wires the service. recorder and history may be nil, in
// which case imports are not recorded and Imports returns ErrHistoryDisabled.
func NewExpenseService(catalog ports.CategoryReader, recorder ports.ImportRecorder, history ports.ImportLister, logger *log.Logger) *ExpenseService {
	logger = logger.WithComponent(log.ComponentImport)
	return &ExpenseService{
		catalog:  catalog,
		recorder: recorder,
		history:  history,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Import parses src with the reader registered for bank and replaces the
// session list with the result. Skipped rows are logged one by one; a failed
// import leaves the list untouched.
func (s *ExpenseService) Import(ctx context.Context, store *session.Store, bank readers.Bank, src readers.Source) (readers.Result, error) {
	fields := log.NewFields().
		WithSession(store.ID()).
		WithUpload(string(bank), src.Name, len(src.Data))

	res, err := store.Import(ctx, bank, src)
	if err != nil {
		s.events.LogError(ctx, "Import failed", err, log.OpImport, fields)
		return readers.Result{}, fmt.Errorf("import %s: %w", src.Name, err)
	}

	for _, row := range res.Skipped {
		s.events.LogSkippedRow(ctx, store.ID(), row.Row, row.Reason, row.Value)
	}
	total := res.Total()
	s.events.LogImportCompleted(ctx, store.ID(), string(bank), src.Name,
		res.Rows, len(res.Transactions), len(res.Skipped), total.StringFixed(2))

	s.record(ctx, core.ImportRecord{
		ID:          s.newID(),
		SessionID:   store.ID(),
		Bank:        string(bank),
		FileName:    src.Name,
		Rows:        res.Rows,
		Accepted:    len(res.Transactions),
		Skipped:     len(res.Skipped),
		TotalAmount: total,
		ImportedAt:  s.now().UTC(),
	})
	return res, nil
}

// record writes the audit entry. Failures are logged and never fail the import.
func (s *ExpenseService) record(ctx context.Context, rec core.ImportRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordImport(ctx, rec); err != nil {
		s.events.LogError(ctx, "Failed to record import", err, log.OpRecord,
			log.NewFields().WithSession(rec.SessionID))
	}
}

// Categories returns the current catalog.
func (s *ExpenseService) Categories(ctx context.Context) (core.Catalog, error) {
	cat, err := s.catalog.Categories(ctx)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("load categories: %w", err)
	}
	return cat, nil
}

// Categorize sets the category of a transaction. An empty id, or the
// uncategorized id, clears it; any other id must exist in the catalog.
func (s *ExpenseService) Categorize(ctx context.Context, store *session.Store, txID, categoryID string) (core.Transaction, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == core.UncategorizedID {
		categoryID = ""
	}
	if categoryID != "" {
		cat, err := s.Categories(ctx)
		if err != nil {
			return core.Transaction{}, err
		}
		if !cat.Has(categoryID) {
			return core.Transaction{}, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryID)
		}
	}

	tx, err := store.SetCategory(txID, categoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("categorize %s: %w", txID, err)
	}
	s.logTag(ctx, store, tx, "category")
	return tx, nil
}

// SetIdentifier stores the free-text identifier; blank input clears it.
func (s *ExpenseService) SetIdentifier(ctx context.Context, store *session.Store, txID, identifier string) (core.Transaction, error) {
	tx, err := store.SetIdentifier(txID, strings.TrimSpace(identifier))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("set identifier %s: %w", txID, err)
	}
	s.logTag(ctx, store, tx, "identifier")
	return tx, nil
}

// ToggleRecurring flips the monthly recurring flag.
func (s *ExpenseService) ToggleRecurring(ctx context.Context, store *session.Store, txID string) (core.Transaction, error) {
	tx, err := store.ToggleRecurring(txID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("toggle recurring %s: %w", txID, err)
	}
	s.logTag(ctx, store, tx, "recurring")
	return tx, nil
}

func (s *ExpenseService) logTag(ctx context.Context, store *session.Store, tx core.Transaction, field string) {
	s.logger.DebugContext(ctx, "Transaction tagged",
		log.FieldOperation, log.OpTag,
		log.FieldSessionID, store.ID(),
		log.FieldTransactionID, tx.ID,
		log.FieldCategoryID, tx.CategoryID,
		"field", field)
}

// Report filters the session list and aggregates it against the catalog.
func (s *ExpenseService) Report(ctx context.Context, store *session.Store, f core.Filter) (core.Report, core.Catalog, error) {
	cat, err := s.Categories(ctx)
	if err != nil {
		return core.Report{}, core.Catalog{}, err
	}
	return core.BuildReport(store.Expenses(), cat, f), cat, nil
}

// HistoryEnabled reports whether Imports can be served.
func (s *ExpenseService) HistoryEnabled() bool {
	return s.history != nil
}

// Imports lists recent import records, newest first.
func (s *ExpenseService) Imports(ctx context.Context, limit int) ([]core.ImportRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	recs, err := s.history.ListImports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return recs, nil
}
