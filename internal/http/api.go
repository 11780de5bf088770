package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/services"
)

type breakdownResponse struct {
	Query   string        `json:"q"`
	View    core.View     `json:"view"`
	Total   string        `json:"total"`
	Count   int           `json:"count"`
	Buckets []core.Bucket `json:"buckets"`
}

type importsResponse struct {
	Imports []core.ImportRecord `json:"imports"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleBreakdown serves the per-category totals of the filtered session list.
// A request without a session gets an empty breakdown.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := ParseFilter(r.URL.Query())
	resp := breakdownResponse{
		Query:   f.Search,
		View:    f.View,
		Total:   decimal.Zero.StringFixed(2),
		Buckets: []core.Bucket{},
	}

	store, ok := s.currentSession(r)
	if !ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	report, _, err := s.service.Report(ctx, store, f)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Breakdown failed", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load categories"})
		return
	}
	resp.Total = report.Total.StringFixed(2)
	resp.Count = len(report.Transactions)
	resp.Buckets = report.Buckets
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recs, err := s.service.Imports(ctx, ParseLimit(r.URL.Query(), 20, 200))
	if err != nil {
		if errors.Is(err, services.ErrHistoryDisabled) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Import history failed", log.FieldError, err, log.FieldOperation, log.OpList)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not list imports"})
		return
	}
	if recs == nil {
		recs = []core.ImportRecord{}
	}
	writeJSON(w, http.StatusOK, importsResponse{Imports: recs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
