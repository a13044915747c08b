package http

import (
	"errors"
	"net/http"
	"strings"

	"budgetwise/internal/core"
	"budgetwise/internal/importer"
	"budgetwise/internal/log"
)

type listResponse struct {
	Period       core.Period        `json:"period"`
	Category     string             `json:"category,omitempty"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

type recommendationsResponse struct {
	Recommendations  []core.Recommendation `json:"recommendations"`
	PotentialSavings core.Money            `json:"potentialSavings"`
}

type trendResponse struct {
	Months int                `json:"months"`
	Trend  []core.TrendBucket `json:"trend"`
}

type importResponse struct {
	Imported     int                `json:"imported"`
	Transactions []core.Transaction `json:"transactions"`
	Errors       []string           `json:"errors"`
}

// fail writes the error response for err and logs anything that is not the
// caller's fault.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := FromError(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op,
				log.NewFields().WithClientIP(s.detector.ExtractClientIP(r)))
	}
	resp.Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriod(r)
	category := ParseCategory(r)
	txs, err := s.transactions.List(r.Context(), period, category)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(listResponse{
		Period:       period,
		Category:     category,
		Count:        len(txs),
		Transactions: nonNil(txs),
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		s.fail(w, r, log.OpValidate, err)
		return
	}
	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogTransactionCreated(r.Context(), created.ID, string(created.Type), created.Category, created.Amount.Cents)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+created.ID).
		Body(created).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	b, err := s.profile.Budgets(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handlePutBudgets(w http.ResponseWriter, r *http.Request) {
	var b core.BudgetConfig
	if err := decodeJSON(w, r, &b); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	if err := s.profile.SaveBudgets(r.Context(), b); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.handleGetBudgets(w, r)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.profile.Settings(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(st).Write(w)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var st core.Settings
	if err := decodeJSON(w, r, &st); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	if err := s.profile.SaveSettings(r.Context(), st); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.handleGetSettings(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.insights.Dashboard(r.Context(), ParsePeriod(r))
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, total, err := s.insights.Recommendations(r.Context())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Body(recommendationsResponse{
		Recommendations:  nonNil(recs),
		PotentialSavings: total,
	}).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	months, err := ParseMonths(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	trend, err := s.insights.Trend(r.Context(), months)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Body(trendResponse{Months: months, Trend: trend}).Write(w)
}

// handleImportCSV stores the rows of a bank statement posted as the raw body
// or as the "file" field of a multipart form.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBody)
	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			BadRequestError("missing file field").Write(w)
			return
		}
		defer f.Close()
		body = f
	}

	res, err := s.transactions.ImportCSV(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "file too large").Write(w)
			return
		}
		if errors.Is(err, importer.ErrNoRows) && len(res.Errors) > 0 {
			NewJSONResponse().Status(http.StatusBadRequest).Body(errorBody{
				Error:   err.Error(),
				Details: rowErrorMessages[importer.RowError](res.Errors),
			}).Write(w)
			return
		}
		s.fail(w, r, log.OpImport, err)
		return
	}
	NewJSONResponse().Body(importResponse{
		Imported:     len(res.Transactions),
		Transactions: nonNil(res.Transactions),
		Errors:       rowErrorMessages[importer.RowError](res.Errors),
	}).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.profile.Export(r.Context())
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	NewJSONResponse().
		Attachment("budgetwise-" + snap.ExportedAt.Format("2006-01-02") + ".json").
		Body(snap).
		Write(w)
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	if err := s.profile.ImportSnapshot(r.Context(), snap); err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.profile.Clear(r.Context()); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// nonNil keeps empty lists as [] rather than null in responses.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
