package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budgetwise/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"type":"expense","amount":"12.50","date":"2024-03-01"}`, false},
		{"unknown field", `{"type":"expense","color":"red"}`, true},
		{"trailing data", `{"type":"expense"} {}`, true},
		{"not json", `type=expense`, true},
		{"bad amount", `{"amount":"twelve"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v transactionRequest
			err := decodeJSON(httptest.NewRecorder(), req, &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errMalformedBody) {
				t.Fatalf("err %v does not wrap errMalformedBody", err)
			}
		})
	}
}

func TestTransactionRequestToTransaction(t *testing.T) {
	req := transactionRequest{
		Type:        "Expense",
		Amount:      core.Cents(1250),
		Category:    " food\x00 ",
		Description: "  Lunch\x07  ",
		Date:        "2024-03-01",
	}
	tx, err := req.toTransaction()
	if err != nil {
		t.Fatalf("toTransaction: %v", err)
	}
	if tx.Type != core.Expense || tx.Category != "food" || tx.Description != "Lunch" || tx.Date != core.NewDate(2024, 3, 1) {
		t.Fatalf("got %+v", tx)
	}

	req.Type = "refund"
	if _, err := req.toTransaction(); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("type err = %v", err)
	}
	req.Type = "income"
	req.Date = "03/01/2024"
	if _, err := req.toTransaction(); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("date err = %v", err)
	}
}

func TestParsePeriodAndCategory(t *testing.T) {
	tests := []struct {
		query        string
		wantPeriod   core.Period
		wantCategory string
	}{
		{"", core.PeriodMonth, ""},
		{"period=week&category=food", core.PeriodWeek, "food"},
		{"period=TODAY&category=all", core.PeriodToday, ""},
		{"period=decade", core.PeriodAll, ""},
		{"period=all", core.PeriodAll, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/transactions?"+tt.query, nil)
			if got := ParsePeriod(r); got != tt.wantPeriod {
				t.Fatalf("period = %q, want %q", got, tt.wantPeriod)
			}
			if got := ParseCategory(r); got != tt.wantCategory {
				t.Fatalf("category = %q, want %q", got, tt.wantCategory)
			}
		})
	}
}

func TestParseMonths(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 6, false},
		{"months=12", 12, false},
		{"months=0", 0, true},
		{"months=25", 0, true},
		{"months=abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/trend?"+tt.query, nil)
			got, err := ParseMonths(r)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Fatalf("ParseMonths = %d, %v", got, err)
			}
		})
	}
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		t.Fatalf("GET should be allowed")
	}
	resp := RequireMethod(r, http.MethodPost)
	if resp == nil {
		t.Fatalf("GET should be rejected")
	}
	rec := httptest.NewRecorder()
	resp.Write(rec)
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != "POST" {
		t.Fatalf("status %d, allow %q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}
