// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating HTTP request data.
// It keeps JSON decoding, query parameter handling and input sanitization in
// one place so handlers stay short.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"budgetwise/internal/analytics"
	"budgetwise/internal/core"
)

const (
	maxJSONBody = 1 << 20
	maxCSVBody  = 5 << 20
	maxTrend    = 24
)

// errMalformedBody marks a request body that is not the expected JSON.
var errMalformedBody = errors.New("malformed request body")

// transactionRequest is the body of POST /api/transactions. Amount is in
// dollars, as a number or numeric string.
type transactionRequest struct {
	Type        string     `json:"type"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
}

// toTransaction validates the fields that only the API can get wrong; the
// rest is checked by the service.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Type:        typ,
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Date:        date,
	}, nil
}

// decodeJSON reads a single JSON value into v. Unknown fields and trailing
// data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON value", errMalformedBody)
	}
	return nil
}

// ParsePeriod reads ?period=, defaulting to the current month when absent.
// Unknown values mean all time.
func ParsePeriod(r *http.Request) core.Period {
	v := strings.TrimSpace(r.URL.Query().Get("period"))
	if v == "" {
		return core.PeriodMonth
	}
	return core.ParsePeriod(v)
}

// ParseCategory reads ?category=; "" and "all" both select everything.
func ParseCategory(r *http.Request) string {
	c := sanitizeInput(r.URL.Query().Get("category"))
	if strings.EqualFold(c, "all") {
		return ""
	}
	return c
}

// ParseMonths reads ?months= for the trend endpoint.
func ParseMonths(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("months"))
	if v == "" {
		return analytics.DefaultTrendMonths, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxTrend {
		return 0, fmt.Errorf("months must be between 1 and %d", maxTrend)
	}
	return n, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", strings.Join(methods, ", "))
}
