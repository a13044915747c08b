package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetwise/internal/core"
	"budgetwise/internal/importer"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "1").
		Body(map[string]int{"n": 2}).
		Write(rec)

	if rec.Code != http.StatusCreated || rec.Header().Get("X-Custom") != "1" {
		t.Fatalf("status %d, headers %v", rec.Code, rec.Header())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["n"] != 2 {
		t.Fatalf("body = %s, %v", rec.Body.String(), err)
	}
}

func TestJSONResponseBuilderNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", fmt.Errorf("wrap: %w", core.ErrInvalidAmount), http.StatusBadRequest},
		{"invalid budget", core.ErrInvalidBudget, http.StatusBadRequest},
		{"no csv rows", importer.ErrNoRows, http.StatusBadRequest},
		{"not found", fmt.Errorf("transaction x: %w", core.ErrNotFound), http.StatusNotFound},
		{"conflict", core.ErrConflict, http.StatusConflict},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(tt.err).Write(rec)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("error body = %s", rec.Body.String())
			}
			if tt.want == http.StatusInternalServerError && body.Error != "internal error" {
				t.Fatalf("internal details leaked: %q", body.Error)
			}
		})
	}
}
