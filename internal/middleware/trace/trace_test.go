package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "198.51.100.1" })
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if !strings.HasPrefix(seen, "req_") || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Fatalf("total requests = %d", got)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	tests := []struct {
		incoming string
		keep     bool
	}{
		{"abc-123_X", true},
		{"has spaces", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		var seen string
		h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, tt.incoming)
		h.ServeHTTP(httptest.NewRecorder(), req)
		if (seen == tt.incoming) != tt.keep {
			t.Errorf("incoming %q: got %q, keep=%v", tt.incoming, seen, tt.keep)
		}
	}
}

func TestAverageResponseTime(t *testing.T) {
	if (Metrics{}).AverageResponseTime() != 0 {
		t.Fatalf("empty metrics must average to zero")
	}
	m := Metrics{TotalRequests: 4, TotalDurationUs: 2000}
	if got := m.AverageResponseTime().Microseconds(); got != 500 {
		t.Fatalf("average = %dus", got)
	}
}
