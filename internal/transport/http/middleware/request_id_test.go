package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDPropagatesOrReplaces(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{"caller id", "abc-123", true},
		{"missing", "", false},
		{"too long", strings.Repeat("x", 65), false},
		{"control chars", "bad\nid", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("X-Request-ID", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if seen == "" || rec.Header().Get("X-Request-ID") != seen {
			t.Fatalf("%s: header and context id differ: %q vs %q", tc.name, rec.Header().Get("X-Request-ID"), seen)
		}
		if (seen == tc.header) != tc.keep {
			t.Fatalf("%s: expected keep=%v, got %q", tc.name, tc.keep, seen)
		}
	}
}
