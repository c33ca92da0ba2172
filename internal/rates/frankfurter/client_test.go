package frankfurter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q, want USD", got)
		}
		if got := r.URL.Query().Get("to"); got != "BRL" {
			t.Errorf("to = %q, want BRL", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2024-06-03","rates":{"BRL":5.2417}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	rate, source, err := c.Rate(context.Background(), "USD", "BRL")
	if err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	if source != "frankfurter" {
		t.Errorf("source = %q, want frankfurter", source)
	}
	if rate.String() != "5.2417" {
		t.Errorf("rate = %s, want 5.2417", rate)
	}
}

func TestClientRateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: ""},
		{name: "not found pair", status: http.StatusNotFound, body: `{"message":"not found"}`},
		{name: "missing currency", status: http.StatusOK, body: `{"base":"USD","rates":{}}`},
		{name: "malformed json", status: http.StatusOK, body: `{"rates":`},
		{name: "non-positive rate", status: http.StatusOK, body: `{"rates":{"BRL":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, srv.Client())
			if _, _, err := c.Rate(context.Background(), "USD", "BRL"); err == nil {
				t.Errorf("Rate() = nil error, want failure")
			}
		})
	}
}
