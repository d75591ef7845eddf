package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReprocessClient_Reprocess(t *testing.T) {
	t.Parallel()

	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewReprocessClient(srv.URL).Reprocess(context.Background(), "15"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/reprocess/15" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestReprocessClient_Non2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := NewReprocessClient(srv.URL).Reprocess(context.Background(), "15"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReprocessClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if err := NewReprocessClient(url).Reprocess(context.Background(), "15"); err == nil {
		t.Fatalf("expected error")
	}
}
