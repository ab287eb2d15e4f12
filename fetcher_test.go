package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchDraft_HTMLPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><h1>Carbonara</h1><p>Fry the guanciale.</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewDraftFetcher()
	draft, err := fetcher.FetchDraft(server.URL)
	if err != nil {
		t.Fatalf("FetchDraft() unexpected error: %v", err)
	}

	if draft.Kind != InputText {
		t.Errorf("Kind = %v, want InputText", draft.Kind)
	}
	if !strings.Contains(draft.Text, "Carbonara") {
		t.Errorf("Text = %q, want page content", draft.Text)
	}
}

func TestFetchDraft_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Mix flour and water."))
	}))
	defer server.Close()

	fetcher := NewDraftFetcher()
	draft, err := fetcher.FetchDraft(server.URL)
	if err != nil {
		t.Fatalf("FetchDraft() unexpected error: %v", err)
	}

	if draft.Text != "Mix flour and water." {
		t.Errorf("Text = %q, want raw body", draft.Text)
	}
}

func TestFetchDraft_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewDraftFetcher()
	_, err := fetcher.FetchDraft(server.URL)
	if err == nil {
		t.Fatal("FetchDraft() expected error for 404, got nil")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("FetchDraft() error = %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
}

func TestFetchDraft_VideoURLSkipsNetwork(t *testing.T) {
	// No server is running at the video URL; a network hit would fail.
	fetcher := NewDraftFetcher()
	draft, err := fetcher.FetchDraft("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchDraft() unexpected error: %v", err)
	}

	if draft.Kind != InputVideo {
		t.Errorf("Kind = %v, want InputVideo", draft.Kind)
	}
	if draft.VideoURI != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("VideoURI = %q, want canonical watch URL", draft.VideoURI)
	}
}
