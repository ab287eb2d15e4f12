package main

import (
	"io"
	"net/http"
	"strings"
	"testing"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

func fakeResponse(contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestPlainTextHandler_CanHandle(t *testing.T) {
	handler := &PlainTextHandler{}

	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{
			name:        "plain text",
			contentType: "text/plain",
			expected:    true,
		},
		{
			name:        "plain text with charset",
			contentType: "text/plain; charset=utf-8",
			expected:    true,
		},
		{
			name:        "html page",
			contentType: "text/html",
			expected:    false,
		},
		{
			name:        "no content type",
			contentType: "",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fakeResponse(tt.contentType, "")
			if got := handler.CanHandle("https://example.com/recipe.txt", resp); got != tt.expected {
				t.Errorf("CanHandle() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPlainTextHandler_Handle(t *testing.T) {
	handler := &PlainTextHandler{}
	resp := fakeResponse("text/plain", "Boil pasta. Add sauce.")

	draft, err := handler.Handle("https://example.com/recipe.txt", resp)
	if err != nil {
		t.Fatalf("Handle() unexpected error: %v", err)
	}

	if draft.Kind != InputText {
		t.Errorf("Kind = %v, want InputText", draft.Kind)
	}
	if draft.Text != "Boil pasta. Add sauce." {
		t.Errorf("Text = %q, want raw body", draft.Text)
	}
}

func TestHTMLHandler_Handle(t *testing.T) {
	handler := &HTMLHandler{converter: md.NewConverter("", true, nil)}
	html := "<html><body><h1>Lasagna</h1><p>Layer the <strong>noodles</strong>.</p></body></html>"
	resp := fakeResponse("text/html", html)

	draft, err := handler.Handle("https://example.com/lasagna", resp)
	if err != nil {
		t.Fatalf("Handle() unexpected error: %v", err)
	}

	if draft.Kind != InputText {
		t.Errorf("Kind = %v, want InputText", draft.Kind)
	}
	if !strings.Contains(draft.Text, "# Lasagna") {
		t.Errorf("Text = %q, want markdown heading", draft.Text)
	}
	if !strings.Contains(draft.Text, "**noodles**") {
		t.Errorf("Text = %q, want markdown emphasis", draft.Text)
	}
	if strings.Contains(draft.Text, "<p>") {
		t.Errorf("Text = %q, want HTML tags stripped", draft.Text)
	}
}

func TestHTMLHandler_CanHandle_IsFallback(t *testing.T) {
	handler := &HTMLHandler{converter: md.NewConverter("", true, nil)}
	resp := fakeResponse("application/octet-stream", "")

	if !handler.CanHandle("https://example.com/anything", resp) {
		t.Error("CanHandle() = false, want fallback handler to accept everything")
	}
}
