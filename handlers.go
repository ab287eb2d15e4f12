package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// ContentHandler processes URLs based on response inspection
type ContentHandler interface {
	CanHandle(url string, resp *http.Response) bool
	Handle(url string, resp *http.Response) (DraftInput, error)
}

// PlainTextHandler handles responses that are already plain text.
type PlainTextHandler struct{}

func (h *PlainTextHandler) CanHandle(url string, resp *http.Response) bool {
	contentType := resp.Header.Get("Content-Type")
	return strings.Contains(contentType, "text/plain")
}

func (h *PlainTextHandler) Handle(url string, resp *http.Response) (DraftInput, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DraftInput{}, fmt.Errorf("reading response body: %w", err)
	}
	return TextDraft(string(body)), nil
}

// HTMLHandler handles regular HTML content (fallback)
type HTMLHandler struct {
	converter *md.Converter
}

func (h *HTMLHandler) CanHandle(url string, resp *http.Response) bool {
	return true // Always handles as fallback
}

func (h *HTMLHandler) Handle(url string, resp *http.Response) (DraftInput, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DraftInput{}, fmt.Errorf("reading response body: %w", err)
	}

	markdown, err := h.converter.ConvertString(string(body))
	if err != nil {
		return DraftInput{}, fmt.Errorf("converting HTML to markdown: %w", err)
	}

	return TextDraft(markdown), nil
}
