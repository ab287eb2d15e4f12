package main

import (
	"fmt"
	"net/http"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// DraftFetcher turns a URL into a recipe draft. Video URLs are recognized
// up front and passed through as references for the model to watch; page
// URLs are fetched and reduced to text by a handler chain.
type DraftFetcher struct {
	handlers []ContentHandler
	client   *http.Client
}

// NewDraftFetcher creates a fetcher with the default handler chain.
func NewDraftFetcher() *DraftFetcher {
	f := &DraftFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}

	// Register handlers (most specific first)
	f.AddHandler(&PlainTextHandler{})
	f.AddHandler(&HTMLHandler{converter: md.NewConverter("", true, nil)}) // fallback

	return f
}

// AddHandler adds a content handler to the chain.
func (f *DraftFetcher) AddHandler(handler ContentHandler) {
	f.handlers = append(f.handlers, handler)
}

// FetchDraft fetches and processes the URL into a draft. Video URLs never
// hit the network here; the model consumes them by reference.
func (f *DraftFetcher) FetchDraft(url string) (DraftInput, error) {
	if watchURL, ok := CanonicalVideoURL(url); ok {
		return VideoDraft(watchURL), nil
	}

	resp, err := f.client.Get(url)
	if err != nil {
		return DraftInput{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	debugLog("fetched %s: status=%d content-type=%s", url, resp.StatusCode, resp.Header.Get("Content-Type"))

	if resp.StatusCode != http.StatusOK {
		return DraftInput{}, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	// Find handler based on URL + response headers
	for _, handler := range f.handlers {
		if handler.CanHandle(url, resp) {
			return handler.Handle(url, resp)
		}
	}

	return DraftInput{}, fmt.Errorf("no handler found for %s", url)
}
