package extract

import (
	"context"
	"net/http"
	"time"
)

const (
	fetchTimeout  = 30 * time.Second
	fetchAttempts = 3
	fetchBackoff  = 2 * time.Second
)

// WebFetcher downloads a page and extracts its visible text. Some sites
// reject obvious bot clients, so requests carry browser-like headers.
type WebFetcher struct {
	client *http.Client
}

func NewWebFetcher() *WebFetcher {
	return &WebFetcher{client: &http.Client{Timeout: fetchTimeout}}
}

// NewWebFetcherWithClient allows tests to substitute the HTTP client.
func NewWebFetcherWithClient(client *http.Client) *WebFetcher {
	return &WebFetcher{client: client}
}

// Extract fetches url and returns its visible text, or "" when the page is
// unreachable or has no readable content. Transient failures are retried
// with a short backoff.
func (f *WebFetcher) Extract(ctx context.Context, url string) string {
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ""
			case <-time.After(fetchBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return ""
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")

		resp, err := f.client.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			// Client errors will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return ""
			}
			continue
		}

		text := FromHTML(resp.Body)
		resp.Body.Close()
		if text != "" {
			return text
		}
	}
	return ""
}
