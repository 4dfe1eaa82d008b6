package mensa

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchError covers everything that can go wrong retrieving a venue's feed:
// network failure, a non-2xx response, or a malformed document. Callers treat
// it as "no meals available" for this run rather than crashing the pipeline.
type FetchError struct {
	Location string
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed for %s from %s: %v", e.Location, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client retrieves menu and meta documents from the upstream feed host. Purely
// data-in/data-out; no side effects beyond the network call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewClient(httpClient *http.Client, baseURL, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// FetchMenu retrieves and decodes the menu document for a venue. The returned
// canteen may be nil when the document has no canteen node; the normalizer
// handles that as an empty menu.
func (c *Client) FetchMenu(ctx context.Context, location Location) (*Canteen, error) {
	url := fmt.Sprintf("%s/%d/menu.xml", c.baseURL, location.FeedID)

	data, err := c.fetch(ctx, url)
	if err != nil {
		return nil, &FetchError{Location: location.ID, URL: url, Err: err}
	}

	canteen, err := ParseMenu(data)
	if err != nil {
		return nil, &FetchError{Location: location.ID, URL: url, Err: err}
	}

	return canteen, nil
}

// FetchMeta retrieves and decodes the meta document carrying a venue's
// weekday opening hours.
func (c *Client) FetchMeta(ctx context.Context, location Location) (*OpeningTimes, error) {
	url := fmt.Sprintf("%s/%d/meta.xml", c.baseURL, location.FeedID)

	data, err := c.fetch(ctx, url)
	if err != nil {
		return nil, &FetchError{Location: location.ID, URL: url, Err: err}
	}

	times, err := ParseMeta(data)
	if err != nil {
		return nil, &FetchError{Location: location.ID, URL: url, Err: err}
	}

	return times, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
