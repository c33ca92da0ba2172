// Package frankfurter implements rates.Source against the Frankfurter
// currency API (https://api.frankfurter.app), which serves ECB
// reference rates.
package frankfurter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"carteira/internal/rates"

	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "https://api.frankfurter.app"
	sourceName     = "frankfurter"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ rates.Source = (*Client)(nil)

// New creates a client against baseURL (the public API when empty).
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewFromEnv builds a client honoring RATE_SOURCE_URL, for pointing the
// service at a mirror or a test double.
func NewFromEnv() *Client {
	return New(strings.TrimSpace(os.Getenv("RATE_SOURCE_URL")), nil)
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rate fetches the current rate from one currency to another. The API
// answers with the latest official daily fixing.
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, string, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	endpoint := c.baseURL + "/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("fetch rate %s->%s: %w", from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return decimal.Zero, "", fmt.Errorf("rate source returned status %d for %s->%s", resp.StatusCode, from, to)
	}

	var body latestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return decimal.Zero, "", fmt.Errorf("decode rate response: %w", err)
	}

	rate, ok := body.Rates[to]
	if !ok {
		return decimal.Zero, "", fmt.Errorf("rate source response missing %s: %w", to, errors.New("currency not quoted"))
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, "", fmt.Errorf("rate source returned non-positive rate %s for %s->%s", rate, from, to)
	}
	return rate, sourceName, nil
}
