package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiPrefix = "/wp-json/wc/v3"

	AuthModeBasic = "basic"
	AuthModeQuery = "query"

	currencySettingID = "woocommerce_currency"
)

var ErrCurrencyNotFound = errors.New("woocommerce_currency setting not found")

// APIError is returned for any non-2xx response that was not retried away.
type APIError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woocommerce API returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

type Credentials struct {
	BaseURL string
	Key     string
	Secret  string
}

type Options struct {
	PerPage    int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	AuthMode   string
	HTTPClient *http.Client
}

// Client talks to the WooCommerce REST API of a single store.
type Client struct {
	creds      Credentials
	opts       Options
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a WooCommerce REST API client for one store
func NewClient(creds Credentials, opts Options, log zerolog.Logger) *Client {
	if opts.PerPage <= 0 || opts.PerPage > 100 {
		opts.PerPage = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.AuthMode == "" {
		opts.AuthMode = AuthModeBasic
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")

	return &Client{
		creds:      creds,
		opts:       opts,
		httpClient: httpClient,
		log:        log.With().Str("component", "woocommerce").Str("shop", creds.BaseURL).Logger(),
	}
}

// FetchProducts returns the complete catalog. Variable products carry their variations.
// Either every page is fetched or an error is returned.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	products, err := fetchAll[Product](ctx, c, "/products")
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].Type != "variable" {
			continue
		}
		variations, err := c.FetchVariations(ctx, products[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch variations of product %d: %w", products[i].ID, err)
		}
		products[i].Variations = variations
	}

	c.log.Info().Int("products", len(products)).Msg("catalog fetched")
	return products, nil
}

func (c *Client) FetchVariations(ctx context.Context, productID int64) ([]Variation, error) {
	return fetchAll[Variation](ctx, c, fmt.Sprintf("/products/%d/variations", productID))
}

// FetchCurrency reads the store's configured currency code from the general settings group.
func (c *Client) FetchCurrency(ctx context.Context) (string, error) {
	var settings []setting
	if _, err := c.get(ctx, "/settings/general", nil, &settings); err != nil {
		return "", err
	}

	for _, s := range settings {
		if s.ID != currencySettingID {
			continue
		}
		var value string
		if err := json.Unmarshal(s.Value, &value); err != nil {
			return "", fmt.Errorf("invalid %s value: %w", currencySettingID, err)
		}
		return value, nil
	}
	return "", ErrCurrencyNotFound
}

// fetchAll walks page=1.. until the page count from X-WP-TotalPages is reached.
// Without the header the first page is taken as the whole collection.
func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(c.opts.PerPage))
		query.Set("page", strconv.Itoa(page))

		var items []T
		header, err := c.get(ctx, path, query, &items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		totalPages, err := strconv.Atoi(header.Get("X-WP-TotalPages"))
		if err != nil || page >= totalPages || len(items) == 0 {
			return all, nil
		}
	}
}

// get performs a GET against the store API, retrying network errors, 429 and 5xx.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) (http.Header, error) {
	endpoint := c.creds.BaseURL + apiPrefix + path

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoff(attempt, lastErr)); err != nil {
				return nil, err
			}
			c.log.Warn().Err(lastErr).Str("path", path).Int("attempt", attempt).Msg("retrying woocommerce request")
		}

		header, retry, err := c.do(ctx, endpoint, query, out)
		if err == nil {
			return header, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	var re *retryableError
	if errors.As(lastErr, &re) {
		return nil, re.err
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, endpoint string, query url.Values, out interface{}) (http.Header, bool, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.opts.AuthMode == AuthModeQuery {
		q.Set("consumer_key", c.creds.Key)
		q.Set("consumer_secret", c.creds.Secret)
	}

	full := endpoint
	if len(q) > 0 {
		full += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.AuthMode != AuthModeQuery {
		req.SetBasicAuth(c.creds.Key, c.creds.Secret)
	}

	c.log.Debug().Str("url", endpoint).Str("page", query.Get("page")).Msg("woocommerce request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body), URL: endpoint}
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if retry {
			return nil, true, &retryableError{err: apiErr, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		}
		return nil, false, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return resp.Header, true, nil
}

type retryableError struct {
	err        error
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) backoff(attempt int, lastErr error) time.Duration {
	var re *retryableError
	if errors.As(lastErr, &re) && re.retryAfter > 0 {
		return re.retryAfter
	}
	base := c.opts.RetryDelay * time.Duration(attempt)
	if c.opts.RetryDelay <= 0 {
		return 0
	}
	return base + time.Duration(rand.Int64N(int64(c.opts.RetryDelay)/2+1))
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
