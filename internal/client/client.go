package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/metrics"
	"github.com/seriesheat/seriesheat/internal/models"
	"github.com/seriesheat/seriesheat/internal/parser"
)

// Retry tuning for IMDB fetches.
const (
	fetchMaxRetries = 2
	fetchRetryDelay = 500 * time.Millisecond
	fetchRetryCap   = 5 * time.Second
)

// errPageNotFound marks a fetch that came back 404 so callers can map it to a
// typed not-found error for the resource they were after.
var errPageNotFound = errors.New("page returned status 404")

// Client defines the interface for querying IMDB episode ratings
type Client interface {
	// SearchShows returns the TV series matching the query, in result-page order.
	SearchShows(ctx context.Context, query string) ([]models.Show, error)
	// ResolveShow returns the top search hit for the query.
	ResolveShow(ctx context.Context, query string) (models.Show, error)
	// ListSeasons returns the show title and its season numbers in ascending order.
	ListSeasons(ctx context.Context, showID string) (string, []int, error)
	// FetchSeason fetches the rating table for one season of a show.
	FetchSeason(ctx context.Context, showID string, season int) (models.SeasonRatings, error)

	// StreamSeasonRatings returns a channel that emits per-season results as they
	// become available. The channel is closed when all seasons have been fetched.
	// Errors are sent as StreamResult with a non-nil Err field.
	StreamSeasonRatings(ctx context.Context, showID string, seasons []int) <-chan models.StreamResult[models.SeasonRatings]

	// GetSeriesRatings fetches every season of a show and assembles the complete
	// ratings table, sorted by season.
	GetSeriesRatings(ctx context.Context, showID string) (*models.SeriesRatings, error)

	// Close releases any resources held by the client.
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient       *http.Client
	baseURL          string
	acceptLanguage   string
	fetchConcurrency int
	searchParser     *parser.SearchParser
	episodesParser   *parser.EpisodesParser
}

// NewClient creates a new client instance with proxy configuration if provided
func NewClient(cfg *config.Config) Client {
	// Parse timeout duration
	timeout := 30 * time.Second // default
	if cfg.ClientTimeout != "" {
		if parsedTimeout, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsedTimeout
		}
	}

	// Set up base transport with optional proxy
	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			// Log error but continue without proxy
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			// Override only the Proxy field
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// Retry transient failures (transport errors, 429, 5xx) with exponential
	// backoff. ReturnLastFailure keeps the final response visible to callers
	// so status handling stays in one place.
	retryPolicy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		}).
		WithBackoff(fetchRetryDelay, fetchRetryCap).
		WithMaxRetries(fetchMaxRetries).
		ReturnLastFailure().
		Build()

	// Wrap transport with retries, then compression support (gzip, brotli, zstd)
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: newDecodingTransport(failsafehttp.NewRoundTripper(baseTransport, retryPolicy)),
	}

	fetchConcurrency := cfg.FetchConcurrency
	if fetchConcurrency <= 0 {
		fetchConcurrency = 4
	}

	acceptLanguage := cfg.AcceptLanguage
	if acceptLanguage == "" {
		acceptLanguage = config.DefaultAcceptLanguage
	}

	return &client{
		httpClient:       httpClient,
		baseURL:          cfg.IMDBBaseURL,
		acceptLanguage:   acceptLanguage,
		fetchConcurrency: fetchConcurrency,
		searchParser:     parser.NewSearchParser(),
		episodesParser:   parser.NewEpisodesParser(),
	}
}

// Close releases any resources held by the client.
func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// fetchPage performs an HTTP GET and returns the response body bytes.
// The page label tags the scrape counter ("search", "episodes", "season").
func (c *client) fetchPage(ctx context.Context, url, page string) ([]byte, error) {
	body, err := c.doFetch(ctx, url)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues(page, "error").Inc()
		return nil, err
	}

	metrics.ScrapeRequestsTotal.WithLabelValues(page, "success").Inc()
	return body, nil
}

func (c *client) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", config.GetUserAgent())
	req.Header.Set("Accept-Language", c.acceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errPageNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
