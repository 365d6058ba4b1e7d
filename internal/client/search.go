package client

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seriesheat/seriesheat/internal/apperrors"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/models"
	"github.com/seriesheat/seriesheat/internal/parser"
)

// SearchShows queries the IMDB title search restricted to TV series and returns
// the parsed candidates in result-page order.
func (c *client) SearchShows(ctx context.Context, query string) ([]models.Show, error) {
	logger := config.GetLogger()
	logger.Info().Str("query", query).Msg("Searching IMDB for TV series")

	searchURL, err := c.buildSearchURL(query)
	if err != nil {
		return nil, fmt.Errorf("build search URL: %w", err)
	}

	bodyBytes, err := c.fetchPage(ctx, searchURL, "search")
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	utf8Body, err := parser.NewUTF8Reader(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	shows, err := c.searchParser.ParseHtml(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	logger.Debug().Str("query", query).Int("results", len(shows)).Msg("Parsed search results")
	return shows, nil
}

// ResolveShow returns the top search hit for the query, or ErrNotFound when
// the search comes back empty.
func (c *client) ResolveShow(ctx context.Context, query string) (models.Show, error) {
	shows, err := c.SearchShows(ctx, query)
	if err != nil {
		return models.Show{}, err
	}

	if len(shows) == 0 {
		return models.Show{}, apperrors.NewShowNotFoundError(query)
	}

	logger := config.GetLogger()
	logger.Info().
		Str("query", query).
		Str("showID", shows[0].ID).
		Str("title", shows[0].Title).
		Msg("Resolved show from search")

	return shows[0], nil
}

func (c *client) buildSearchURL(query string) (string, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/search/title/"
	q := baseURL.Query()
	q.Set("title", query)
	q.Set("title_type", "tv_series")
	baseURL.RawQuery = q.Encode()

	return baseURL.String(), nil
}
