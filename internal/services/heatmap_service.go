package services

import (
	"context"

	"github.com/seriesheat/seriesheat/internal/heatmap"
	"github.com/seriesheat/seriesheat/internal/models"
)

// HeatmapService orchestrates the IMDB client, the ratings cache, and the
// heatmap renderer
type HeatmapService interface {
	// SearchShows returns the TV series matching the query, in result-page order
	SearchShows(ctx context.Context, query string) ([]models.Show, error)

	// ResolveShow returns the top search hit for the query
	ResolveShow(ctx context.Context, query string) (models.Show, error)

	// GetSeriesRatings returns the full ratings matrix of a show, served from
	// the cache when available. refresh drops the cached entry first.
	GetSeriesRatings(ctx context.Context, showID string, refresh bool) (*models.SeriesRatings, error)

	// RenderHeatmap renders the ratings of a show as an image, memoizing the
	// result per show, format, and size. refresh re-fetches and re-renders.
	RenderHeatmap(ctx context.Context, showID string, opts heatmap.Options, refresh bool) (*models.RenderedHeatmap, error)

	// Close releases the cache resources held by the service
	Close() error
}
