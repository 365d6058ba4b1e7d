package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seriesheat/seriesheat/internal/cache"
	"github.com/seriesheat/seriesheat/internal/client"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/heatmap"
	"github.com/seriesheat/seriesheat/internal/models"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// renderCacheTTL bounds how long a memoized image may outlive the ratings it
// was drawn from.
const renderCacheTTL = time.Hour

// defaultRenderCacheSize is used when the configured size is missing.
const defaultRenderCacheSize = 64

// renderCacheEntry represents a memoized rendered heatmap
type renderCacheEntry struct {
	heatmap    *models.RenderedHeatmap
	renderedAt time.Time
}

// DefaultHeatmapService implements HeatmapService with cache-aside ratings
// and an in-process LRU for rendered images
type DefaultHeatmapService struct {
	client       client.Client
	ratingsCache cache.Cache
	renderer     *heatmap.Renderer
	renderCache  *lru.LRU[string, *renderCacheEntry]
}

// NewHeatmapService creates a heatmap service over the given client and
// ratings cache. renderCacheSize bounds the number of memoized images.
func NewHeatmapService(imdbClient client.Client, ratingsCache cache.Cache, renderCacheSize int) HeatmapService {
	if renderCacheSize <= 0 {
		renderCacheSize = defaultRenderCacheSize
	}

	return &DefaultHeatmapService{
		client:       imdbClient,
		ratingsCache: ratingsCache,
		renderer:     heatmap.NewRenderer(),
		renderCache:  lru.NewLRU[string, *renderCacheEntry](renderCacheSize, nil, renderCacheTTL),
	}
}

// SearchShows passes the search through to the IMDB client
func (s *DefaultHeatmapService) SearchShows(ctx context.Context, query string) ([]models.Show, error) {
	return s.client.SearchShows(ctx, query)
}

// ResolveShow passes the lookup through to the IMDB client
func (s *DefaultHeatmapService) ResolveShow(ctx context.Context, query string) (models.Show, error) {
	return s.client.ResolveShow(ctx, query)
}

// GetSeriesRatings returns the ratings matrix for a show, cache-aside over
// the client. Scrape failures leave the cache untouched.
func (s *DefaultHeatmapService) GetSeriesRatings(ctx context.Context, showID string, refresh bool) (*models.SeriesRatings, error) {
	logger := config.GetLogger()
	key := ratingsCacheKey(showID)

	if refresh {
		s.ratingsCache.Delete(key)
	} else if cached, found := s.ratingsCache.Get(key); found {
		var series models.SeriesRatings
		if err := json.Unmarshal(cached, &series); err == nil {
			logger.Debug().
				Str("show_id", showID).
				Time("fetchedAt", series.FetchedAt).
				Msg("Serving ratings from cache")
			return &series, nil
		}

		logger.Warn().Str("show_id", showID).Msg("Dropping undecodable ratings cache entry")
		s.ratingsCache.Delete(key)
	}

	series, err := s.client.GetSeriesRatings(ctx, showID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(series); err == nil {
		s.ratingsCache.Set(key, encoded)
	} else {
		logger.Warn().Err(err).Str("show_id", showID).Msg("Failed to encode ratings for caching")
	}

	return series, nil
}

// RenderHeatmap renders the ratings of a show as an image. Rendered images
// are memoized per show, format, and size on top of the ratings cache.
func (s *DefaultHeatmapService) RenderHeatmap(ctx context.Context, showID string, opts heatmap.Options, refresh bool) (*models.RenderedHeatmap, error) {
	logger := config.GetLogger()
	opts = opts.Normalized()
	key := renderCacheKey(showID, opts)

	if refresh {
		s.renderCache.Remove(key)
	} else if entry, found := s.renderCache.Get(key); found {
		logger.Debug().
			Str("show_id", showID).
			Time("renderedAt", entry.renderedAt).
			Msg("Serving heatmap from render cache")
		return entry.heatmap, nil
	}

	series, err := s.GetSeriesRatings(ctx, showID, refresh)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(series, opts)
	if err != nil {
		return nil, err
	}

	rendered := &models.RenderedHeatmap{
		Filename:    heatmap.DefaultFilename(series.Title, opts.Format),
		Content:     content,
		ContentType: contentTypeForFormat(opts.Format),
	}
	s.renderCache.Add(key, &renderCacheEntry{
		heatmap:    rendered,
		renderedAt: time.Now(),
	})

	logger.Info().
		Str("show_id", showID).
		Str("filename", rendered.Filename).
		Int("size", len(content)).
		Msg("Rendered heatmap")

	return rendered, nil
}

// Close releases the ratings cache. The client is owned by the caller.
func (s *DefaultHeatmapService) Close() error {
	return s.ratingsCache.Close()
}

// ratingsCacheKey formats the cache key for a show's ratings JSON.
func ratingsCacheKey(showID string) string {
	return fmt.Sprintf("ratings:%s", showID)
}

// renderCacheKey formats the memoization key for a rendered image.
func renderCacheKey(showID string, opts heatmap.Options) string {
	return fmt.Sprintf("%s:%s:%gx%g", showID, opts.Format, opts.WidthInches, opts.HeightInches)
}

// contentTypeForFormat maps an image format to its MIME type
func contentTypeForFormat(format string) string {
	switch format {
	case heatmap.FormatSVG:
		return "image/svg+xml"
	case heatmap.FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
