package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/seriesheat/seriesheat/internal/cache"
	"github.com/seriesheat/seriesheat/internal/client"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/heatmap"
	"github.com/seriesheat/seriesheat/internal/services"
)

var showIDPattern = regexp.MustCompile(`^tt\d+$`)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		title   = pflag.StringP("title", "t", "", "show title to search for")
		showID  = pflag.String("id", "", "IMDB show ID like tt0903747, skips the search")
		outPath = pflag.StringP("out", "o", "", "output file path (default <Title>_Heatmap.<format> in the working directory)")
		format  = pflag.String("format", heatmap.FormatPNG, "image format, png or svg")
		width   = pflag.Float64("width", cfg.Heatmap.WidthInches, "image width in inches")
		height  = pflag.Float64("height", cfg.Heatmap.HeightInches, "image height in inches")
		refresh = pflag.Bool("refresh", false, "re-scrape instead of using cached ratings")
		timeout = pflag.Duration("timeout", 2*time.Minute, "overall deadline for scraping and rendering")
	)
	pflag.Parse()

	if (*title == "") == (*showID == "") {
		pflag.Usage()
		logger.Fatal().Msg("Exactly one of --title and --id is required")
	}
	if *showID != "" && !showIDPattern.MatchString(*showID) {
		logger.Fatal().Str("id", *showID).Msg("Show ID must look like tt0903747")
	}
	if *format != heatmap.FormatPNG && *format != heatmap.FormatSVG {
		logger.Fatal().Str("format", *format).Msg("Format must be png or svg")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	imdbClient := client.NewClient(cfg)

	// One-shot runs always use the in-memory cache so the CLI never depends
	// on a Redis server.
	ratingsCache, err := cache.New("memory", cache.ProviderConfig{
		Size: cfg.Cache.Size,
		TTL:  time.Hour,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cache")
	}

	service := services.NewHeatmapService(imdbClient, ratingsCache, cfg.Heatmap.CacheSize)
	defer func() {
		if err := service.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close service")
		}
		_ = imdbClient.Close()
	}()

	id := *showID
	if id == "" {
		show, err := service.ResolveShow(ctx, *title)
		if err != nil {
			logger.Fatal().Err(err).Str("title", *title).Msg("Failed to resolve show")
		}
		logger.Info().
			Str("show_id", show.ID).
			Str("title", show.Title).
			Int("year", show.Year).
			Msg("Resolved show")
		id = show.ID
	}

	series, err := service.GetSeriesRatings(ctx, id, *refresh)
	if err != nil {
		logger.Fatal().Err(err).Str("show_id", id).Msg("Failed to fetch ratings")
	}

	// Ratings are cached now, so the render never refreshes again.
	rendered, err := service.RenderHeatmap(ctx, id, heatmap.Options{
		WidthInches:  *width,
		HeightInches: *height,
		Format:       *format,
	}, false)
	if err != nil {
		logger.Fatal().Err(err).Str("show_id", id).Msg("Failed to render heatmap")
	}

	destination := *outPath
	if destination == "" {
		destination = rendered.Filename
	}
	if err := os.WriteFile(destination, rendered.Content, 0o644); err != nil {
		logger.Fatal().Err(err).Str("path", destination).Msg("Failed to write heatmap")
	}

	logger.Info().
		Str("path", destination).
		Str("average_rating", fmt.Sprintf("%.1f", series.AverageRating())).
		Int("rated_episodes", series.RatedEpisodeCount()).
		Int("seasons", len(series.Seasons)).
		Msg("Wrote heatmap")
}
