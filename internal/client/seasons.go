package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	psg "github.com/petenewcomb/psg-go"
	"github.com/seriesheat/seriesheat/internal/apperrors"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/models"
	"github.com/seriesheat/seriesheat/internal/parser"
)

// ListSeasons fetches the episodes index of a show and returns its title plus
// the season numbers in ascending order. IMDB omits the season tab strip for
// single-season shows, so an index without tabs yields [1].
func (c *client) ListSeasons(ctx context.Context, showID string) (string, []int, error) {
	logger := config.GetLogger()

	endpoint := fmt.Sprintf("%s/title/%s/episodes/", c.baseURL, showID)
	bodyBytes, err := c.fetchPage(ctx, endpoint, "episodes")
	if err != nil {
		if errors.Is(err, errPageNotFound) {
			return "", nil, apperrors.NewNotFoundError("show", showID)
		}
		return "", nil, fmt.Errorf("fetch episodes index: %w", err)
	}

	utf8Title, err := parser.NewUTF8Reader(bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("detect encoding: %w", err)
	}
	title, err := c.episodesParser.ParseShowTitle(utf8Title)
	if err != nil {
		return "", nil, fmt.Errorf("parse show title: %w", err)
	}

	utf8Tabs, err := parser.NewUTF8Reader(bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("detect encoding: %w", err)
	}
	seasons, err := c.episodesParser.ParseSeasonTabs(utf8Tabs)
	if err != nil {
		return "", nil, fmt.Errorf("parse season tabs: %w", err)
	}

	if len(seasons) == 0 {
		logger.Debug().Str("showID", showID).Msg("No season tabs found, assuming single season")
		seasons = []int{1}
	}

	logger.Info().Str("showID", showID).Str("title", title).Ints("seasons", seasons).Msg("Listed seasons")
	return title, seasons, nil
}

// FetchSeason fetches and parses the rating table for one season of a show.
// A season page without rating spans yields an empty episode list, which is
// valid for seasons that have not aired.
func (c *client) FetchSeason(ctx context.Context, showID string, season int) (models.SeasonRatings, error) {
	logger := config.GetLogger()

	endpoint := fmt.Sprintf("%s/title/%s/episodes/?season=%d", c.baseURL, showID, season)
	bodyBytes, err := c.fetchPage(ctx, endpoint, "season")
	if err != nil {
		if errors.Is(err, errPageNotFound) {
			return models.SeasonRatings{}, apperrors.NewSeasonNotFoundError(showID, season)
		}
		return models.SeasonRatings{}, fmt.Errorf("fetch season %d: %w", season, err)
	}

	utf8Body, err := parser.NewUTF8Reader(bytes.NewReader(bodyBytes))
	if err != nil {
		return models.SeasonRatings{}, fmt.Errorf("detect encoding: %w", err)
	}

	episodes, err := c.episodesParser.ParseSeasonEpisodes(utf8Body)
	if err != nil {
		return models.SeasonRatings{}, fmt.Errorf("parse season %d: %w", season, err)
	}

	logger.Debug().Str("showID", showID).Int("season", season).Int("episodes", len(episodes)).Msg("Fetched season ratings")
	return models.SeasonRatings{Season: season, Episodes: episodes}, nil
}

// StreamSeasonRatings fetches the given seasons in parallel and streams each
// result as it completes. Concurrency is bounded by the configured fetch
// concurrency via a psg task pool. The channel is closed once every season has
// been gathered; per-season failures are streamed as StreamResult errors so
// callers decide whether partial data suffices.
func (c *client) StreamSeasonRatings(ctx context.Context, showID string, seasons []int) <-chan models.StreamResult[models.SeasonRatings] {
	ch := make(chan models.StreamResult[models.SeasonRatings])

	go func() {
		defer close(ch)
		logger := config.GetLogger()
		logger.Info().
			Str("showID", showID).
			Ints("seasons", seasons).
			Int("concurrency", c.fetchConcurrency).
			Msg("Fetching season ratings in parallel")

		job := psg.NewJob(ctx)
		defer job.CancelAndWait()
		pool := psg.NewTaskPool(job, c.fetchConcurrency)

		gather := psg.NewGather(
			func(ctx context.Context, result models.SeasonRatings, err error) error {
				select {
				case ch <- models.StreamResult[models.SeasonRatings]{Value: result, Err: err}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		)

		for _, season := range seasons {
			task := func(ctx context.Context) (models.SeasonRatings, error) {
				return c.FetchSeason(ctx, showID, season)
			}
			if err := gather.Scatter(ctx, pool, task); err != nil {
				logger.Warn().Err(err).Int("season", season).Str("showID", showID).Msg("Season fan-out aborted during scatter")
				return
			}
		}

		if err := job.CloseAndGatherAll(ctx); err != nil {
			logger.Warn().Err(err).Str("showID", showID).Msg("Season fan-out interrupted")
		}
	}()

	return ch
}

// GetSeriesRatings assembles the complete ratings table for a show: one
// ListSeasons call followed by a parallel fetch of every season. It fails only
// when the episodes index itself fails or no season could be fetched at all;
// partial failures are logged and the successful seasons returned.
func (c *client) GetSeriesRatings(ctx context.Context, showID string) (*models.SeriesRatings, error) {
	logger := config.GetLogger()

	title, seasons, err := c.ListSeasons(ctx, showID)
	if err != nil {
		return nil, err
	}

	collected := make([]models.SeasonRatings, 0, len(seasons))
	var fetchErrors []error

	for result := range c.StreamSeasonRatings(ctx, showID, seasons) {
		if result.Failed() {
			fetchErrors = append(fetchErrors, result.Err)
			continue
		}
		collected = append(collected, result.Value)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(collected) == 0 && len(fetchErrors) > 0 {
		return nil, fmt.Errorf("all %d seasons failed: %w", len(seasons), errors.Join(fetchErrors...))
	}
	if len(fetchErrors) > 0 {
		logger.Warn().
			Err(errors.Join(fetchErrors...)).
			Str("showID", showID).
			Int("failed", len(fetchErrors)).
			Int("fetched", len(collected)).
			Msg("Partial success fetching seasons")
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Season < collected[j].Season })

	series := &models.SeriesRatings{
		ID:        showID,
		Title:     title,
		Seasons:   collected,
		FetchedAt: time.Now().UTC(),
	}

	logger.Info().
		Str("showID", showID).
		Str("title", title).
		Int("seasons", len(collected)).
		Int("episodes", series.EpisodeCount()).
		Msg("Fetched series ratings")

	return series, nil
}
