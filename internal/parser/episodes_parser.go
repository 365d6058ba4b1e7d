package parser

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ratingSpanSelector matches the aggregate-rating star span IMDB renders for
// each rated episode. The full class chain keeps it from matching the
// user-rating widget that shares the first two classes.
const ratingSpanSelector = "span.ipc-rating-star.ipc-rating-star--base.ipc-rating-star--imdb.ratingGroup--imdb-rating"

// episodeTitlePattern matches episode heading text like "S1.E2 ∙ Cat's in the
// Bag..." and captures the title after the separator.
var episodeTitlePattern = regexp.MustCompile(`^S\d+[\s.]?E\d+\s*[∙·•]\s*(.+)$`)

// votesPattern matches the parenthesized vote count suffix of a rating span,
// e.g. "8.9/10 (41K)".
var votesPattern = regexp.MustCompile(`\(([\d.,]+)\s*([KM]?)\)`)

// EpisodesParser extracts season tabs, the show title, and per-episode
// ratings from IMDB episode listing pages
type EpisodesParser struct{}

// NewEpisodesParser creates a new episodes page parser instance
func NewEpisodesParser() *EpisodesParser {
	return &EpisodesParser{}
}

// ParseSeasonTabs parses the episodes index page and returns the season
// numbers from the season tab strip, sorted ascending. Non-numeric tabs such
// as "Unknown" are skipped.
func (p *EpisodesParser) ParseSeasonTabs(body io.Reader) ([]int, error) {
	logger := config.GetLogger()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var seasons []int
	seen := make(map[int]struct{})

	doc.Find(`a[data-testid="tab-season-entry"]`).Each(func(i int, tab *goquery.Selection) {
		text := strings.TrimSpace(tab.Text())
		season, err := strconv.Atoi(text)
		if err != nil {
			logger.Debug().Str("tab", text).Msg("Skipping non-numeric season tab")
			return
		}
		if _, dup := seen[season]; dup {
			return
		}
		seen[season] = struct{}{}
		seasons = append(seasons, season)
	})

	sort.Ints(seasons)
	logger.Debug().Ints("seasons", seasons).Msg("Parsed season tabs")
	return seasons, nil
}

// ParseShowTitle parses the show title from an episodes page, preferring the
// subtitle heading and falling back to the document title stripped of the
// IMDB suffixes.
func (p *EpisodesParser) ParseShowTitle(body io.Reader) (string, error) {
	logger := config.GetLogger()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if title := strings.TrimSpace(doc.Find(`h2[data-testid="subtitle"]`).First().Text()); title != "" {
		logger.Debug().Str("title", title).Msg("Parsed show title from subtitle heading")
		return title, nil
	}

	title := cleanDocumentTitle(doc.Find("title").First().Text())
	logger.Debug().Str("title", title).Msg("Parsed show title from document title")
	return title, nil
}

// cleanDocumentTitle strips the trailing matter IMDB appends to the <title>
// tag, e.g. "Breaking Bad (TV Series 2008-2013) - Episodes - IMDb".
func cleanDocumentTitle(text string) string {
	text = strings.TrimSpace(text)
	for _, sep := range []string{" (TV", " - "} {
		if idx := strings.Index(text, sep); idx != -1 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// ParseSeasonEpisodes parses one season page and returns its episodes in
// document order, numbered from 1. Episodes whose rating span carries no
// "value/10" text are skipped, so the returned slice holds rated episodes
// only.
func (p *EpisodesParser) ParseSeasonEpisodes(body io.Reader) ([]models.EpisodeRating, error) {
	logger := config.GetLogger()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var episodes []models.EpisodeRating
	doc.Find(ratingSpanSelector).Each(func(i int, span *goquery.Selection) {
		text := strings.TrimSpace(span.Text())

		value, _, found := strings.Cut(text, "/")
		if !found {
			logger.Debug().Int("episode", i+1).Str("text", text).Msg("Rating span without value separator, skipping")
			return
		}

		rating, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			logger.Debug().Int("episode", i+1).Str("value", value).Msg("Unparseable rating value, skipping")
			return
		}

		episodes = append(episodes, models.EpisodeRating{
			Episode: len(episodes) + 1,
			Title:   episodeTitle(span),
			Rating:  rating,
			Votes:   parseVoteCount(text),
		})
	})

	logger.Debug().Int("episodes", len(episodes)).Msg("Parsed season episodes")
	return episodes, nil
}

// episodeTitle reads the episode title out of the card enclosing a rating
// span. Episode headings look like "S2.E1 ∙ Seven Thirty-Seven"; anything
// else, including a missing card, yields an empty title.
func episodeTitle(span *goquery.Selection) string {
	heading := span.Closest("article").Find("div.ipc-title__text").First().Text()
	matches := episodeTitlePattern.FindStringSubmatch(strings.TrimSpace(heading))
	if matches == nil {
		return ""
	}
	return strings.TrimSpace(matches[1])
}

// parseVoteCount reads the parenthesized vote count out of a rating span
// text, handling thousand separators and K/M suffixes. Returns 0 when the
// text carries no vote count.
func parseVoteCount(text string) int {
	matches := votesPattern.FindStringSubmatch(text)
	if matches == nil {
		return 0
	}

	number := strings.ReplaceAll(matches[1], ",", "")
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0
	}

	switch matches[2] {
	case "K":
		value *= 1_000
	case "M":
		value *= 1_000_000
	}
	return int(math.Round(value))
}
