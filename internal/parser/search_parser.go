package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ttIDPattern matches an IMDB title identifier inside an href,
// e.g. /title/tt0903747/?ref_=fn_tv_tt_1
var ttIDPattern = regexp.MustCompile(`tt\d+`)

// yearPattern matches the first-air year inside the metadata span,
// e.g. "2008-2013" or "2019-".
var yearPattern = regexp.MustCompile(`\d{4}`)

// SearchParser implements the Parser interface for IMDB title search results
type SearchParser struct{}

var _ Parser[models.Show] = (*SearchParser)(nil)

// NewSearchParser creates a new search result parser instance
func NewSearchParser() *SearchParser {
	return &SearchParser{}
}

// ParseHtml parses an IMDB title search page and extracts the show candidates
// in result order. Results without a tt identifier are skipped and duplicate
// identifiers keep their first occurrence.
func (p *SearchParser) ParseHtml(body io.Reader) ([]models.Show, error) {
	logger := config.GetLogger()
	logger.Debug().Msg("Starting HTML parsing for search results")

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var shows []models.Show
	seen := make(map[string]struct{})

	doc.Find("a.ipc-title-link-wrapper").Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists {
			logger.Debug().Int("result", i).Msg("Search result link missing href attribute")
			return
		}

		id := ttIDPattern.FindString(href)
		if id == "" {
			logger.Debug().Int("result", i).Str("href", href).Msg("No tt identifier in href")
			return
		}
		if _, dup := seen[id]; dup {
			logger.Debug().Int("result", i).Str("id", id).Msg("Skipping duplicate search result")
			return
		}

		rank, title := p.splitRankedTitle(strings.TrimSpace(link.Text()), len(shows)+1)
		if title == "" {
			logger.Debug().Int("result", i).Str("id", id).Msg("Search result has no title text")
			return
		}

		show := models.Show{
			ID:    id,
			Title: title,
			Year:  p.extractYear(link),
			Rank:  rank,
		}
		seen[id] = struct{}{}
		shows = append(shows, show)
		logger.Debug().
			Str("id", show.ID).
			Str("title", show.Title).
			Int("year", show.Year).
			Int("rank", show.Rank).
			Msg("Extracted search result")
	})

	logger.Debug().Int("total_shows", len(shows)).Msg("Completed HTML parsing for search results")
	return shows, nil
}

// splitRankedTitle splits link text like "1. Breaking Bad" into its rank and
// title. Text without the numeric prefix keeps the fallback rank.
func (p *SearchParser) splitRankedTitle(text string, fallbackRank int) (int, string) {
	before, after, found := strings.Cut(text, ". ")
	if found {
		if rank, err := strconv.Atoi(before); err == nil && rank > 0 {
			return rank, strings.TrimSpace(after)
		}
	}
	return fallbackRank, text
}

// extractYear pulls the first-air year from the metadata spans next to the
// title link. The year is best effort, 0 when the markup does not carry one.
func (p *SearchParser) extractYear(link *goquery.Selection) int {
	item := link.Closest("li")
	if item.Length() == 0 {
		return 0
	}

	meta := item.Find("span.dli-title-metadata-item").First()
	if meta.Length() == 0 {
		return 0
	}

	yearText := yearPattern.FindString(meta.Text())
	if yearText == "" {
		return 0
	}

	year, err := strconv.Atoi(yearText)
	if err != nil {
		return 0
	}
	return year
}
