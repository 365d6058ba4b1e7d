package testutil

import (
	"fmt"
	"strings"
)

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// BoolPtr is a helper for creating *bool values in tests
func BoolPtr(v bool) *bool {
	return &v
}

// SearchResultOptions contains options for generating one search result item
type SearchResultOptions struct {
	ID            string // IMDB identifier, e.g. "tt0903747"
	Title         string
	Year          int    // 0 omits the metadata span
	Rank          int    // Defaults to position+1
	IncludeHref   *bool  // Default true; false drops the href attribute
	HrefOverride  string // Replaces the generated "/title/{id}/?ref_=..." href
	TitleOverride string // Replaces the generated "{rank}. {title}" link text
}

// EpisodesIndexOptions contains options for generating the episodes index page
type EpisodesIndexOptions struct {
	Title           string
	Seasons         []int
	ExtraTabs       []string // Non-numeric tabs like "Unknown"
	IncludeSubtitle *bool    // Default true; false drops the h2 subtitle heading
	DocumentTitle   string   // Overrides the generated <title> tag text
}

// EpisodeOptions contains options for generating one episode card on a
// season page
type EpisodeOptions struct {
	Title      string
	Rating     float64
	Votes      string // Rendered inside the parens, e.g. "41K"; empty omits the suffix
	OmitRating bool   // Drop the rating span entirely (unrated episode)
	RatingText string // Overrides the full rating span text
}

// GenerateSearchHTML generates an IMDB title search results page based on the
// real www.imdb.com structure: one li per result holding the
// a.ipc-title-link-wrapper anchor and the metadata spans.
func GenerateSearchHTML(results []SearchResultOptions) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en-US">
<head><title>Find - IMDb</title></head>
<body>
<section data-testid="find-results-section-title">
<ul class="ipc-metadata-list ipc-metadata-list--dividers-after" role="presentation">
`)

	for i, result := range results {
		rank := result.Rank
		if rank == 0 {
			rank = i + 1
		}

		includeHref := true
		if result.IncludeHref != nil {
			includeHref = *result.IncludeHref
		}

		hrefAttr := ""
		if includeHref {
			href := result.HrefOverride
			if href == "" {
				href = fmt.Sprintf("/title/%s/?ref_=fn_tv_tt_%d", result.ID, rank)
			}
			hrefAttr = fmt.Sprintf(` href="%s"`, href)
		}

		linkText := result.TitleOverride
		if linkText == "" {
			linkText = fmt.Sprintf("%d. %s", rank, result.Title)
		}

		metadataHTML := ""
		if result.Year != 0 {
			metadataHTML = fmt.Sprintf(`
			<span class="dli-title-metadata-item">%d&ndash;2013</span>
			<span class="dli-title-metadata-item">62 eps</span>`, result.Year)
		}

		fmt.Fprintf(&sb, `	<li class="ipc-metadata-list-summary-item">
		<div class="ipc-metadata-list-summary-item__c">
			<a class="ipc-title-link-wrapper"%s tabindex="0">
				<h3 class="ipc-title__text">%s</h3>
			</a>
			<div class="dli-title-metadata">%s
			</div>
		</div>
	</li>
`, hrefAttr, linkText, metadataHTML)
	}

	sb.WriteString(`</ul>
</section>
</body>
</html>`)

	return sb.String()
}

// GenerateEpisodesIndexHTML generates an IMDB episodes index page with the
// season tab strip and the show subtitle heading.
func GenerateEpisodesIndexHTML(opts EpisodesIndexOptions) string {
	var sb strings.Builder

	documentTitle := opts.DocumentTitle
	if documentTitle == "" {
		documentTitle = fmt.Sprintf("%s (TV Series 2008&ndash;2013) - Episodes - IMDb", opts.Title)
	}

	fmt.Fprintf(&sb, `<!DOCTYPE html>
<html lang="en-US">
<head><title>%s</title></head>
<body>
`, documentTitle)

	includeSubtitle := true
	if opts.IncludeSubtitle != nil {
		includeSubtitle = *opts.IncludeSubtitle
	}
	if includeSubtitle {
		fmt.Fprintf(&sb, `<h2 data-testid="subtitle" class="sc-29aa2958-7">%s</h2>
`, opts.Title)
	}

	sb.WriteString(`<div data-testid="episodes-browse-episodes">
	<ul class="ipc-tabs ipc-tabs--base ipc-tabs--align-left" role="tablist">
`)
	for _, season := range opts.Seasons {
		fmt.Fprintf(&sb, `		<li role="tab"><a data-testid="tab-season-entry" href="/title/tt0000000/episodes/?season=%d">%d</a></li>
`, season, season)
	}
	for _, tab := range opts.ExtraTabs {
		fmt.Fprintf(&sb, `		<li role="tab"><a data-testid="tab-season-entry" href="/title/tt0000000/episodes/?season=%s">%s</a></li>
`, tab, tab)
	}
	sb.WriteString(`	</ul>
</div>
</body>
</html>`)

	return sb.String()
}

// GenerateSeasonHTML generates an IMDB season episodes page: one article per
// episode holding the ipc-title__text heading and, for rated episodes, the
// imdb rating star span.
func GenerateSeasonHTML(season int, episodes []EpisodeOptions) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en-US">
<head><title>Episodes - IMDb</title></head>
<body>
<section data-testid="episodes-browse-episodes">
`)

	for i, episode := range episodes {
		title := episode.Title
		if title == "" {
			title = fmt.Sprintf("Episode #%d.%d", season, i+1)
		}

		fmt.Fprintf(&sb, `	<article class="episode-item-wrapper">
		<div class="ipc-title ipc-title--base ipc-title--title">
			<div class="ipc-title__text">S%d.E%d &#8729; %s</div>
		</div>
`, season, i+1, title)

		if !episode.OmitRating {
			ratingText := episode.RatingText
			if ratingText == "" {
				ratingText = fmt.Sprintf("%.1f/10", episode.Rating)
				if episode.Votes != "" {
					ratingText += fmt.Sprintf("&nbsp;(%s)", episode.Votes)
				}
			}
			fmt.Fprintf(&sb, `		<span class="ipc-rating-star ipc-rating-star--base ipc-rating-star--imdb ratingGroup--imdb-rating" aria-label="IMDb rating">%s</span>
`, ratingText)
		}

		sb.WriteString(`	</article>
`)
	}

	sb.WriteString(`</section>
</body>
</html>`)

	return sb.String()
}

// GenerateEmptyHTML returns a minimal HTML document with an empty body.
func GenerateEmptyHTML() string {
	return `<html><body></body></html>`
}

// GenerateHTMLWithBody wraps custom body content in a standard HTML shell.
func GenerateHTMLWithBody(bodyHTML string) string {
	return `<html><body>` + bodyHTML + `</body></html>`
}
