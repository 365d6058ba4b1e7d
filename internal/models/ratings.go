package models

import (
	"time"
)

// EpisodeRating represents a single rated episode within a season
type EpisodeRating struct {
	Episode int     `json:"episode"` // 1-based position within the season
	Title   string  `json:"title,omitempty"`
	Rating  float64 `json:"rating"`          // IMDB user rating, 1.0-10.0; 0 means unrated
	Votes   int     `json:"votes,omitempty"` // Number of user votes, 0 when unknown
}

// Rated reports whether the episode carries a rating. IMDB ratings are
// always at least 1.0, so the zero value marks an unrated episode.
func (e EpisodeRating) Rated() bool {
	return e.Rating > 0
}

// SeasonRatings holds the rated episodes of one season in episode order
type SeasonRatings struct {
	Season   int             `json:"season"`
	Episodes []EpisodeRating `json:"episodes"`
}

// RatedCount returns the number of episodes in the season that carry a rating
func (s SeasonRatings) RatedCount() int {
	count := 0
	for _, episode := range s.Episodes {
		if episode.Rated() {
			count++
		}
	}

	return count
}

// SeriesRatings is the full ratings matrix of a show: every season with its
// episodes, plus the resolved title and the time the data was scraped
type SeriesRatings struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Seasons   []SeasonRatings `json:"seasons"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Season returns the ratings for season n, or false when the series has no
// such season
func (r *SeriesRatings) Season(n int) (*SeasonRatings, bool) {
	for i := range r.Seasons {
		if r.Seasons[i].Season == n {
			return &r.Seasons[i], true
		}
	}

	return nil, false
}

// EpisodeCount returns the total number of episodes across all seasons
func (r *SeriesRatings) EpisodeCount() int {
	count := 0
	for _, season := range r.Seasons {
		count += len(season.Episodes)
	}

	return count
}

// RatedEpisodeCount returns the number of episodes that carry a rating
func (r *SeriesRatings) RatedEpisodeCount() int {
	count := 0
	for _, season := range r.Seasons {
		count += season.RatedCount()
	}

	return count
}

// MaxEpisodes returns the episode count of the longest season
func (r *SeriesRatings) MaxEpisodes() int {
	maxCount := 0
	for _, season := range r.Seasons {
		if len(season.Episodes) > maxCount {
			maxCount = len(season.Episodes)
		}
	}

	return maxCount
}

// AverageRating returns the mean rating over all rated episodes, or 0 when
// the series has none
func (r *SeriesRatings) AverageRating() float64 {
	sum := 0.0
	count := 0
	for _, season := range r.Seasons {
		for _, episode := range season.Episodes {
			if episode.Rated() {
				sum += episode.Rating
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}

	return sum / float64(count)
}

// MinRating returns the lowest rating across all rated episodes. The second
// return value is false when no episode is rated.
func (r *SeriesRatings) MinRating() (float64, bool) {
	found := false
	minRating := 0.0
	for _, season := range r.Seasons {
		for _, episode := range season.Episodes {
			if !episode.Rated() {
				continue
			}
			if !found || episode.Rating < minRating {
				minRating = episode.Rating
				found = true
			}
		}
	}

	return minRating, found
}

// MaxRating returns the highest rating across all rated episodes. The second
// return value is false when no episode is rated.
func (r *SeriesRatings) MaxRating() (float64, bool) {
	found := false
	maxRating := 0.0
	for _, season := range r.Seasons {
		for _, episode := range season.Episodes {
			if !episode.Rated() {
				continue
			}
			if !found || episode.Rating > maxRating {
				maxRating = episode.Rating
				found = true
			}
		}
	}

	return maxRating, found
}
