package testutil

import (
	"context"
	"sort"

	"github.com/seriesheat/seriesheat/internal/models"
)

// CollectSeasons consumes a season ratings stream and returns the seasons
// sorted by season number. This is a test helper and should not be used in
// production code.
func CollectSeasons(ctx context.Context, stream <-chan models.StreamResult[models.SeasonRatings]) ([]models.SeasonRatings, error) {
	var seasons []models.SeasonRatings
	for {
		select {
		case result, ok := <-stream:
			if !ok {
				sort.Slice(seasons, func(i, j int) bool {
					return seasons[i].Season < seasons[j].Season
				})
				return seasons, nil
			}
			if result.Failed() {
				return nil, result.Err
			}
			seasons = append(seasons, result.Value)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
