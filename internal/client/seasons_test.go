package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/seriesheat/seriesheat/internal/apperrors"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/models"
	"github.com/seriesheat/seriesheat/internal/testutil"
)

// seasonsHandler serves a show's episodes index and season pages the way the
// live site lays them out. Seasons listed in fail respond 500; requested
// season numbers are recorded when requested is non-nil.
func seasonsHandler(t *testing.T, showID, title string, seasons map[int][]testutil.EpisodeOptions, fail map[int]bool, requested *sync.Map) http.HandlerFunc {
	t.Helper()

	seasonNumbers := make([]int, 0, len(seasons))
	for season := range seasons {
		seasonNumbers = append(seasonNumbers, season)
	}
	sort.Ints(seasonNumbers)

	indexHTML := testutil.GenerateEpisodesIndexHTML(testutil.EpisodesIndexOptions{
		Title:   title,
		Seasons: seasonNumbers,
	})

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/title/"+showID+"/episodes/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		seasonParam := r.URL.Query().Get("season")
		if seasonParam == "" {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(indexHTML))
			return
		}

		season, err := strconv.Atoi(seasonParam)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if requested != nil {
			requested.Store(season, true)
		}

		if fail[season] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		episodes, ok := seasons[season]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testutil.GenerateSeasonHTML(season, episodes)))
	}
}

func TestClient_ListSeasons(t *testing.T) {
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {}, 2: {}, 3: {},
	}, nil, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	title, seasons, err := client.ListSeasons(ctx, "tt0903747")

	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}

	if title != "Breaking Bad" {
		t.Errorf("Expected title 'Breaking Bad', got %q", title)
	}

	expected := []int{1, 2, 3}
	if len(seasons) != len(expected) {
		t.Fatalf("Expected %d seasons, got %d", len(expected), len(seasons))
	}
	for i, season := range expected {
		if seasons[i] != season {
			t.Errorf("Season %d: expected %d, got %d", i, season, seasons[i])
		}
	}
}

func TestClient_ListSeasons_NoTabs(t *testing.T) {
	// IMDB omits the tab strip for single-season shows
	indexHTML := testutil.GenerateEpisodesIndexHTML(testutil.EpisodesIndexOptions{
		Title: "Chernobyl",
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(indexHTML))
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	title, seasons, err := client.ListSeasons(ctx, "tt7366338")

	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if title != "Chernobyl" {
		t.Errorf("Expected title 'Chernobyl', got %q", title)
	}
	if len(seasons) != 1 || seasons[0] != 1 {
		t.Errorf("Expected single season [1], got %v", seasons)
	}
}

func TestClient_ListSeasons_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	_, _, err := client.ListSeasons(ctx, "tt9999999")

	if err == nil {
		t.Fatal("Expected ListSeasons to fail for an unknown show")
	}
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchSeason(t *testing.T) {
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {
			{Title: "Pilot", Rating: 9.0, Votes: "41K"},
			{Title: "Cat's in the Bag...", Rating: 8.6, Votes: "32K"},
			{Title: "...And the Bag's in the River", Rating: 8.7, Votes: "1.1M"},
		},
	}, nil, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	season, err := client.FetchSeason(ctx, "tt0903747", 1)

	if err != nil {
		t.Fatalf("FetchSeason failed: %v", err)
	}

	if season.Season != 1 {
		t.Errorf("Expected season 1, got %d", season.Season)
	}
	if len(season.Episodes) != 3 {
		t.Fatalf("Expected 3 episodes, got %d", len(season.Episodes))
	}

	expected := []models.EpisodeRating{
		{Episode: 1, Title: "Pilot", Rating: 9.0, Votes: 41000},
		{Episode: 2, Title: "Cat's in the Bag...", Rating: 8.6, Votes: 32000},
		{Episode: 3, Title: "...And the Bag's in the River", Rating: 8.7, Votes: 1100000},
	}
	for i, want := range expected {
		got := season.Episodes[i]
		if got.Episode != want.Episode {
			t.Errorf("Episode %d: expected number %d, got %d", i, want.Episode, got.Episode)
		}
		if got.Title != want.Title {
			t.Errorf("Episode %d: expected title %q, got %q", i, want.Title, got.Title)
		}
		if got.Rating != want.Rating {
			t.Errorf("Episode %d: expected rating %.1f, got %.1f", i, want.Rating, got.Rating)
		}
		if got.Votes != want.Votes {
			t.Errorf("Episode %d: expected votes %d, got %d", i, want.Votes, got.Votes)
		}
	}
}

func TestClient_FetchSeason_Empty(t *testing.T) {
	// A season that exists but has no rated episodes yet
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		6: {
			{Title: "Announced Episode", OmitRating: true},
		},
	}, nil, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	season, err := client.FetchSeason(ctx, "tt0903747", 6)

	if err != nil {
		t.Fatalf("FetchSeason failed: %v", err)
	}
	if season.Season != 6 {
		t.Errorf("Expected season 6, got %d", season.Season)
	}
	if len(season.Episodes) != 0 {
		t.Errorf("Expected 0 rated episodes, got %d", len(season.Episodes))
	}
}

func TestClient_FetchSeason_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	_, err := client.FetchSeason(ctx, "tt0903747", 99)

	if err == nil {
		t.Fatal("Expected FetchSeason to fail for a missing season page")
	}
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClient_StreamSeasonRatings(t *testing.T) {
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {{Title: "Pilot", Rating: 9.0, Votes: "41K"}},
		2: {{Title: "Seven Thirty-Seven", Rating: 8.4, Votes: "25K"}, {Title: "Grilled", Rating: 9.2, Votes: "28K"}},
		3: {{Title: "No Mas", Rating: 8.5, Votes: "22K"}},
	}, nil, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:      server.URL,
		ClientTimeout:    "10s",
		FetchConcurrency: 2,
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	stream := client.StreamSeasonRatings(ctx, "tt0903747", []int{1, 2, 3})

	seasons, err := testutil.CollectSeasons(ctx, stream)
	if err != nil {
		t.Fatalf("CollectSeasons failed: %v", err)
	}

	if len(seasons) != 3 {
		t.Fatalf("Expected 3 seasons, got %d", len(seasons))
	}

	expectedCounts := map[int]int{1: 1, 2: 2, 3: 1}
	for _, season := range seasons {
		if expectedCounts[season.Season] != len(season.Episodes) {
			t.Errorf("Season %d: expected %d episodes, got %d", season.Season, expectedCounts[season.Season], len(season.Episodes))
		}
	}
}

func TestClient_StreamSeasonRatings_PartialFailure(t *testing.T) {
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {{Title: "Pilot", Rating: 9.0, Votes: "41K"}},
		2: {},
		3: {{Title: "No Mas", Rating: 8.5, Votes: "22K"}},
	}, map[int]bool{2: true}, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:      server.URL,
		ClientTimeout:    "10s",
		FetchConcurrency: 3,
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()

	var got []models.SeasonRatings
	var streamErrors []error
	for result := range client.StreamSeasonRatings(ctx, "tt0903747", []int{1, 2, 3}) {
		if result.Err != nil {
			streamErrors = append(streamErrors, result.Err)
			continue
		}
		got = append(got, result.Value)
	}

	if len(got) != 2 {
		t.Errorf("Expected 2 successful seasons, got %d", len(got))
	}
	if len(streamErrors) != 1 {
		t.Fatalf("Expected 1 season error, got %d", len(streamErrors))
	}
	if !strings.Contains(streamErrors[0].Error(), "season 2") {
		t.Errorf("Expected error to name season 2, got %v", streamErrors[0])
	}
}

func TestClient_GetSeriesRatings(t *testing.T) {
	var requestedSeasons sync.Map
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {
			{Title: "Pilot", Rating: 9.0, Votes: "41K"},
			{Title: "Cat's in the Bag...", Rating: 8.6, Votes: "32K"},
		},
		2: {
			{Title: "Seven Thirty-Seven", Rating: 8.4, Votes: "25K"},
		},
	}, nil, &requestedSeasons))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:      server.URL,
		ClientTimeout:    "10s",
		FetchConcurrency: 2,
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	series, err := client.GetSeriesRatings(ctx, "tt0903747")

	if err != nil {
		t.Fatalf("GetSeriesRatings failed: %v", err)
	}

	if series.ID != "tt0903747" {
		t.Errorf("Expected series ID 'tt0903747', got %q", series.ID)
	}
	if series.Title != "Breaking Bad" {
		t.Errorf("Expected title 'Breaking Bad', got %q", series.Title)
	}
	if series.FetchedAt.IsZero() {
		t.Error("Expected FetchedAt to be set")
	}

	if len(series.Seasons) != 2 {
		t.Fatalf("Expected 2 seasons, got %d", len(series.Seasons))
	}
	if series.Seasons[0].Season != 1 || series.Seasons[1].Season != 2 {
		t.Errorf("Expected seasons sorted ascending, got %d then %d", series.Seasons[0].Season, series.Seasons[1].Season)
	}
	if series.EpisodeCount() != 3 {
		t.Errorf("Expected 3 episodes total, got %d", series.EpisodeCount())
	}

	for _, season := range []int{1, 2} {
		if _, ok := requestedSeasons.Load(season); !ok {
			t.Errorf("Expected season %d page to be requested", season)
		}
	}
}

func TestClient_GetSeriesRatings_PartialFailure(t *testing.T) {
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {{Title: "Pilot", Rating: 9.0, Votes: "41K"}},
		2: {{Title: "Seven Thirty-Seven", Rating: 8.4, Votes: "25K"}},
		3: {},
	}, map[int]bool{3: true}, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:      server.URL,
		ClientTimeout:    "10s",
		FetchConcurrency: 3,
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	series, err := client.GetSeriesRatings(ctx, "tt0903747")

	if err != nil { // Partial failures surface as a warning, not an error
		t.Fatalf("Expected partial success without error, got: %v", err)
	}

	if len(series.Seasons) != 2 {
		t.Fatalf("Expected 2 seasons after one failed, got %d", len(series.Seasons))
	}
	if series.Seasons[0].Season != 1 || series.Seasons[1].Season != 2 {
		t.Errorf("Expected seasons [1 2], got %d and %d", series.Seasons[0].Season, series.Seasons[1].Season)
	}
}

func TestClient_GetSeriesRatings_AllSeasonsFail(t *testing.T) {
	server := httptest.NewServer(seasonsHandler(t, "tt0903747", "Breaking Bad", map[int][]testutil.EpisodeOptions{
		1: {},
		2: {},
	}, map[int]bool{1: true, 2: true}, nil))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:      server.URL,
		ClientTimeout:    "10s",
		FetchConcurrency: 2,
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	series, err := client.GetSeriesRatings(ctx, "tt0903747")

	if err == nil {
		t.Fatal("Expected GetSeriesRatings to fail when every season fails")
	}
	if series != nil {
		t.Errorf("Expected nil series on total failure, got %+v", series)
	}
	if !strings.Contains(err.Error(), "seasons failed") {
		t.Errorf("Expected aggregate season error, got %v", err)
	}
}

func TestClient_GetSeriesRatings_ShowNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	_, err := client.GetSeriesRatings(ctx, "tt0000001")

	if err == nil {
		t.Fatal("Expected GetSeriesRatings to fail for an unknown show")
	}
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
