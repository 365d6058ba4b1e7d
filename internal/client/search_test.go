package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seriesheat/seriesheat/internal/apperrors"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/testutil"
)

func TestClient_SearchShows(t *testing.T) {
	searchHTML := testutil.GenerateSearchHTML([]testutil.SearchResultOptions{
		{ID: "tt0903747", Title: "Breaking Bad", Year: 2008},
		{ID: "tt3032476", Title: "Better Call Saul", Year: 2015},
		{ID: "tt8772296", Title: "Euphoria", Year: 2019},
	})

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/title/" {
			gotQuery = r.URL.Query().Get("title")
			if r.URL.Query().Get("title_type") != "tv_series" {
				t.Errorf("Expected title_type=tv_series, got %q", r.URL.Query().Get("title_type"))
			}
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(searchHTML))
			return
		}
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
	shows, err := client.SearchShows(ctx, "breaking bad")

	if err != nil {
		t.Fatalf("SearchShows failed: %v", err)
	}

	if gotQuery != "breaking bad" {
		t.Errorf("Expected query 'breaking bad' on the wire, got %q", gotQuery)
	}

	if len(shows) != 3 {
		t.Fatalf("Expected 3 shows, got %d", len(shows))
	}

	first := shows[0]
	if first.ID != "tt0903747" {
		t.Errorf("Expected first show ID 'tt0903747', got %q", first.ID)
	}
	if first.Title != "Breaking Bad" {
		t.Errorf("Expected first show title 'Breaking Bad', got %q", first.Title)
	}
	if first.Rank != 1 {
		t.Errorf("Expected first show rank 1, got %d", first.Rank)
	}
	if first.Year != 2008 {
		t.Errorf("Expected first show year 2008, got %d", first.Year)
	}

	if shows[2].ID != "tt8772296" || shows[2].Rank != 3 {
		t.Errorf("Unexpected third show: %+v", shows[2])
	}
}

func TestClient_SearchShows_InvalidHTML(t *testing.T) {
	// A page without any result anchors parses to an empty list, not an error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testutil.GenerateEmptyHTML()))
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	shows, err := client.SearchShows(ctx, "nothing")

	if err != nil {
		t.Fatalf("SearchShows failed: %v", err)
	}
	if len(shows) != 0 {
		t.Errorf("Expected 0 shows from empty page, got %d", len(shows))
	}
}

func TestClient_SearchShows_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	shows, err := client.SearchShows(ctx, "breaking bad")

	if err == nil {
		t.Fatal("Expected SearchShows to fail with server error, but it succeeded")
	}
	if shows != nil {
		t.Errorf("Expected shows to be nil on error, got %v", shows)
	}
}

func TestClient_ResolveShow(t *testing.T) {
	searchHTML := testutil.GenerateSearchHTML([]testutil.SearchResultOptions{
		{ID: "tt0903747", Title: "Breaking Bad", Year: 2008},
		{ID: "tt3032476", Title: "Better Call Saul", Year: 2015},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(searchHTML))
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	show, err := client.ResolveShow(ctx, "breaking bad")

	if err != nil {
		t.Fatalf("ResolveShow failed: %v", err)
	}

	if show.ID != "tt0903747" {
		t.Errorf("Expected top hit 'tt0903747', got %q", show.ID)
	}
	if show.Title != "Breaking Bad" {
		t.Errorf("Expected top hit title 'Breaking Bad', got %q", show.Title)
	}
}

func TestClient_ResolveShow_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testutil.GenerateEmptyHTML()))
	}))
	defer server.Close()

	testConfig := &config.Config{
		IMDBBaseURL:   server.URL,
		ClientTimeout: "10s",
	}

	client := NewClient(testConfig)
	defer client.Close()

	ctx := context.Background()
	_, err := client.ResolveShow(ctx, "no such show")

	if err == nil {
		t.Fatal("Expected ResolveShow to fail when search returns nothing")
	}
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
