package view

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rentease/gateway/internal/rentease"
)

func newTestFetcher(t *testing.T, handler http.Handler) *Fetcher {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := rentease.NewClient(rentease.Config{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	}, nil)
	return NewFetcher(client)
}

func TestFetchAllCollections(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/properties":
			w.Write([]byte(`[{"id":1,"title":"Studio"},{"id":2,"title":"Flat"}]`))
		case "/users/7/favorites":
			w.Write([]byte(`[{"property":{"id":2}}]`))
		case "/bookings/tenant/7":
			w.Write([]byte(`[{"id":10,"status":"PENDING","property":{"id":1}}]`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})
	fetcher := newTestFetcher(t, handler)

	cols, err := fetcher.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(cols.Properties) != 2 {
		t.Errorf("expected 2 properties, got %d", len(cols.Properties))
	}
	if len(cols.Favorites) != 1 || cols.Favorites[0].Property.ID != 2 {
		t.Errorf("unexpected favorites: %+v", cols.Favorites)
	}
	if len(cols.Bookings) != 1 || cols.Bookings[0].Status != rentease.BookingPending {
		t.Errorf("unexpected bookings: %+v", cols.Bookings)
	}
}

func TestFetchAnonymousSkipsTenantCollections(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/properties" {
			t.Errorf("anonymous fetch should only request properties, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"title":"Studio"}]`))
	})
	fetcher := newTestFetcher(t, handler)

	cols, err := fetcher.Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(cols.Favorites) != 0 || len(cols.Bookings) != 0 {
		t.Error("anonymous fetch must not carry favorites or bookings")
	}
}

func TestFetchDegradesOnFavoritesFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/properties":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"title":"Studio"}]`))
		case "/bookings/tenant/7":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		default:
			http.Error(w, "favorites unavailable", http.StatusInternalServerError)
		}
	})
	fetcher := newTestFetcher(t, handler)

	cols, err := fetcher.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("favorites failure must not fail the fetch: %v", err)
	}
	if len(cols.Properties) != 1 {
		t.Errorf("expected 1 property, got %d", len(cols.Properties))
	}
	if len(cols.Favorites) != 0 {
		t.Errorf("failed favorites should degrade to empty, got %d", len(cols.Favorites))
	}
}

func TestFetchFailsOnPropertiesFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/properties" {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	fetcher := newTestFetcher(t, handler)

	if _, err := fetcher.Fetch(context.Background(), 7); err == nil {
		t.Fatal("a failed properties fetch must fail the whole view")
	}
}
