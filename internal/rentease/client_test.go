package rentease

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler, token TokenFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	}, token)
}

func TestClientDecodesResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/properties/5" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":5,"title":"Studio","price":850,"availableFrom":"2026-10-01","status":"APPROVED"}`))
	})
	client := newTestClient(t, handler, nil)

	property, err := client.GetProperty(context.Background(), 5)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if property.ID != 5 || property.Title != "Studio" || property.Status != PropertyApproved {
		t.Errorf("unexpected property: %+v", property)
	}
	if property.AvailableFrom.String() != "2026-10-01" {
		t.Errorf("date not decoded, got %q", property.AvailableFrom.String())
	}
}

func TestClientHTTPError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "property not found", http.StatusNotFound)
	})
	client := newTestClient(t, handler, nil)

	_, err := client.GetProperty(context.Background(), 99)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", httpErr.Status)
	}
	if httpErr.Body != "property not found" {
		t.Errorf("expected the backend body to be retained, got %q", httpErr.Body)
	}
	if StatusOf(err) != http.StatusNotFound {
		t.Errorf("StatusOf should unwrap the status, got %d", StatusOf(err))
	}
}

func TestClientNetworkError(t *testing.T) {
	// Nothing listens on this address.
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)

	_, err := client.ListProperties(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Errorf("a network error carries no HTTP status, got %d", StatusOf(err))
	}
}

func TestClientSchemaError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "not a number"`))
	})
	client := newTestClient(t, handler, nil)

	_, err := client.GetProperty(context.Background(), 1)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	client := newTestClient(t, handler, func() string { return "token-123" })

	if _, err := client.ListProperties(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("expected bearer token header, got %q", gotAuth)
	}
}

func TestClientOmitsEmptyToken(t *testing.T) {
	var gotAuth string
	var sawHeader bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	client := newTestClient(t, handler, func() string { return "" })

	if _, err := client.ListProperties(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if sawHeader {
		t.Errorf("empty token must not produce an Authorization header, got %q", gotAuth)
	}
}

func TestDateRoundTrip(t *testing.T) {
	var booking Booking
	data := []byte(`{"id":1,"startDate":"2026-09-15","endDate":null,"status":"PENDING"}`)

	if err := json.Unmarshal(data, &booking); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if booking.StartDate.String() != "2026-09-15" {
		t.Errorf("expected 2026-09-15, got %q", booking.StartDate.String())
	}
	if !booking.EndDate.IsZero() {
		t.Errorf("null date should decode to zero, got %v", booking.EndDate)
	}

	out, err := booking.StartDate.MarshalJSON()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(out) != `"2026-09-15"` {
		t.Errorf("expected quoted wire format, got %s", out)
	}
}
