package chinamoney

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/ratefeed"
)

const sampleFeed = `{
  "data": {"lastDate": "2024-01-05"},
  "records": [
    {"vrtCode": "USD", "vrtEName": "USD/CNY", "price": "7.1053"},
    {"vrtCode": "EUR", "vrtEName": "EUR/CNY", "price": "7.7405"},
    {"vrtCode": "JPY", "vrtEName": "100JPY/CNY", "price": "4.9800"}
  ]
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	src := New("USD", "EUR")
	src.URL = server.URL
	src.Client = server.Client()
	return src
}

func TestSource_LatestKey(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})
	key, err := src.LatestKey(context.Background())
	if err != nil {
		t.Fatalf("LatestKey() unexpected error = %v", err)
	}
	if key != "2024-01-05" {
		t.Errorf("LatestKey() = %q, want %q", key, "2024-01-05")
	}
}

func TestSource_OneRequestPerCycle(t *testing.T) {
	requests := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(sampleFeed))
	})

	ctx := context.Background()
	if _, err := src.LatestKey(ctx); err != nil {
		t.Fatal(err)
	}
	resp, err := src.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch() unexpected error = %v", err)
	}
	if resp.Key != "2024-01-05" {
		t.Errorf("Fetch() key = %q, want %q", resp.Key, "2024-01-05")
	}
	if requests != 1 {
		t.Errorf("LatestKey+Fetch issued %d requests, want 1", requests)
	}

	// a second fetch has no pending payload and goes to the network
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if requests != 2 {
		t.Errorf("standalone Fetch() issued %d requests in total, want 2", requests)
	}
}

func TestSource_Sync(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})
	store := ratefeed.NewStore(filepath.Join(t.TempDir(), "exchange_rate.csv"))

	outcome := ratefeed.Sync(context.Background(), store, src)
	if outcome.Status != ratefeed.Updated || outcome.Rows != 2 {
		t.Fatalf("Sync() = %v, want updated (2 rows)", outcome)
	}

	values, err := store.LookupLatest("USD", "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if got := values["USD"].String(); got != "7.1053" {
		t.Errorf("USD = %s, want 7.1053", got)
	}
	if got := values["EUR"].String(); got != "7.7405" {
		t.Errorf("EUR = %s, want 7.7405", got)
	}

	// nothing new on the source: the second cycle is a no-op
	if outcome := ratefeed.Sync(context.Background(), store, src); outcome.Status != ratefeed.NoOpAlreadyCurrent {
		t.Errorf("second Sync() = %v, want already-current", outcome)
	}
}

// A payload downloaded by a previous cycle must never leak into a later
// one: after a no-op cycle the next cycle hits a feed outage, and must fail
// rather than re-append the rows it downloaded two cycles ago.
func TestSource_OutageAfterNoOpDoesNotReplayOldPayload(t *testing.T) {
	down := false
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if down {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleFeed))
	})
	store := ratefeed.NewStore(filepath.Join(t.TempDir(), "exchange_rate.csv"))
	ctx := context.Background()

	if outcome := ratefeed.Sync(ctx, store, src); outcome.Status != ratefeed.Updated {
		t.Fatalf("first Sync() = %v, want updated", outcome)
	}
	if outcome := ratefeed.Sync(ctx, store, src); outcome.Status != ratefeed.NoOpAlreadyCurrent {
		t.Fatalf("second Sync() = %v, want already-current", outcome)
	}

	down = true
	outcome := ratefeed.Sync(ctx, store, src)
	if outcome.Status != ratefeed.SyncFailed {
		t.Fatalf("Sync() during outage = %v, want failed", outcome)
	}
	if !errors.Is(outcome.Err, ratefeed.ErrFetch) {
		t.Errorf("Sync() during outage error = %v, want a fetch_error", outcome.Err)
	}

	// the store is untouched, in particular no duplicate of the first batch
	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(raw), "\n"); got != 3 { // header + 2 rows
		t.Errorf("store holds %d lines, want 3:\n%s", got, raw)
	}
}

func TestSource_ServerError(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	if _, err := src.LatestKey(context.Background()); err == nil {
		t.Error("LatestKey() on a 503 response: want an error")
	}
}

func TestSource_MalformedFeed(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"Not JSON", "<html>blocked</html>"},
		{"No lastDate", `{"data": {}, "records": []}`},
		{"Empty lastDate", `{"data": {"lastDate": ""}, "records": []}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			if _, err := src.LatestKey(context.Background()); err == nil {
				t.Error("LatestKey() on a malformed feed: want an error")
			}
		})
	}
}
