package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/opsdash/internal/period"
)

func testConfig(ts *httptest.Server) Config {
	return Config{BaseURL: ts.URL, APIKey: "test-key", Timeout: 2 * time.Second}
}

// TestPurpose: Validates that non-2xx upstream responses surface as
// StatusError with the upstream name and status attached.
func TestClient_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"backend down"}`))
	}))
	defer ts.Close()

	client := NewLeadsClient(testConfig(ts))
	_, err := client.Health(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "leads", statusErr.Upstream)
}

// TestPurpose: Validates that malformed JSON bodies produce a decode error
// rather than a panic or silent zero value.
func TestClient_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": `))
	}))
	defer ts.Close()

	client := NewLeadsClient(testConfig(ts))
	_, err := client.Health(context.Background())
	assert.Error(t, err)
}

// TestPurpose: Validates that the API key header and query parameters reach
// the upstream as sent.
func TestClient_RequestShape(t *testing.T) {
	var gotKey, gotQuery, gotClient string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotQuery = r.URL.Query().Get("q")
		gotClient = r.URL.Query().Get("client")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := NewLeadsClient(testConfig(ts))
	_, err := client.Investigate(context.Background(), InvestigateParams{
		Query:      "timeout",
		ClientSlug: "acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "timeout", gotQuery)
	assert.Equal(t, "acme", gotClient)
}

// TestPurpose: Validates that list endpoints accept both the bare-array and
// wrapped response shapes and return the same records.
func TestClient_ListNormalization(t *testing.T) {
	record := `{"event_type":"sale","status":"ok","phone":"+5511999","sale_amount":120.5}`

	for name, payload := range map[string]string{
		"bare":    `[` + record + `]`,
		"wrapped": `{"data":[` + record + `]}`,
	} {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(payload))
			}))
			defer ts.Close()

			client := NewLeadsClient(testConfig(ts))
			records, err := client.Investigate(context.Background(), InvestigateParams{})
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "sale", records[0].EventType)
			assert.Equal(t, 120.5, records[0].SaleAmount)
		})
	}
}

// TestPurpose: Validates that the resolved period range is encoded as from/to
// query parameters on stat fetches.
func TestClient_PeriodRangeEncoding(t *testing.T) {
	var gotFrom, gotTo string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	now := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	r := period.Resolve(period.TokenYesterday, "", "", now)

	client := NewLeadsClient(testConfig(ts))
	_, err := client.Stats(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-14T03:00:00Z", gotFrom)
	assert.Equal(t, "2024-03-15T03:00:00Z", gotTo)
}

// TestPurpose: Validates that a cancelled context aborts the request.
func TestClient_ContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewSDRClient(testConfig(ts))
	_, err := client.Metrics(ctx, period.Range{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))
}
