package geoip

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(ipURL, locationURL string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		ipURL:       ipURL,
		locationURL: locationURL,
		metrics:     observability.NewMetricsForTesting(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeJSONBody(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_PublicIP_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		writeJSONBody(t, w, ipResponse{IP: "8.8.8.8"})
	}))
	defer srv.Close()

	c := testClient(srv.URL+"/?format=json", "")
	ip, err := c.PublicIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.8.8.8", ip)
}

func TestClient_PublicIP_MissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONBody(t, w, map[string]string{"address": "8.8.8.8"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "").PublicIP(context.Background())
	require.ErrorIs(t, err, domain.ErrParse)
}

func TestClient_PublicIP_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("8.8.8.8"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "").PublicIP(context.Background())
	require.ErrorIs(t, err, domain.ErrParse)
}

func TestClient_PublicIP_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url, "").PublicIP(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_PublicIP_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.PublicIP(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_Locate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8/json", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		writeJSONBody(t, w, locationResponse{IP: "8.8.8.8", City: "Mountain View", Loc: "37.751,-97.822"})
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	c.token = "tok"

	coords, found, err := c.Locate(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.Coordinates{Lat: 37.751, Lon: -97.822}, coords)
}

func TestClient_Locate_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONBody(t, w, locationResponse{IP: "10.0.0.1", Bogon: true})
	}))
	defer srv.Close()

	_, found, err := testClient("", srv.URL).Locate(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Locate_MalformedLoc(t *testing.T) {
	for _, loc := range []string{"37.751", "37.751;-97.822", "a,b", "1,2,3"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSONBody(t, w, locationResponse{Loc: loc})
		}))

		_, found, err := testClient("", srv.URL).Locate(context.Background(), "8.8.8.8")
		require.ErrorIs(t, err, domain.ErrParse, loc)
		assert.False(t, found)
		srv.Close()
	}
}

func TestClient_Locate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit"}`))
	}))
	defer srv.Close()

	_, _, err := testClient("", srv.URL).Locate(context.Background(), "8.8.8.8")
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Locate_InvalidIPNotSent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, _, err := testClient("", srv.URL).Locate(context.Background(), "../admin")
	require.ErrorIs(t, err, domain.ErrParse)
	assert.Zero(t, hits.Load())
}

func TestResolveLocation_ChainsClients(t *testing.T) {
	ipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONBody(t, w, ipResponse{IP: "8.8.8.8"})
	}))
	defer ipSrv.Close()
	locSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8/json", r.URL.Path)
		writeJSONBody(t, w, locationResponse{Loc: "37.751,-97.822"})
	}))
	defer locSrv.Close()

	c := testClient(ipSrv.URL, locSrv.URL)
	res := domain.ResolveLocation(context.Background(), c, c, c.logger)

	require.Equal(t, domain.LocationResolved, res.Status)
	assert.Equal(t, domain.Coordinates{Lat: 37.751, Lon: -97.822}, *res.Coordinates)
}

func TestResolveLocation_IPFailureNeverCallsLocationService(t *testing.T) {
	ipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ipSrv.Close()

	var locHits atomic.Int32
	locSrv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		locHits.Add(1)
	}))
	defer locSrv.Close()

	c := testClient(ipSrv.URL, locSrv.URL)
	res := domain.ResolveLocation(context.Background(), c, c, c.logger)

	assert.Equal(t, domain.LocationUnavailable, res.Status)
	assert.ErrorIs(t, res.Err, domain.ErrNetwork)
	assert.Zero(t, locHits.Load(), "location service must not be queried")
}
