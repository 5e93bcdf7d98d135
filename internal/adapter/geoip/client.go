package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/observability"
)

const (
	stepIP       = "ip"
	stepLocation = "location"

	userAgent    = "accident-severity/1.0"
	maxBodyBytes = 1 << 20
)

// Client implements domain.IPResolver with an ipify-style endpoint and
// domain.Locator with an ipinfo-style endpoint.
type Client struct {
	httpClient  *http.Client
	ipURL       string
	locationURL string
	token       string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a geolocation client. Every request is bounded by timeout.
func NewClient(ipURL, locationURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		ipURL:       ipURL,
		locationURL: strings.TrimRight(locationURL, "/"),
		token:       token,
		metrics:     metrics,
		logger:      logger,
	}
}

// PublicIP returns the caller's public IP address as seen by the IP service.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	var body ipResponse
	if err := c.getJSON(ctx, c.ipURL, stepIP, &body); err != nil {
		c.metrics.GeoRequests.WithLabelValues(stepIP, "error").Inc()
		return "", err
	}

	ip := strings.TrimSpace(body.IP)
	if ip == "" {
		c.metrics.GeoRequests.WithLabelValues(stepIP, "error").Inc()
		return "", fmt.Errorf("%w: ip service response has no ip field", domain.ErrParse)
	}

	c.metrics.GeoRequests.WithLabelValues(stepIP, "success").Inc()
	return ip, nil
}

// Locate returns the coordinates the location service reports for ip. A
// response without a "loc" field is reported as not found.
func (c *Client) Locate(ctx context.Context, ip string) (domain.Coordinates, bool, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		c.metrics.GeoRequests.WithLabelValues(stepLocation, "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("%w: invalid ip address %q", domain.ErrParse, ip)
	}

	u := fmt.Sprintf("%s/%s/json", c.locationURL, url.PathEscape(addr.String()))
	if c.token != "" {
		u += "?" + url.Values{"token": {c.token}}.Encode()
	}

	var body locationResponse
	if err := c.getJSON(ctx, u, stepLocation, &body); err != nil {
		c.metrics.GeoRequests.WithLabelValues(stepLocation, "error").Inc()
		return domain.Coordinates{}, false, err
	}

	if body.Loc == "" {
		c.logger.Debug("location service has no coordinates", "ip", ip, "bogon", body.Bogon)
		c.metrics.GeoRequests.WithLabelValues(stepLocation, "not_found").Inc()
		return domain.Coordinates{}, false, nil
	}

	coords, err := parseLoc(body.Loc)
	if err != nil {
		c.metrics.GeoRequests.WithLabelValues(stepLocation, "error").Inc()
		return domain.Coordinates{}, false, err
	}

	c.metrics.GeoRequests.WithLabelValues(stepLocation, "success").Inc()
	return coords, true, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, step string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: create %s request: %w", domain.ErrNetwork, step, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeoAPIDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %s request: %w", domain.ErrNetwork, step, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s service error: status %d: %s", domain.ErrNetwork, step, resp.StatusCode, body)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrParse, step, err)
	}
	return nil
}

// parseLoc parses the "<lat>,<lon>" format used by the location service.
func parseLoc(loc string) (domain.Coordinates, error) {
	latStr, lonStr, ok := strings.Cut(loc, ",")
	if !ok || strings.Contains(lonStr, ",") {
		return domain.Coordinates{}, fmt.Errorf("%w: loc %q is not \"<lat>,<lon>\"", domain.ErrParse, loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: loc latitude %q: %w", domain.ErrParse, latStr, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: loc longitude %q: %w", domain.ErrParse, lonStr, err)
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}

// Service response types.

type ipResponse struct {
	IP string `json:"ip"`
}

type locationResponse struct {
	IP    string `json:"ip"`
	City  string `json:"city"`
	Loc   string `json:"loc"` // "<lat>,<lon>"
	Bogon bool   `json:"bogon"`
}
