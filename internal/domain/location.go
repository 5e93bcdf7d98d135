package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate rejects NaN and infinite coordinates.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("%w: latitude and longitude must be numbers", ErrValidation)
	}
	return nil
}

// IPResolver discovers the caller's public IP address.
type IPResolver interface {
	PublicIP(ctx context.Context) (string, error)
}

// Locator maps an IP address to coordinates. found is false when the service
// has no location for the address; that is not an error.
type Locator interface {
	Locate(ctx context.Context, ip string) (coords Coordinates, found bool, err error)
}

// LocationStatus is the outcome of a dynamic location lookup.
type LocationStatus string

const (
	LocationResolved    LocationStatus = "resolved"
	LocationNotFound    LocationStatus = "not_found"
	LocationUnavailable LocationStatus = "unavailable"
)

// LocationResolution is the result of ResolveLocation.
type LocationResolution struct {
	Status      LocationStatus
	IP          string
	Coordinates *Coordinates
	Err         error // set when Status is LocationUnavailable
}

// ResolveLocation chains the public IP lookup into the coordinate lookup. If
// the IP lookup fails the locator is not called and the result is
// LocationUnavailable. An IP with no known location yields LocationNotFound.
func ResolveLocation(ctx context.Context, ips IPResolver, locator Locator, logger *slog.Logger) LocationResolution {
	if ips == nil || locator == nil {
		return LocationResolution{
			Status: LocationUnavailable,
			Err:    fmt.Errorf("%w: dynamic location is disabled", ErrNetwork),
		}
	}

	ip, err := ips.PublicIP(ctx)
	if err != nil {
		logger.Warn("public ip lookup failed", "error", err)
		return LocationResolution{Status: LocationUnavailable, Err: fmt.Errorf("get public IP address: %w", err)}
	}

	coords, found, err := locator.Locate(ctx, ip)
	if err != nil {
		logger.Warn("ip geolocation failed", "ip", ip, "error", err)
		return LocationResolution{Status: LocationUnavailable, IP: ip, Err: fmt.Errorf("get location: %w", err)}
	}
	if !found {
		logger.Warn("ip geolocation returned no location", "ip", ip)
		return LocationResolution{Status: LocationNotFound, IP: ip}
	}

	return LocationResolution{Status: LocationResolved, IP: ip, Coordinates: &coords}
}
