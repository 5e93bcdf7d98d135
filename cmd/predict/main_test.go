package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "../../internal/adapter/forest/testdata/forest.json"

func baseArgs() []string {
	return []string{
		"-model", testModel,
		"-age-of-driver", "30",
		"-vehicle-type", "Car",
		"-age-of-vehicle", "5",
		"-engine-cc", "1500",
		"-day", "Monday",
		"-weather", "Fine no high winds",
		"-light", "Daylight",
		"-road-surface", "Dry",
		"-gender", "Male",
		"-speed-limit", "30",
		"-lat", "51.5",
		"-lon", "-0.12",
	}
}

func TestRun_PrintsPrediction(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(baseArgs(), &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Predicted Severity: Safe\n", stdout.String())
}

func TestRun_SevereCase(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := append(baseArgs(), "-vehicle-type", "Motorcycle over 500cc", "-speed-limit", "70")

	code := run(args, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Predicted Severity: Severe\n", stdout.String())
}

func TestRun_PlaceholderFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := append(baseArgs(), "-weather", "Choose weather condition")

	code := run(args, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Weather")
}

func TestRun_MissingCoordinatesFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"-model", testModel, "-vehicle-type", "Car", "-day", "Monday",
		"-weather", "Fog or mist", "-light", "Daylight", "-road-surface", "Dry", "-gender", "Female"}

	code := run(args, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "latitude and longitude")
}

func TestRun_MissingModelFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := append(baseArgs(), "-model", "does-not-exist.json")

	code := run(args, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "open model")
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 1, run([]string{"-lat", "north"}, &stdout, &stderr))
}

// geoServers fakes the public IP service and the IP location service.
func geoServers(t *testing.T) (ipURL, locationURL string, locateCalls *int) {
	t.Helper()
	calls := 0

	ipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"ip": "8.8.8.8"}))
	}))
	t.Cleanup(ipSrv.Close)

	locSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/8.8.8.8/json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"ip": "8.8.8.8", "loc": "37.7510,-97.8220"}))
	}))
	t.Cleanup(locSrv.Close)

	return ipSrv.URL, locSrv.URL, &calls
}

func dynamicArgs(method, ipURL, locationURL string) []string {
	return append(baseArgs()[:len(baseArgs())-4],
		"-location", method,
		"-ip-url", ipURL,
		"-location-url", locationURL,
	)
}

func TestRun_DynamicLocation(t *testing.T) {
	ipURL, locationURL, calls := geoServers(t)
	var stdout, stderr bytes.Buffer

	code := run(dynamicArgs("dynamic", ipURL, locationURL), &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Predicted Severity: Safe\n", stdout.String())
	assert.Contains(t, stderr.String(), "Location: 37.751000, -97.822000")
	assert.Equal(t, 1, *calls)
}

func TestRun_DynamicLocationAnyCase(t *testing.T) {
	ipURL, locationURL, calls := geoServers(t)
	var stdout, stderr bytes.Buffer

	code := run(dynamicArgs("Dynamic", ipURL, locationURL), &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Predicted Severity: Safe\n", stdout.String())
	assert.Equal(t, 1, *calls)
}

func TestRun_UnknownLocationMethod(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := append(baseArgs(), "-location", "gps")

	code := run(args, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "unknown location method")
}
