// Command predict classifies a single accident description from the command
// line using the same registries, location resolver and model as the service.
//
// Usage:
//
//	go run ./cmd/predict \
//	  -model model/severity_forest.json \
//	  -age-of-driver 30 -vehicle-type Car -age-of-vehicle 5 -engine-cc 1500 \
//	  -day Monday -weather "Fine no high winds" -light Daylight \
//	  -road-surface Dry -gender Male -speed-limit 30 \
//	  -lat 51.5 -lon -0.12
//
// Pass -location dynamic instead of -lat/-lon to resolve coordinates from the
// machine's public IP address.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/couchcryptid/accident-severity/internal/adapter/forest"
	"github.com/couchcryptid/accident-severity/internal/adapter/geoip"
	"github.com/couchcryptid/accident-severity/internal/config"
	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/form"
	"github.com/couchcryptid/accident-severity/internal/observability"
)

// optionalFloat is a float flag that records whether it was set.
type optionalFloat struct {
	value *float64
}

func (f *optionalFloat) String() string {
	if f.value == nil {
		return ""
	}
	return strconv.FormatFloat(*f.value, 'f', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.value = &v
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)

	modelPath := fs.String("model", "model/severity_forest.json", "path to the model artifact")
	method := fs.String("location", "manual", "location method: manual or dynamic")
	ipURL := fs.String("ip-url", config.DefaultGeoIPURL, "public IP service URL (JSON response)")
	locationURL := fs.String("location-url", config.DefaultGeoLocationURL, "IP location service base URL")
	token := fs.String("token", os.Getenv("GEO_TOKEN"), "optional IP location service token")
	timeout := fs.Duration("timeout", 5*time.Second, "timeout for each location request")
	verbose := fs.Bool("v", false, "log progress to stderr")

	var in form.Input
	fs.Float64Var(&in.AgeOfDriver, "age-of-driver", 0, "age of the driver")
	fs.Float64Var(&in.AgeOfVehicle, "age-of-vehicle", 0, "age of the vehicle in years")
	fs.Float64Var(&in.EngineCC, "engine-cc", 0, "engine capacity in cc")
	fs.Float64Var(&in.SpeedLimit, "speed-limit", 0, "speed limit")
	fs.StringVar(&in.VehicleType, "vehicle-type", domain.VehicleTypes.Placeholder(), "vehicle type label")
	fs.StringVar(&in.Day, "day", domain.Days.Placeholder(), "day of the week label")
	fs.StringVar(&in.Weather, "weather", domain.Weather.Placeholder(), "weather label")
	fs.StringVar(&in.Light, "light", domain.Light.Placeholder(), "light condition label")
	fs.StringVar(&in.RoadSurface, "road-surface", domain.RoadSurfaces.Placeholder(), "road surface label")
	fs.StringVar(&in.Gender, "gender", domain.Genders.Placeholder(), "driver gender label")
	var lat, lon optionalFloat
	fs.Var(&lat, "lat", "latitude (manual location)")
	fs.Var(&lon, "lon", "longitude (manual location)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	parsed, err := form.ParseLocationMethod(*method)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	in.Method = parsed
	in.Latitude, in.Longitude = lat.value, lon.value

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	metrics := observability.NewMetricsForTesting()

	model, err := forest.Load(*modelPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var (
		ips     domain.IPResolver
		locator domain.Locator
	)
	if in.Method == form.MethodDynamic {
		client := geoip.NewClient(*ipURL, *locationURL, *token, *timeout, metrics, logger)
		ips, locator = client, client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl := form.NewController(domain.NewClassifier(model), ips, locator, nil, logger, metrics)
	out := ctrl.Submit(ctx, in)
	if out.Location != nil && in.Method == form.MethodDynamic {
		fmt.Fprintf(stderr, "Location: %.6f, %.6f\n", out.Location.Lat, out.Location.Lon)
	}
	if !out.Succeeded() {
		fmt.Fprintln(stderr, out.Message)
		return 1
	}

	fmt.Fprintln(stdout, out.Message)
	return 0
}
