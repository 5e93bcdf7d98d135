package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default endpoints for dynamic location. The IP service must answer JSON.
const (
	DefaultGeoIPURL       = "https://api64.ipify.org?format=json"
	DefaultGeoLocationURL = "https://ipinfo.io"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Trained model artifact, loaded once at startup.
	ModelPath string

	// Dynamic location (public IP -> coordinates) configuration.
	GeoEnabled     bool
	GeoIPURL       string
	GeoLocationURL string
	GeoToken       string
	GeoTimeout     time.Duration
	GeoCacheSize   int

	// Optional prediction event stream. Disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geoTimeoutStr := sharedcfg.EnvOrDefault("GEO_TIMEOUT", "5s")
	geoTimeout, err := time.ParseDuration(geoTimeoutStr)
	if err != nil || geoTimeout <= 0 {
		return nil, errors.New("invalid GEO_TIMEOUT")
	}

	geoCacheSize, err := parsePositiveInt("GEO_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	geoEnabled := true
	if v := os.Getenv("GEO_ENABLED"); v != "" {
		geoEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GEO_ENABLED: %q", v)
		}
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelPath: sharedcfg.EnvOrDefault("MODEL_PATH", "model/severity_forest.json"),

		GeoEnabled:     geoEnabled,
		GeoIPURL:       sharedcfg.EnvOrDefault("GEO_IP_URL", DefaultGeoIPURL),
		GeoLocationURL: strings.TrimRight(sharedcfg.EnvOrDefault("GEO_LOCATION_URL", DefaultGeoLocationURL), "/"),
		GeoToken:       os.Getenv("GEO_TOKEN"),
		GeoTimeout:     geoTimeout,
		GeoCacheSize:   geoCacheSize,

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "accident-severity-predictions"),
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.GeoEnabled && (cfg.GeoIPURL == "" || cfg.GeoLocationURL == "") {
		return nil, errors.New("GEO_IP_URL and GEO_LOCATION_URL are required when GEO_ENABLED is true")
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEnabled reports whether prediction events are sent to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

// parseBrokers splits a comma-separated broker list. An empty string yields nil.
func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}
