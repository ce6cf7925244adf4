package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// eBird API access.
	EBirdAPIKey  string
	EBirdTimeout time.Duration

	// Map query parameters.
	CenterLat  float64
	CenterLon  float64
	RadiusKm   float64
	BackDays   int
	MaxResults int
	ZoomStart  int

	// Rendering behavior.
	SpeciesLayerThreshold int

	// Artifact publishing and retention.
	OutputDir string
	KeepCount int

	// Scheduled-run override pair. Both must be set (and valid) for a
	// deterministic run stamp; otherwise the build stamps with "now".
	RunDate string
	RunSlot string

	// Daemon mode. Empty CronSchedule means a single build and exit.
	CronSchedule    string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	// Optional build-summary notification.
	KafkaBrokers []string
	KafkaTopic   string
}

// NotifyEnabled reports whether build summaries should be published.
func (c *Config) NotifyEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

// Defaults center on the Alewife Brook Reservation area; override per
// deployment.
const (
	defaultCenterLat = 42.3974042
	defaultCenterLon = -71.1366337
)

// eBird API bounds for the notable-observations endpoint.
const (
	maxRadiusKm   = 50
	maxBackDays   = 30
	maxMaxResults = 10000
)

// maxZoomStart matches the tile layer's maxZoom on the rendered map.
const maxZoomStart = 19

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		EBirdAPIKey: strings.TrimSpace(os.Getenv("EBIRD_API_KEY")),
		OutputDir:   envOrDefault("OUTPUT_DIR", filepath.Join(os.TempDir(), "bird_maps")),
		RunDate:     os.Getenv("RUN_DATE"),
		RunSlot:     os.Getenv("RUN_SLOT"),

		CronSchedule: os.Getenv("CRON_SCHEDULE"),
		HTTPAddr:     envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "json"),

		KafkaTopic: os.Getenv("KAFKA_TOPIC"),
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.EBirdTimeout, err = durationEnv("EBIRD_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CenterLat, err = floatEnv("CENTER_LAT", defaultCenterLat); err != nil {
		return nil, err
	}
	if cfg.CenterLon, err = floatEnv("CENTER_LON", defaultCenterLon); err != nil {
		return nil, err
	}
	if cfg.RadiusKm, err = floatEnv("RADIUS_KM", 10); err != nil {
		return nil, err
	}
	if cfg.BackDays, err = intEnv("BACK_DAYS", 2); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = intEnv("MAX_RESULTS", 200); err != nil {
		return nil, err
	}
	if cfg.ZoomStart, err = intEnv("ZOOM_START", 11); err != nil {
		return nil, err
	}
	if cfg.SpeciesLayerThreshold, err = intEnv("SPECIES_LAYER_THRESHOLD", 25); err != nil {
		return nil, err
	}
	if cfg.KeepCount, err = intEnv("KEEP_COUNT", 30); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.CenterLat < -90 || c.CenterLat > 90:
		return fmt.Errorf("CENTER_LAT must be within [-90, 90], got %g", c.CenterLat)
	case c.CenterLon < -180 || c.CenterLon > 180:
		return fmt.Errorf("CENTER_LON must be within [-180, 180], got %g", c.CenterLon)
	case c.RadiusKm <= 0 || c.RadiusKm > maxRadiusKm:
		return fmt.Errorf("RADIUS_KM must be within (0, %d], got %g", maxRadiusKm, c.RadiusKm)
	case c.BackDays < 1 || c.BackDays > maxBackDays:
		return fmt.Errorf("BACK_DAYS must be within [1, %d], got %d", maxBackDays, c.BackDays)
	case c.MaxResults < 1 || c.MaxResults > maxMaxResults:
		return fmt.Errorf("MAX_RESULTS must be within [1, %d], got %d", maxMaxResults, c.MaxResults)
	case c.ZoomStart < 1 || c.ZoomStart > maxZoomStart:
		return fmt.Errorf("ZOOM_START must be within [1, %d], got %d", maxZoomStart, c.ZoomStart)
	case c.SpeciesLayerThreshold < 1:
		return fmt.Errorf("SPECIES_LAYER_THRESHOLD must be positive, got %d", c.SpeciesLayerThreshold)
	case c.KeepCount < 0:
		return fmt.Errorf("KEEP_COUNT must not be negative, got %d", c.KeepCount)
	case c.EBirdTimeout <= 0:
		return fmt.Errorf("EBIRD_TIMEOUT must be positive, got %s", c.EBirdTimeout)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	case len(c.KafkaBrokers) > 0 && c.KafkaTopic == "":
		return fmt.Errorf("KAFKA_BROKERS is set but KAFKA_TOPIC is not")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}
