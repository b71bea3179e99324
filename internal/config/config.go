package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve without system zoneinfo

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Water-level data source.
	WaterAPIURL     string
	WaterAPITimeout time.Duration
	BoundariesPath  string

	// Recently fetched station histories are kept in memory for HistoryCacheTTL.
	// A zero size disables the cache.
	HistoryCacheSize int
	HistoryCacheTTL  time.Duration

	// Map parameters.
	DisclosureZoom int
	MinZoom        int
	MaxZoom        int
	InitialZoom    int
	InitialLat     float64
	InitialLon     float64
	FitPadding     int
	FitMaxZoom     int
	ViewportWidth  int
	ViewportHeight int

	DisplayTimezone *time.Location
	RefreshSchedule string // empty disables periodic refresh

	// Navigation intents are published to Kafka when brokers are set.
	KafkaBrokers         []string
	KafkaNavigationTopic string
}

// KafkaEnabled reports whether navigation intents go to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parseDuration("WATER_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("HISTORY_CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:             sharedcfg.EnvOrDefault("HTTP_ADDR", ":8090"),
		LogLevel:             sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:      shutdownTimeout,
		WaterAPIURL:          strings.TrimRight(sharedcfg.EnvOrDefault("WATER_API_URL", "http://localhost:8080"), "/"),
		WaterAPITimeout:      apiTimeout,
		HistoryCacheTTL:      cacheTTL,
		BoundariesPath:       sharedcfg.EnvOrDefault("BOUNDARIES_PATH", "data/provinces.geojson"),
		RefreshSchedule:      "@every 5m",
		KafkaNavigationTopic: sharedcfg.EnvOrDefault("KAFKA_NAVIGATION_TOPIC", "station-navigation"),
	}
	// An explicitly empty schedule turns periodic refresh off.
	if v, ok := os.LookupEnv("SNAPSHOT_REFRESH_SCHEDULE"); ok {
		cfg.RefreshSchedule = strings.TrimSpace(v)
	}
	if s := os.Getenv("KAFKA_BROKERS"); s != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(s)
	}

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"DISCLOSURE_ZOOM", 10, &cfg.DisclosureZoom},
		{"MIN_ZOOM", 5, &cfg.MinZoom},
		{"MAX_ZOOM", 18, &cfg.MaxZoom},
		{"INITIAL_ZOOM", 6, &cfg.InitialZoom},
		{"FIT_PADDING_PX", 50, &cfg.FitPadding},
		{"FIT_MAX_ZOOM", 11, &cfg.FitMaxZoom},
		{"VIEWPORT_WIDTH", 1280, &cfg.ViewportWidth},
		{"VIEWPORT_HEIGHT", 800, &cfg.ViewportHeight},
		{"HISTORY_CACHE_SIZE", 64, &cfg.HistoryCacheSize},
	}
	for _, f := range ints {
		v, err := parseInt(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}

	cfg.InitialLat, cfg.InitialLon, err = parseCenter(sharedcfg.EnvOrDefault("INITIAL_CENTER", "13.7563,100.5018"))
	if err != nil {
		return nil, err
	}

	tz := sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "Asia/Bangkok")
	cfg.DisplayTimezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", tz, err)
	}

	if cfg.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
			return nil, fmt.Errorf("invalid SNAPSHOT_REFRESH_SCHEDULE %q: %w", cfg.RefreshSchedule, err)
		}
	}

	if cfg.WaterAPIURL == "" {
		return nil, errors.New("WATER_API_URL is required")
	}
	if cfg.BoundariesPath == "" {
		return nil, errors.New("BOUNDARIES_PATH is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaNavigationTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_NAVIGATION_TOPIC is empty")
	}
	if cfg.MinZoom > cfg.MaxZoom {
		return nil, fmt.Errorf("MIN_ZOOM %d exceeds MAX_ZOOM %d", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.DisclosureZoom < cfg.MinZoom || cfg.DisclosureZoom > cfg.MaxZoom {
		return nil, fmt.Errorf("DISCLOSURE_ZOOM %d outside [MIN_ZOOM, MAX_ZOOM]", cfg.DisclosureZoom)
	}
	if cfg.FitMaxZoom < cfg.DisclosureZoom {
		return nil, fmt.Errorf("FIT_MAX_ZOOM %d is below DISCLOSURE_ZOOM %d", cfg.FitMaxZoom, cfg.DisclosureZoom)
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func parseCenter(s string) (lat, lon float64, err error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid INITIAL_CENTER %q: want lat,lon", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid INITIAL_CENTER latitude %q", latStr)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid INITIAL_CENTER longitude %q", lonStr)
	}
	return lat, lon, nil
}
