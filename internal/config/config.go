package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/klymate-api/internal/logger"
	"github.com/i474232898/klymate-api/internal/weather"
	"github.com/i474232898/klymate-api/internal/weather/providers"
)

type AppConfig struct {
	// OpenWeatherAPIKey may be empty; every fetch then degrades to an error payload.
	OpenWeatherAPIKey string

	WeatherURL string
	AQIURL     string
	Units      string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// ModelPath points to a YAML model descriptor. Empty uses the built-in placeholder.
	ModelPath string

	// Upstream probe. A zero ProbeInterval disables it.
	ProbeInterval   time.Duration
	ProbeTarget     weather.Coordinates
	ProbeMaxHistory int           // max number of probe records (0 = unlimited)
	ProbeMaxAge     time.Duration // max age of probe records (0 = unlimited)

	Port string
}

// Load reads configuration from the environment (and a .env file when present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil {
		log.Infow("No .env file found or error loading it", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("OWM_WEATHER_URL", providers.DefaultWeatherURL)
	v.SetDefault("OWM_AQI_URL", providers.DefaultAQIURL)
	v.SetDefault("OWM_UNITS", "metric")
	v.SetDefault("MODEL_PATH", "")
	v.SetDefault("PROBE_INTERVAL", "0")
	v.SetDefault("PROBE_LAT", 12.9716)
	v.SetDefault("PROBE_LON", 77.5946)
	v.SetDefault("PROBE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	v.SetDefault("PROBE_MAX_AGE", "24h")

	cfg := &AppConfig{
		OpenWeatherAPIKey: v.GetString("OPENWEATHERMAP_API_KEY"),
		WeatherURL:        v.GetString("OWM_WEATHER_URL"),
		AQIURL:            v.GetString("OWM_AQI_URL"),
		Units:             v.GetString("OWM_UNITS"),
		ModelPath:         v.GetString("MODEL_PATH"),
		ProbeMaxHistory:   v.GetInt("PROBE_MAX_HISTORY"),
		Port:              v.GetString("PORT"),
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	if cfg.ProbeInterval, err = parseDuration(v, "PROBE_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.ProbeMaxAge, err = parseDuration(v, "PROBE_MAX_AGE"); err != nil {
		return nil, err
	}

	lat, err := parseFloat(v, "PROBE_LAT")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat(v, "PROBE_LON")
	if err != nil {
		return nil, err
	}
	cfg.ProbeTarget = weather.Coordinates{Lat: lat, Lon: lon}

	if cfg.OpenWeatherAPIKey == "" {
		log.Warnw("No OpenWeatherMap API key found; data endpoints will report errors",
			"env", "OPENWEATHERMAP_API_KEY")
	} else {
		log.Infow("OpenWeatherMap API key loaded",
			"key", logger.MaskSensitiveString(cfg.OpenWeatherAPIKey, 2, 2))
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseFloat(v *viper.Viper, key string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s: must be finite", key)
	}
	return f, nil
}
