package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/klymate-api/internal/logger"
	"github.com/i474232898/klymate-api/internal/metrics"
	"github.com/i474232898/klymate-api/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"
	DefaultAQIURL     = "http://api.openweathermap.org/data/2.5/air_pollution"

	subsystemWeather = "weather"
	subsystemAQI     = "aqi"

	msgNoAPIKey          = "API key not configured"
	msgAQIUnexpected     = "AQI data format unexpected"
	msgAQIParse          = "Could not parse AQI data"
	msgUnexpectedFailure = "An unexpected error occurred"
)

// OpenWeatherConfig configures an OpenWeatherProvider. Empty URLs and units
// fall back to the public OpenWeatherMap endpoints and metric units.
type OpenWeatherConfig struct {
	APIKey     string
	WeatherURL string
	AQIURL     string
	Units      string

	// CircuitOpenTimeout is how long a tripped breaker rejects calls. Defaults to 30s.
	CircuitOpenTimeout time.Duration
}

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name       string
	apiKey     string
	units      string
	weatherURL string
	aqiURL     string
	client     *http.Client

	weatherCircuit *gobreaker.CircuitBreaker
	aqiCircuit     *gobreaker.CircuitBreaker

	metrics *metrics.Recorder
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

// NewOpenWeatherProvider builds a provider. The client's Timeout bounds each
// call independently. rec may be nil.
func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig, rec *metrics.Recorder) *OpenWeatherProvider {
	if cfg.WeatherURL == "" {
		cfg.WeatherURL = DefaultWeatherURL
	}
	if cfg.AQIURL == "" {
		cfg.AQIURL = DefaultAQIURL
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.CircuitOpenTimeout <= 0 {
		cfg.CircuitOpenTimeout = 30 * time.Second
	}

	return &OpenWeatherProvider{
		name:           "openweathermap",
		apiKey:         cfg.APIKey,
		units:          cfg.Units,
		weatherURL:     cfg.WeatherURL,
		aqiURL:         cfg.AQIURL,
		client:         client,
		weatherCircuit: newCircuitBreaker("openweather-weather", cfg.CircuitOpenTimeout),
		aqiCircuit:     newCircuitBreaker("openweather-aqi", cfg.CircuitOpenTimeout),
		metrics:        rec,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// FetchWeather returns the current weather document verbatim.
func (p *OpenWeatherProvider) FetchWeather(ctx context.Context, c weather.Coordinates) (res weather.Result) {
	defer p.guard(subsystemWeather, c, time.Now(), &res)

	if p.apiKey == "" {
		return weather.Failure(weather.ErrCredentialMissing, msgNoAPIKey)
	}

	values := p.coordValues(c)
	values.Set("units", p.units)

	body, err := doRequest(ctx, p.client, p.weatherCircuit, p.weatherURL, values)
	if err != nil {
		return weather.Failure(weather.ErrTransport, "Could not fetch weather data: "+describe(err))
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Failure(weather.ErrParse, "Could not parse weather data: "+err.Error())
	}
	return weather.Success(payload)
}

// FetchAirQuality returns the first entry of the air pollution list.
func (p *OpenWeatherProvider) FetchAirQuality(ctx context.Context, c weather.Coordinates) (res weather.Result) {
	defer p.guard(subsystemAQI, c, time.Now(), &res)

	if p.apiKey == "" {
		return weather.Failure(weather.ErrCredentialMissing, msgNoAPIKey)
	}

	body, err := doRequest(ctx, p.client, p.aqiCircuit, p.aqiURL, p.coordValues(c))
	if err != nil {
		return weather.Failure(weather.ErrTransport, "Could not fetch AQI data: "+describe(err))
	}

	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return weather.Failure(weather.ErrParse, msgAQIParse)
	}

	list, ok := envelope["list"].([]any)
	if !ok || len(list) == 0 {
		return weather.Failure(weather.ErrParse, msgAQIUnexpected)
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return weather.Failure(weather.ErrParse, msgAQIParse)
	}
	return weather.Success(first)
}

func (p *OpenWeatherProvider) coordValues(c weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	return values
}

// guard turns a panic into an unexpected_error result, then records and logs
// the outcome of the call.
func (p *OpenWeatherProvider) guard(subsystem string, c weather.Coordinates, start time.Time, res *weather.Result) {
	if r := recover(); r != nil {
		logger.GetLogger().Errorw("Recovered panic in upstream fetch",
			"subsystem", subsystem,
			"panic", fmt.Sprint(r))
		*res = weather.Failure(weather.ErrUnexpected, msgUnexpectedFailure)
	}

	elapsed := time.Since(start)
	log := logger.GetLogger()

	if fe := res.Err(); fe != nil {
		p.metrics.ObserveUpstream(subsystem, string(fe.Kind), elapsed)
		log.Warnw("Upstream fetch failed",
			"provider", p.name,
			"subsystem", subsystem,
			"lat", c.Lat,
			"lon", c.Lon,
			"kind", fe.Kind,
			"error", fe.Message)
		return
	}

	p.metrics.ObserveUpstream(subsystem, metrics.OutcomeOK, elapsed)
	log.Debugw("Upstream fetch succeeded",
		"provider", p.name,
		"subsystem", subsystem,
		"duration", elapsed)
}
