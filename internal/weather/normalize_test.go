package weather

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/klymate-api/internal/logger"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

const weatherJSON = `{
	"coord": {"lon": 77.5946, "lat": 12.9716},
	"weather": [{"id": 802, "main": "Clouds", "description": "scattered clouds", "icon": "03d"}],
	"main": {"temp": 27.43, "feels_like": 28.1, "temp_min": 26.9, "temp_max": 28.05, "pressure": 1012, "humidity": 54},
	"wind": {"speed": 4.63, "deg": 250},
	"name": "Bengaluru"
}`

const aqiJSON = `{
	"main": {"aqi": 3},
	"components": {"co": 447.27, "no": 0.5, "no2": 14.91, "o3": 68.66, "so2": 6.2, "pm2_5": 27.5, "pm10": 39.8, "nh3": 4.12},
	"dt": 1700000000
}`

func decode(t *testing.T, raw string) Payload {
	t.Helper()
	var p map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

var bangalore = Coordinates{Lat: 12.9716, Lon: 77.5946}

func TestNormalize_FullPayload(t *testing.T) {
	resp := Normalize(bangalore, Success(decode(t, weatherJSON)), Success(decode(t, aqiJSON)))

	assert.Equal(t, 12.9716, resp.Location.Latitude)
	assert.Equal(t, 77.5946, resp.Location.Longitude)
	require.NotNil(t, resp.Location.City)
	assert.Equal(t, "Bengaluru", *resp.Location.City)
	assert.Nil(t, resp.ErrorMessage)
	assert.Equal(t, "OpenWeatherMap", resp.WeatherDataSource)
	assert.Equal(t, "OpenWeatherMap", resp.AQIDataSource)

	w := resp.CurrentWeather
	require.NotNil(t, w)
	assert.Equal(t, 27.43, *w.Temperature)
	assert.Equal(t, 28.1, *w.FeelsLike)
	assert.Equal(t, 26.9, *w.TempMin)
	assert.Equal(t, 28.05, *w.TempMax)
	assert.Equal(t, 1012, *w.Pressure)
	assert.Equal(t, 54, *w.Humidity)
	assert.Equal(t, "scattered clouds", *w.Description)
	assert.Equal(t, 4.63, *w.WindSpeed)

	a := resp.CurrentAQI
	require.NotNil(t, a)
	assert.Equal(t, 3, *a.AQI)
	assert.Equal(t, 447.27, *a.CO)
	assert.Equal(t, 14.91, *a.NO2)
	assert.Equal(t, 68.66, *a.O3)
	assert.Equal(t, 6.2, *a.SO2)
	assert.Equal(t, 27.5, *a.PM25)
	assert.Equal(t, 39.8, *a.PM10)
}

func TestNormalize_SuccessFailureMatrix(t *testing.T) {
	weatherOK := Success(decode(t, weatherJSON))
	aqiOK := Success(decode(t, aqiJSON))
	weatherErr := Failure(ErrTransport, "Could not fetch weather data: connection refused")
	aqiErr := Failure(ErrParse, "AQI data format unexpected")

	tests := []struct {
		name        string
		weather     Result
		aqi         Result
		wantWeather bool
		wantAQI     bool
		wantErr     string
	}{
		{"both ok", weatherOK, aqiOK, true, true, ""},
		{"weather failed", weatherErr, aqiOK, false, true,
			"Weather Error: Could not fetch weather data: connection refused"},
		{"aqi failed", weatherOK, aqiErr, true, false,
			"AQI Error: AQI data format unexpected"},
		{"both failed", weatherErr, aqiErr, false, false,
			"Weather Error: Could not fetch weather data: connection refused; AQI Error: AQI data format unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Normalize(bangalore, tt.weather, tt.aqi)

			assert.Equal(t, tt.wantWeather, resp.CurrentWeather != nil)
			assert.Equal(t, tt.wantAQI, resp.CurrentAQI != nil)
			if tt.wantErr == "" {
				assert.Nil(t, resp.ErrorMessage)
			} else {
				require.NotNil(t, resp.ErrorMessage)
				assert.Equal(t, tt.wantErr, *resp.ErrorMessage)
			}
			assert.Equal(t, bangalore.Lat, resp.Location.Latitude)
			assert.Equal(t, bangalore.Lon, resp.Location.Longitude)
		})
	}
}

func TestNormalize_CityFromWeatherOnly(t *testing.T) {
	aqiWithName := Success(Payload{"name": "Not a city source"})

	resp := Normalize(bangalore, Success(decode(t, weatherJSON)), Failure(ErrTransport, "timeout"))
	require.NotNil(t, resp.Location.City)
	assert.Equal(t, "Bengaluru", *resp.Location.City)

	resp = Normalize(bangalore, Failure(ErrTransport, "timeout"), aqiWithName)
	assert.Nil(t, resp.Location.City)

	resp = Normalize(bangalore, Success(Payload{"name": 42}), aqiWithName)
	assert.Nil(t, resp.Location.City)
}

func TestNormalize_MissingSubstructures(t *testing.T) {
	resp := Normalize(bangalore, Success(Payload{}), Success(Payload{}))

	require.NotNil(t, resp.CurrentWeather)
	require.NotNil(t, resp.CurrentAQI)
	assert.Equal(t, CurrentWeather{}, *resp.CurrentWeather)
	assert.Equal(t, CurrentAQI{}, *resp.CurrentAQI)
	assert.Nil(t, resp.ErrorMessage)
	assert.Nil(t, resp.Location.City)
}

func TestNormalize_WrongShapes(t *testing.T) {
	weatherRaw := Payload{
		"main":    "not an object",
		"weather": []any{},
		"wind":    map[string]any{"speed": "fast"},
	}
	aqiRaw := Payload{
		"main":       map[string]any{"aqi": 2.5},
		"components": []any{1, 2, 3},
	}

	resp := Normalize(bangalore, Success(weatherRaw), Success(aqiRaw))

	assert.Equal(t, CurrentWeather{}, *resp.CurrentWeather)
	assert.Equal(t, CurrentAQI{}, *resp.CurrentAQI)
}

func TestNormalize_PartialFields(t *testing.T) {
	weatherRaw := Payload{
		"main":    map[string]any{"temp": 18.0, "humidity": 80.0},
		"weather": []any{"not an object"},
	}

	resp := Normalize(bangalore, Success(weatherRaw), Failure(ErrCredentialMissing, "API key not configured"))

	w := resp.CurrentWeather
	require.NotNil(t, w)
	assert.Equal(t, 18.0, *w.Temperature)
	assert.Equal(t, 80, *w.Humidity)
	assert.Nil(t, w.FeelsLike)
	assert.Nil(t, w.Pressure)
	assert.Nil(t, w.Description)
	assert.Nil(t, w.WindSpeed)
	assert.Nil(t, resp.CurrentAQI)
	assert.Equal(t, "AQI Error: API key not configured", *resp.ErrorMessage)
}

func TestNormalize_JSONKeepsNulls(t *testing.T) {
	resp := Normalize(bangalore,
		Failure(ErrCredentialMissing, "API key not configured"),
		Failure(ErrCredentialMissing, "API key not configured"))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Contains(t, got, "current_weather")
	assert.Nil(t, got["current_weather"])
	assert.Contains(t, got, "current_aqi")
	assert.Nil(t, got["current_aqi"])
	assert.Equal(t, "Weather Error: API key not configured; AQI Error: API key not configured", got["error_message"])

	loc := got["location"].(map[string]any)
	assert.Contains(t, loc, "city")
	assert.Nil(t, loc["city"])
	assert.Equal(t, 12.9716, loc["latitude"])
}

func TestResult_Constructors(t *testing.T) {
	ok := Success(nil)
	assert.False(t, ok.Failed())
	assert.NotNil(t, ok.Payload())
	assert.Nil(t, ok.Err())

	failed := Failure(ErrUnexpected, "An unexpected error occurred")
	assert.True(t, failed.Failed())
	assert.Nil(t, failed.Payload())
	assert.Equal(t, ErrUnexpected, failed.Err().Kind)
	assert.EqualError(t, failed.Err(), "An unexpected error occurred")
}
