package weather

// DataSource identifies where weather and AQI data came from.
const DataSource = "OpenWeatherMap"

// Coordinates is a geographic point. The upstream provider is authoritative on range.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Location describes the place a response refers to.
// City is only set when the weather provider returned a name.
type Location struct {
	City      *string `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather is the normalized current weather reading.
type CurrentWeather struct {
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like"`
	TempMin     *float64 `json:"temp_min"`
	TempMax     *float64 `json:"temp_max"`
	Pressure    *int     `json:"pressure"`
	Humidity    *int     `json:"humidity"`
	Description *string  `json:"description"`
	WindSpeed   *float64 `json:"wind_speed"`
}

// CurrentAQI is the normalized current air quality reading.
type CurrentAQI struct {
	AQI  *int     `json:"aqi"` // 1 (good) .. 5 (very poor)
	CO   *float64 `json:"co"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
	SO2  *float64 `json:"so2"`
	PM25 *float64 `json:"pm2_5"`
	PM10 *float64 `json:"pm10"`
}

// WeatherAQIResponse is returned by the current data endpoint. A nil section
// means the corresponding upstream call failed; ErrorMessage then says why.
type WeatherAQIResponse struct {
	Location          Location        `json:"location"`
	CurrentWeather    *CurrentWeather `json:"current_weather"`
	CurrentAQI        *CurrentAQI     `json:"current_aqi"`
	WeatherDataSource string          `json:"weather_data_source"`
	AQIDataSource     string          `json:"aqi_data_source"`
	ErrorMessage      *string         `json:"error_message"`
}

// PredictionResult is returned by the next-day prediction endpoint.
type PredictionResult struct {
	Location                    Location `json:"location"`
	PredictedTemperatureNextDay *float64 `json:"predicted_temperature_next_day"`
	PredictionSource            string   `json:"prediction_source"`
	ErrorMessage                *string  `json:"error_message"`
}
