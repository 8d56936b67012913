package weather

import "strings"

// Normalize maps the two raw upstream results into a WeatherAQIResponse.
// It performs no I/O and never fails: each section is filled independently and
// any field the provider omitted stays nil.
func Normalize(c Coordinates, weatherRes, aqiRes Result) WeatherAQIResponse {
	resp := WeatherAQIResponse{
		Location:          locationFrom(c, weatherRes),
		WeatherDataSource: DataSource,
		AQIDataSource:     DataSource,
		ErrorMessage:      combineErrors(weatherRes, aqiRes),
	}

	if !weatherRes.Failed() {
		resp.CurrentWeather = currentWeatherFrom(weatherRes.Payload())
	}
	if !aqiRes.Failed() {
		resp.CurrentAQI = currentAQIFrom(aqiRes.Payload())
	}

	return resp
}

func locationFrom(c Coordinates, weatherRes Result) Location {
	loc := Location{
		Latitude:  c.Lat,
		Longitude: c.Lon,
	}
	if !weatherRes.Failed() {
		loc.City = weatherRes.Payload().Text("name")
	}
	return loc
}

func currentWeatherFrom(p Payload) *CurrentWeather {
	main := p.Object("main")
	wind := p.Object("wind")
	// Only the first listed condition is reported.
	cond := p.First("weather")

	return &CurrentWeather{
		Temperature: main.Float("temp"),
		FeelsLike:   main.Float("feels_like"),
		TempMin:     main.Float("temp_min"),
		TempMax:     main.Float("temp_max"),
		Pressure:    main.Int("pressure"),
		Humidity:    main.Int("humidity"),
		Description: cond.Text("description"),
		WindSpeed:   wind.Float("speed"),
	}
}

func currentAQIFrom(p Payload) *CurrentAQI {
	components := p.Object("components")

	return &CurrentAQI{
		AQI:  p.Object("main").Int("aqi"),
		CO:   components.Float("co"),
		NO2:  components.Float("no2"),
		O3:   components.Float("o3"),
		SO2:  components.Float("so2"),
		PM25: components.Float("pm2_5"),
		PM10: components.Float("pm10"),
	}
}

// combineErrors labels each failed subsystem. Weather always precedes AQI.
func combineErrors(weatherRes, aqiRes Result) *string {
	var parts []string
	if weatherRes.Failed() {
		parts = append(parts, "Weather Error: "+weatherRes.Err().Message)
	}
	if aqiRes.Failed() {
		parts = append(parts, "AQI Error: "+aqiRes.Err().Message)
	}
	if len(parts) == 0 {
		return nil
	}
	msg := strings.Join(parts, "; ")
	return &msg
}
