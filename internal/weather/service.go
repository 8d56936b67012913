package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/i474232898/klymate-api/internal/logger"
	"github.com/i474232898/klymate-api/internal/metrics"
)

const predictionFailedMsg = "Prediction failed (model not loaded or internal error)."

var errPredictorPanic = errors.New("predictor panicked")

// Service orchestrates upstream fetches, normalization and prediction for a
// single request. It holds no per-request state.
type Service struct {
	provider  Provider
	predictor Predictor
	metrics   *metrics.Recorder
}

// NewService creates a new Service. rec may be nil.
func NewService(provider Provider, predictor Predictor, rec *metrics.Recorder) *Service {
	return &Service{
		provider:  provider,
		predictor: predictor,
		metrics:   rec,
	}
}

// Current fetches weather and air quality concurrently and normalizes them.
// A failure of one call never blocks or cancels the other.
func (s *Service) Current(ctx context.Context, c Coordinates) WeatherAQIResponse {
	var (
		wg         sync.WaitGroup
		weatherRes Result
		aqiRes     Result
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		weatherRes = s.provider.FetchWeather(ctx, c)
	}()
	go func() {
		defer wg.Done()
		aqiRes = s.provider.FetchAirQuality(ctx, c)
	}()
	wg.Wait()

	resp := Normalize(c, weatherRes, aqiRes)
	if resp.ErrorMessage != nil {
		logger.GetLogger().Warnw("Serving degraded weather/AQI response",
			"provider", s.provider.Name(),
			"lat", c.Lat,
			"lon", c.Lon,
			"error", *resp.ErrorMessage)
	}
	return resp
}

// PredictNextDay fetches the current weather and feeds it to the predictor.
// The predictor is not called when the weather fetch failed.
func (s *Service) PredictNextDay(ctx context.Context, c Coordinates) PredictionResult {
	log := logger.GetLogger()

	weatherRes := s.provider.FetchWeather(ctx, c)

	result := PredictionResult{
		Location:         locationFrom(c, weatherRes),
		PredictionSource: s.predictor.Name(),
	}

	if weatherRes.Failed() {
		msg := fmt.Sprintf("Could not get current weather for prediction input: %s", weatherRes.Err().Message)
		result.ErrorMessage = &msg
		return result
	}

	predicted, err := s.safePredict(weatherRes.Payload())
	if err != nil {
		log.Errorw("Prediction failed",
			"model", s.predictor.Name(),
			"lat", c.Lat,
			"lon", c.Lon,
			"error", err)
		s.metrics.ObservePrediction(metrics.OutcomeFailed)
		msg := predictionFailedMsg
		result.ErrorMessage = &msg
		return result
	}

	s.metrics.ObservePrediction(metrics.OutcomeOK)
	result.PredictedTemperatureNextDay = &predicted
	return result
}

func (s *Service) safePredict(reading Payload) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPredictorPanic, r)
		}
	}()

	v, err = s.predictor.Predict(reading)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("predictor returned non-finite value %v", v)
	}
	return v, nil
}
