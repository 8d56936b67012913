package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/klymate-api/internal/logger"
	"github.com/i474232898/klymate-api/internal/metrics"
	"github.com/i474232898/klymate-api/internal/store"
	"github.com/i474232898/klymate-api/internal/weather"
)

const probeTimeout = 30 * time.Second

// Pipeline is the part of weather.Service the probe exercises.
type Pipeline interface {
	Current(ctx context.Context, c weather.Coordinates) weather.WeatherAQIResponse
}

// Scheduler periodically runs the current-data pipeline for a fixed probe
// coordinate and records the outcome.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipeline  Pipeline
	store     *store.MemoryStore
	metrics   *metrics.Recorder
	target    weather.Coordinates
	interval  time.Duration
}

// New creates a new Scheduler. rec may be nil.
func New(target weather.Coordinates, interval time.Duration, pipeline Pipeline, st *store.MemoryStore, rec *metrics.Recorder) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pipeline:  pipeline,
		store:     st,
		metrics:   rec,
		target:    target,
		interval:  interval,
	}
}

// Start schedules the probe job. The first run happens immediately.
// A non-positive interval disables probing.
func (s *Scheduler) Start() error {
	log := logger.GetLogger()
	if s.interval <= 0 {
		log.Infow("Upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	log.Infow("Upstream probe scheduled",
		"interval", s.interval,
		"lat", s.target.Lat,
		"lon", s.target.Lon)
	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes the upstream pipeline and stores the resulting record.
func (s *Scheduler) RunOnce(ctx context.Context) store.ProbeRecord {
	start := time.Now()
	resp := s.pipeline.Current(ctx, s.target)

	rec := store.ProbeRecord{
		Timestamp:    start.UTC(),
		Latitude:     s.target.Lat,
		Longitude:    s.target.Lon,
		WeatherOK:    resp.CurrentWeather != nil,
		AQIOK:        resp.CurrentAQI != nil,
		ErrorMessage: resp.ErrorMessage,
		DurationMs:   time.Since(start).Milliseconds(),
	}
	s.store.Save(rec)

	if rec.Healthy() {
		s.metrics.ObserveProbe(metrics.OutcomeOK)
		logger.GetLogger().Debugw("Upstream probe completed", "duration_ms", rec.DurationMs)
	} else {
		s.metrics.ObserveProbe(metrics.OutcomeFailed)
		logger.GetLogger().Warnw("Upstream probe degraded",
			"weather_ok", rec.WeatherOK,
			"aqi_ok", rec.AQIOK,
			"duration_ms", rec.DurationMs)
	}
	return rec
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
