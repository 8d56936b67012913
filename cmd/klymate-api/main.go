package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/klymate-api/internal/api/http"
	"github.com/i474232898/klymate-api/internal/config"
	"github.com/i474232898/klymate-api/internal/logger"
	"github.com/i474232898/klymate-api/internal/metrics"
	"github.com/i474232898/klymate-api/internal/model"
	"github.com/i474232898/klymate-api/internal/scheduler"
	"github.com/i474232898/klymate-api/internal/store"
	"github.com/i474232898/klymate-api/internal/weather"
	"github.com/i474232898/klymate-api/internal/weather/providers"
)

func main() {
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("Failed to load config", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	// Shared HTTP client for outbound provider calls; Timeout applies per call.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		WeatherURL: cfg.WeatherURL,
		AQIURL:     cfg.AQIURL,
		Units:      cfg.Units,
	}, rec)

	service := weather.NewService(provider, loadPredictor(cfg.ModelPath), rec)

	// Optional upstream probe with bounded history.
	var probes *store.MemoryStore
	if cfg.ProbeInterval > 0 {
		probes = store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)
		sched := scheduler.New(cfg.ProbeTarget, cfg.ProbeInterval, service, probes, rec)
		if err := sched.Start(); err != nil {
			log.Fatalw("Failed to start upstream probe", "error", err)
		}
		defer sched.Stop()
	}

	app := httpapi.NewApp(httpapi.Options{
		Service:   service,
		Probes:    probes,
		Gatherer:  reg,
		AccessLog: true,
	})

	go func() {
		log.Infow("Starting server", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorw("Fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("Error during shutdown", "error", err)
	}
	log.Infow("Shutdown complete")
}

// loadPredictor falls back to an unloaded model when the configured file is
// unusable, so predictions report failure instead of the process exiting.
func loadPredictor(path string) weather.Predictor {
	log := logger.GetLogger()

	if path == "" {
		return model.NewPlaceholder(model.DefaultDescriptor())
	}

	m, err := model.Load(path)
	if err != nil {
		log.Warnw("Model loading failed; predictions will be unavailable", "path", path, "error", err)
		return model.Unloaded()
	}

	log.Infow("Model loaded", "path", path, "name", m.Name(), "type", m.Descriptor().ModelType)
	return m
}
