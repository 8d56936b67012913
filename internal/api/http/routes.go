package httpapi

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/klymate-api/internal/store"
	"github.com/i474232898/klymate-api/internal/weather"
)

const welcomeMessage = "Welcome to the Kly-mate API!"

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. probes may be nil
// when the upstream probe is not running.
func RegisterRoutes(app *fiber.App, service *weather.Service, probes *store.MemoryStore) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": welcomeMessage})
	})

	// Upstream failures never change the status code: they are reported in
	// error_message with the affected section set to null.
	app.Get("/data/now", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		return c.JSON(service.Current(c.UserContext(), q.toCoordinates()))
	})

	app.Get("/predict/nextday/temperature", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		return c.JSON(service.PredictNextDay(c.UserContext(), q.toCoordinates()))
	})

	registerProbeRoutes(app, probes)
}

func registerProbeRoutes(app *fiber.App, probes *store.MemoryStore) {
	app.Get("/health/upstream", func(c *fiber.Ctx) error {
		if probes == nil {
			return fiber.NewError(fiber.StatusNotFound, "upstream probe is disabled")
		}

		rec, err := probes.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no upstream probe has run yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read upstream probe")
		}

		return c.JSON(fiber.Map{
			"healthy": rec.Healthy(),
			"probe":   rec,
		})
	})

	app.Get("/health/upstream/history", func(c *fiber.Ctx) error {
		if probes == nil {
			return fiber.NewError(fiber.StatusNotFound, "upstream probe is disabled")
		}

		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := probes.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no upstream probes for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read upstream probe history")
		}

		return c.JSON(fiber.Map{
			"from":   req.From,
			"to":     req.To,
			"probes": records,
		})
	})
}

// coordinatesQuery holds the lat/lon query parameters. Both are required.
type coordinatesQuery struct {
	Lat *float64 `validate:"required"`
	Lon *float64 `validate:"required"`
}

func (q coordinatesQuery) toCoordinates() weather.Coordinates {
	return weather.Coordinates{
		Lat: *q.Lat,
		Lon: *q.Lon,
	}
}

func parseCoordinatesQuery(c *fiber.Ctx) (coordinatesQuery, error) {
	var q coordinatesQuery
	var err error

	if q.Lat, err = parseFloatParam(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = parseFloatParam(c, "lon"); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// parseFloatParam returns nil for an absent parameter so validation reports it.
func parseFloatParam(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("query parameter %q must be a finite number", key)
	}
	return &f, nil
}

// historyQuery holds query parameters for the probe history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
