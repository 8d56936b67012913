// Package model holds the next-day temperature predictor. The only
// implementation today is a placeholder that stands where a trained model
// will be plugged in behind weather.Predictor.
package model

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/klymate-api/internal/weather"
)

const (
	// DefaultName is reported as the prediction source.
	DefaultName = "Kly-mate Placeholder Model"

	// FallbackTemperature is predicted when the reading has no usable temperature.
	FallbackTemperature = 25.0
)

// ErrModelNotLoaded is returned by Predict when no descriptor was loaded.
var ErrModelNotLoaded = errors.New("model not loaded")

// Descriptor is the on-disk description of a model artifact.
type Descriptor struct {
	Name           string `yaml:"name"`
	ModelType      string `yaml:"model_type"`
	Description    string `yaml:"description"`
	PredictionInfo string `yaml:"prediction_info"`
}

// DefaultDescriptor is used when no model file is configured.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Name:           DefaultName,
		ModelType:      "Placeholder",
		Description:    "This is not a real ML model. Replace with actual trained model later.",
		PredictionInfo: "Returns input temp + 1 for demo.",
	}
}

// Placeholder predicts tomorrow's temperature as today's plus one degree.
type Placeholder struct {
	desc *Descriptor
}

var _ weather.Predictor = (*Placeholder)(nil)

// NewPlaceholder returns a loaded placeholder model.
func NewPlaceholder(desc Descriptor) *Placeholder {
	if desc.Name == "" {
		desc.Name = DefaultName
	}
	return &Placeholder{desc: &desc}
}

// Unloaded returns a placeholder whose predictions always fail, for when the
// configured model file could not be read.
func Unloaded() *Placeholder {
	return &Placeholder{}
}

// Load reads a YAML descriptor from path.
func Load(path string) (*Placeholder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file %s: %w", path, err)
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse model file %s: %w", path, err)
	}
	if desc.ModelType == "" {
		return nil, fmt.Errorf("model file %s: model_type is required", path)
	}

	return NewPlaceholder(desc), nil
}

// Loaded reports whether a descriptor is present.
func (p *Placeholder) Loaded() bool {
	return p.desc != nil
}

// Descriptor returns the loaded descriptor, or the zero value.
func (p *Placeholder) Descriptor() Descriptor {
	if p.desc == nil {
		return Descriptor{}
	}
	return *p.desc
}

func (p *Placeholder) Name() string {
	if p.desc == nil {
		return DefaultName
	}
	return p.desc.Name
}

// Predict returns main.temp + 1 rounded to two decimals, or FallbackTemperature
// when main.temp is missing or not a number.
func (p *Placeholder) Predict(reading weather.Payload) (float64, error) {
	if p.desc == nil {
		return 0, ErrModelNotLoaded
	}

	temp, ok := reading.Object("main").Number("temp")
	if !ok {
		return FallbackTemperature, nil
	}
	return roundCents(temp + 1.0), nil
}

// roundCents rounds v to two decimals. Values too large to carry a fractional
// part are returned unchanged, since scaling them would overflow.
func roundCents(v float64) float64 {
	if math.Abs(v) >= 1e15 {
		return v
	}
	return math.Round(v*100) / 100
}
