package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/klymate-api/internal/weather"
)

func TestPlaceholder_Predict(t *testing.T) {
	m := NewPlaceholder(DefaultDescriptor())

	tests := []struct {
		name    string
		reading weather.Payload
		want    float64
	}{
		{
			name:    "integer temperature",
			reading: weather.Payload{"main": map[string]any{"temp": 20}},
			want:    21.0,
		},
		{
			name:    "decoded float temperature is rounded",
			reading: weather.Payload{"main": map[string]any{"temp": 23.456}},
			want:    24.46,
		},
		{
			name:    "negative temperature",
			reading: weather.Payload{"main": map[string]any{"temp": -3.5}},
			want:    -2.5,
		},
		{
			name:    "missing temperature",
			reading: weather.Payload{"main": map[string]any{}},
			want:    FallbackTemperature,
		},
		{
			name:    "non-numeric temperature",
			reading: weather.Payload{"main": map[string]any{"temp": "not-a-number"}},
			want:    FallbackTemperature,
		},
		{
			name:    "missing main",
			reading: weather.Payload{},
			want:    FallbackTemperature,
		},
		{
			name:    "main is not an object",
			reading: weather.Payload{"main": []any{1, 2}},
			want:    FallbackTemperature,
		},
		{
			name:    "huge temperature is not rounded",
			reading: weather.Payload{"main": map[string]any{"temp": 1e307}},
			want:    1e307 + 1.0,
		},
		{
			name:    "huge negative temperature is not rounded",
			reading: weather.Payload{"main": map[string]any{"temp": -1e307}},
			want:    -1e307 + 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(tt.reading)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestUnloaded_PredictFails(t *testing.T) {
	m := Unloaded()

	assert.False(t, m.Loaded())
	assert.Equal(t, DefaultName, m.Name())

	_, err := m.Predict(weather.Payload{"main": map[string]any{"temp": 20}})
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid descriptor", func(t *testing.T) {
		path := filepath.Join(dir, "model.yaml")
		content := "name: Bangalore baseline\nmodel_type: Placeholder\ndescription: demo\nprediction_info: temp + 1\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		m, err := Load(path)
		require.NoError(t, err)
		assert.True(t, m.Loaded())
		assert.Equal(t, "Bangalore baseline", m.Name())
		assert.Equal(t, "temp + 1", m.Descriptor().PredictionInfo)
	})

	t.Run("name defaults", func(t *testing.T) {
		path := filepath.Join(dir, "noname.yaml")
		require.NoError(t, os.WriteFile(path, []byte("model_type: Placeholder\n"), 0o600))

		m, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultName, m.Name())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing model_type", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unterminated\n"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
