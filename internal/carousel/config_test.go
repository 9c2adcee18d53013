package carousel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Radius: 350, AnglePerItem: 60}.WithDefaults()

	assert.Equal(t, 350.0, cfg.Radius)
	assert.Equal(t, 60.0, cfg.AnglePerItem)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, DefaultMinScale, cfg.MinScale)
	assert.Equal(t, DefaultVisibleRange, *cfg.VisibleRange)
	assert.Equal(t, DefaultMinOpacity, *cfg.MinOpacity)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_WithDefaultsKeepsExplicitZero(t *testing.T) {
	in := Config{MinOpacity: Ptr(0.0), VisibleRange: Ptr(0)}
	cfg := in.WithDefaults()

	assert.Equal(t, 0.0, *cfg.MinOpacity)
	assert.Equal(t, 0, *cfg.VisibleRange)
	assert.NoError(t, cfg.Validate())

	*in.MinOpacity = 0.9
	assert.Equal(t, 0.0, *cfg.MinOpacity, "defaults must not alias the input")
}

func TestConfig_JSONInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = 1500 * time.Millisecond

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"interval":"1.5s"`)
	assert.Contains(t, string(data), `"minOpacity":0.4`)

	var back Config
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)

	assert.Error(t, json.Unmarshal([]byte(`{"interval":"soon"}`), &back))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }},
		{"zero radius", func(c *Config) { c.Radius = 0 }},
		{"negative angle", func(c *Config) { c.AnglePerItem = -10 }},
		{"min scale above max", func(c *Config) { c.MinScale = 1.5 }},
		{"min opacity above one", func(c *Config) { c.MinOpacity = Ptr(1.2) }},
		{"negative falloff", func(c *Config) { c.OpacityFalloff = -0.1 }},
		{"negative visible range", func(c *Config) { c.VisibleRange = Ptr(-1) }},
		{"negative start", func(c *Config) { c.StartIndex = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestPlace_ActiveIsCanonical(t *testing.T) {
	p := place(DefaultConfig(), 2, 2, 5)
	assert.Equal(t, Placement{
		Index:      2,
		Scale:      DefaultMaxScale,
		Opacity:    1,
		StackOrder: 5,
		IsActive:   true,
		Visible:    true,
	}, p)
}
