package carousel

import (
	"encoding/json"
	"fmt"
	"time"
)

// Default tuning values. They match the featured-projects carousel.
const (
	DefaultInterval       = 5 * time.Second
	DefaultRadius         = 400.0
	DefaultMaxScale       = 1.0
	DefaultMinScale       = 0.6
	DefaultMinOpacity     = 0.4
	DefaultOpacityFalloff = 0.3
	DefaultVisibleRange   = 2
)

// Config holds the tuning constants of a carousel. Zero fields are replaced
// by defaults in [Config.WithDefaults]. MinOpacity and VisibleRange are
// pointers because zero is a meaningful value for both; only nil means
// unset.
type Config struct {
	// Interval is the auto-advance period.
	Interval time.Duration `yaml:"interval" json:"interval"`

	// Radius is the depth of the circle items travel on, in distance units.
	// It only affects visual scale.
	Radius float64 `yaml:"radius" json:"radius"`

	// AnglePerItem is the angular step between neighbouring items in
	// degrees. Zero spreads the items over the full circle (360/N).
	AnglePerItem float64 `yaml:"anglePerItem" json:"anglePerItem"`

	// MaxScale is the scale of the active item.
	MaxScale float64 `yaml:"maxScale" json:"maxScale"`

	// MinScale is the scale floor for items furthest from the front.
	MinScale float64 `yaml:"minScale" json:"minScale"`

	// MinOpacity is the opacity floor for rendered items.
	MinOpacity *float64 `yaml:"minOpacity" json:"minOpacity,omitempty"`

	// OpacityFalloff is subtracted from the opacity per unit of distance.
	OpacityFalloff float64 `yaml:"opacityFalloff" json:"opacityFalloff"`

	// VisibleRange is the largest |adjusted| offset still rendered.
	VisibleRange *int `yaml:"visibleRange" json:"visibleRange,omitempty"`

	// StartIndex is the item that is active when the engine is created.
	StartIndex int `yaml:"startIndex" json:"startIndex"`
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		Interval:       DefaultInterval,
		Radius:         DefaultRadius,
		MaxScale:       DefaultMaxScale,
		MinScale:       DefaultMinScale,
		MinOpacity:     Ptr(DefaultMinOpacity),
		OpacityFalloff: DefaultOpacityFalloff,
		VisibleRange:   Ptr(DefaultVisibleRange),
	}
}

// Ptr returns a pointer to v, for setting MinOpacity and VisibleRange.
func Ptr[T any](v T) *T {
	return &v
}

// WithDefaults returns a copy of c with every unset tuning field set to its
// default. AnglePerItem and StartIndex keep their zero meaning. The copy
// never shares pointers with c.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.Radius == 0 {
		c.Radius = d.Radius
	}
	if c.MaxScale == 0 {
		c.MaxScale = d.MaxScale
	}
	if c.MinScale == 0 {
		c.MinScale = d.MinScale
	}
	if c.MinOpacity == nil {
		c.MinOpacity = d.MinOpacity
	} else {
		c.MinOpacity = Ptr(*c.MinOpacity)
	}
	if c.OpacityFalloff == 0 {
		c.OpacityFalloff = d.OpacityFalloff
	}
	if c.VisibleRange == nil {
		c.VisibleRange = d.VisibleRange
	} else {
		c.VisibleRange = Ptr(*c.VisibleRange)
	}
	return c
}

// Validate reports the first tuning value that cannot produce a sane
// placement. The returned error wraps [ErrInvalidConfig].
func (c Config) Validate() error {
	switch {
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, c.Interval)
	case c.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidConfig, c.Radius)
	case c.AnglePerItem < 0:
		return fmt.Errorf("%w: anglePerItem must not be negative, got %g", ErrInvalidConfig, c.AnglePerItem)
	case c.MaxScale <= 0:
		return fmt.Errorf("%w: maxScale must be positive, got %g", ErrInvalidConfig, c.MaxScale)
	case c.MinScale <= 0 || c.MinScale > c.MaxScale:
		return fmt.Errorf("%w: minScale must be in (0, %g], got %g", ErrInvalidConfig, c.MaxScale, c.MinScale)
	case c.MinOpacity != nil && (*c.MinOpacity < 0 || *c.MinOpacity > 1):
		return fmt.Errorf("%w: minOpacity must be in [0, 1], got %g", ErrInvalidConfig, *c.MinOpacity)
	case c.OpacityFalloff < 0:
		return fmt.Errorf("%w: opacityFalloff must not be negative, got %g", ErrInvalidConfig, c.OpacityFalloff)
	case c.VisibleRange != nil && *c.VisibleRange < 0:
		return fmt.Errorf("%w: visibleRange must not be negative, got %d", ErrInvalidConfig, *c.VisibleRange)
	case c.StartIndex < 0:
		return fmt.Errorf("%w: startIndex must not be negative, got %d", ErrInvalidConfig, c.StartIndex)
	}
	return nil
}

// jsonConfig has Config's fields without its JSON methods.
type jsonConfig Config

// MarshalJSON writes Interval as a duration string such as "5s", the same
// form the deck catalogue uses.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		jsonConfig
		Interval string `json:"interval"`
	}{jsonConfig: jsonConfig(c), Interval: c.Interval.String()})
}

// UnmarshalJSON reads the form written by MarshalJSON. A missing interval
// leaves Interval unchanged.
func (c *Config) UnmarshalJSON(data []byte) error {
	aux := struct {
		*jsonConfig
		Interval string `json:"interval"`
	}{jsonConfig: (*jsonConfig)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Interval == "" {
		return nil
	}
	d, err := time.ParseDuration(aux.Interval)
	if err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	c.Interval = d
	return nil
}
