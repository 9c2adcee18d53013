package carousel

import "math"

// Placement describes where one item is drawn relative to the active item.
type Placement struct {
	// Index is the item index this placement belongs to.
	Index int `json:"index"`
	// Adjusted is the shortest signed circular distance from the active
	// item. Negative values are to the left.
	Adjusted int `json:"adjusted"`
	// LateralOffset is the signed horizontal displacement.
	LateralOffset float64 `json:"lateralOffset"`
	// DepthOffset is 0 at the front and negative further back.
	DepthOffset float64 `json:"depthOffset"`
	// Rotation is the rotation around the vertical axis in degrees.
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	Opacity  float64 `json:"opacity"`
	// StackOrder ranks items nearer the front higher.
	StackOrder int  `json:"stackOrder"`
	IsActive   bool `json:"isActive"`
	// Visible is false for items beyond the configured visible range.
	Visible bool `json:"visible"`
}

// AdjustedOffset returns the shortest signed circular distance from active
// to i in a carousel of n items. When both directions are equally short
// (even n, distance n/2) the positive distance is returned.
func AdjustedOffset(i, active, n int) int {
	normalized := ((i-active)%n + n) % n
	if 2*normalized > n {
		return normalized - n
	}
	return normalized
}

// place computes the placement of item i for the given active index. It is
// a pure function of its arguments.
func place(cfg Config, i, active, n int) Placement {
	adjusted := AdjustedOffset(i, active, n)
	if adjusted == 0 {
		return Placement{
			Index:      i,
			Scale:      cfg.MaxScale,
			Opacity:    1,
			StackOrder: n,
			IsActive:   true,
			Visible:    true,
		}
	}

	step := cfg.AnglePerItem
	if step == 0 {
		step = 360 / float64(n)
	}
	angle := float64(adjusted) * step
	rad := angle * math.Pi / 180

	dist := absInt(adjusted)

	// Scale uses the angle folded into [0, π] so it never grows again past
	// the back of the circle.
	folded := math.Min(math.Abs(rad), math.Pi)
	scale := cfg.MinScale + (math.Cos(folded)+1)/2*(cfg.MaxScale-cfg.MinScale)

	p := Placement{
		Index:         i,
		Adjusted:      adjusted,
		LateralOffset: math.Sin(rad) * cfg.Radius,
		DepthOffset:   math.Cos(rad)*cfg.Radius - cfg.Radius,
		Rotation:      -angle,
		Scale:         scale,
		StackOrder:    n - dist,
	}
	if dist <= *cfg.VisibleRange {
		p.Opacity = math.Max(*cfg.MinOpacity, 1-float64(dist)*cfg.OpacityFalloff)
		p.Visible = true
	}
	return p
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
