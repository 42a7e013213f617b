// Package viewport owns the pan/zoom transform applied to the root of a
// rendered scene.
//
// The transform is a single composed translate-then-scale, applied to the
// root group and never to individual elements. Zoom is clamped to
// [MinScale, MaxScale] = [0.1, 3.0]. After the first layout the scene is
// centered once; later calls to [Controller.CenterOn] do nothing, and user
// interaction always starts from the current transform.
//
// A Controller is owned by one interaction loop and is not safe for
// concurrent use.
package viewport

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/layout"
)

// Scale bounds.
const (
	MinScale = 0.1
	MaxScale = 3.0
)

// Transform maps scene coordinates to viewport coordinates:
// viewport = scene*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed view.
var Identity = Transform{K: 1}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}

// Apply maps a scene point to the viewport.
func (t Transform) Apply(p layout.Point) layout.Point {
	return layout.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a viewport point back to the scene.
func (t Transform) Invert(p layout.Point) layout.Point {
	return layout.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Visible returns the scene rectangle shown in a viewport of the given size.
func (t Transform) Visible(width, height float64) layout.Rect {
	tl := t.Invert(layout.Point{})
	return layout.Rect{X: tl.X, Y: tl.Y, Width: width / t.K, Height: height / t.K}
}

// Delta is one interaction event: a pan by (DX, DY) viewport units and a zoom
// by Scale around the viewport point (PX, PY). A zero Scale means no zoom.
type Delta struct {
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Scale float64 `json:"scale"`
	PX    float64 `json:"px"`
	PY    float64 `json:"py"`
}

// Config holds the viewport size and the zoom extent.
type Config struct {
	Width    float64 `toml:"width" json:"width" validate:"gte=0"`
	Height   float64 `toml:"height" json:"height" validate:"gte=0"`
	MinScale float64 `toml:"min_scale" json:"min_scale" validate:"gte=0"`
	MaxScale float64 `toml:"max_scale" json:"max_scale" validate:"gte=0"`
}

// Default viewport size in pixels.
const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
)

// DefaultConfig returns a 1200x800 viewport with the full zoom extent.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values and narrows the extent to [0.1, 3.0].
func (c *Config) SetDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.MinScale == 0 {
		c.MinScale = MinScale
	}
	if c.MaxScale == 0 {
		c.MaxScale = MaxScale
	}
	c.MinScale = Clamp(c.MinScale, MinScale, MaxScale)
	c.MaxScale = Clamp(c.MaxScale, MinScale, MaxScale)
	if c.MaxScale < c.MinScale {
		c.MinScale, c.MaxScale = c.MaxScale, c.MinScale
	}
}

// Validate checks sizes and that the extent is ordered.
func (c Config) Validate() error {
	if err := errors.ValidateStruct(c, errors.ErrCodeInvalidConfig); err != nil {
		return err
	}
	if c.MinScale != 0 && c.MaxScale != 0 && c.MaxScale < c.MinScale {
		return errors.New(errors.ErrCodeInvalidConfig, "max_scale %v is below min_scale %v", c.MaxScale, c.MinScale)
	}
	return nil
}

// Clamp limits k to [lo, hi]. NaN maps to lo.
func Clamp(k, lo, hi float64) float64 {
	if math.IsNaN(k) {
		return lo
	}
	return math.Max(lo, math.Min(hi, k))
}

// Controller owns the transform of one rendered scene.
type Controller struct {
	cfg      Config
	t        Transform
	centered bool
}

// New returns a controller for a viewport of the given size.
func New(width, height float64) *Controller {
	return NewWithConfig(Config{Width: width, Height: height})
}

// NewWithConfig returns a controller with a custom zoom extent.
func NewWithConfig(cfg Config) *Controller {
	cfg.SetDefaults()
	return &Controller{cfg: cfg, t: Identity}
}

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Centered reports whether the initial centering has been applied.
func (c *Controller) Centered() bool { return c.centered }

// Resize changes the viewport size. The transform is kept.
func (c *Controller) Resize(width, height float64) {
	c.cfg.Width, c.cfg.Height = width, height
}

// Size returns the viewport size.
func (c *Controller) Size() (width, height float64) {
	return c.cfg.Width, c.cfg.Height
}

func (c *Controller) clamp(k float64) float64 {
	return Clamp(k, c.cfg.MinScale, c.cfg.MaxScale)
}

// OnTransformChange applies one interaction event and returns the new
// transform. Zoom keeps the scene point under (PX, PY) fixed; the resulting
// scale is clamped to the extent whatever the gesture magnitude. A
// non-finite anchor coordinate is replaced by the viewport center.
func (c *Controller) OnTransformChange(d Delta) Transform {
	t := c.t
	if factor := d.Scale; factor != 0 && !math.IsNaN(factor) {
		k := c.clamp(t.K * factor)
		if factor < 0 {
			k = c.cfg.MinScale
		}
		px, py := d.PX, d.PY
		if !finite(px) {
			px = c.cfg.Width / 2
		}
		if !finite(py) {
			py = c.cfg.Height / 2
		}
		ratio := k / t.K
		t.X = px - (px-t.X)*ratio
		t.Y = py - (py-t.Y)*ratio
		t.K = k
	}
	if finite(d.DX) {
		t.X += d.DX
	}
	if finite(d.DY) {
		t.Y += d.DY
	}
	c.t = t
	return t
}

// Set replaces the transform, as when an interaction source reports a full
// transform. The scale is clamped.
func (c *Controller) Set(t Transform) Transform {
	t.K = c.clamp(t.K)
	if !finite(t.X) {
		t.X = c.t.X
	}
	if !finite(t.Y) {
		t.Y = c.t.Y
	}
	c.t = t
	return t
}

// CenterOn centers bounds in the viewport at the current scale:
//
//	X = (viewportWidth  - width*k)/2  - minX*k
//	Y = (viewportHeight - height*k)/2 - minY*k
//
// Only the first call has an effect; it reports whether centering was applied.
func (c *Controller) CenterOn(bounds layout.Rect) (Transform, bool) {
	if c.centered {
		return c.t, false
	}
	c.centered = true
	k := c.t.K
	c.t.X = (c.cfg.Width-bounds.Width*k)/2 - bounds.X*k
	c.t.Y = (c.cfg.Height-bounds.Height*k)/2 - bounds.Y*k
	return c.t, true
}

// FitScale returns the scale that fits bounds in the viewport, clamped to
// the extent.
func (c *Controller) FitScale(bounds layout.Rect) float64 {
	if bounds.IsEmpty() {
		return c.clamp(1)
	}
	return c.clamp(math.Min(c.cfg.Width/bounds.Width, c.cfg.Height/bounds.Height))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
