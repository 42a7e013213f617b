package viewport

import (
	"math"
	"math/rand"
	"testing"

	"github.com/matzehuels/topovis/pkg/layout"
)

func TestTransformString(t *testing.T) {
	tr := Transform{X: 10.5, Y: -3, K: 1.25}
	if got, want := tr.String(), "translate(10.5,-3) scale(1.25)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Identity.String(); got != "translate(0,0) scale(1)" {
		t.Errorf("Identity.String() = %q", got)
	}
}

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{X: 100, Y: 50, K: 2}
	p := layout.Point{X: 10, Y: 20}
	v := tr.Apply(p)
	if v != (layout.Point{X: 120, Y: 90}) {
		t.Errorf("Apply = %+v", v)
	}
	if back := tr.Invert(v); back != p {
		t.Errorf("Invert(Apply(p)) = %+v, want %+v", back, p)
	}
}

func TestZoomClamped(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  float64
	}{
		{"in", 2, 2},
		{"out", 0.5, 0.5},
		{"huge", 1000, MaxScale},
		{"tiny", 1e-9, MinScale},
		{"negative", -4, MinScale},
		{"infinite", math.Inf(1), MaxScale},
		{"nan ignored", math.NaN(), 1},
		{"zero is pan only", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(800, 600)
			got := c.OnTransformChange(Delta{Scale: tt.scale})
			if got.K != tt.want {
				t.Errorf("K = %v, want %v", got.K, tt.want)
			}
		})
	}
}

func TestScaleAlwaysInExtent(t *testing.T) {
	c := New(800, 600)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		factor := math.Exp(r.NormFloat64() * 4)
		tr := c.OnTransformChange(Delta{
			DX:    r.NormFloat64() * 100,
			DY:    r.NormFloat64() * 100,
			Scale: factor,
			PX:    r.Float64() * 800,
			PY:    r.Float64() * 600,
		})
		if tr.K < MinScale || tr.K > MaxScale {
			t.Fatalf("step %d: K = %v outside [%v, %v]", i, tr.K, MinScale, MaxScale)
		}
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	c := New(800, 600)
	c.Set(Transform{X: 40, Y: 30, K: 1})
	anchor := layout.Point{X: 300, Y: 200}
	before := c.Transform().Invert(anchor)

	after := c.OnTransformChange(Delta{Scale: 2, PX: anchor.X, PY: anchor.Y})
	got := after.Invert(anchor)
	if math.Abs(got.X-before.X) > 1e-9 || math.Abs(got.Y-before.Y) > 1e-9 {
		t.Errorf("scene point under anchor moved: %+v -> %+v", before, got)
	}
}

func TestZoomNonFiniteAnchor(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
	}{
		{"nan x", math.NaN(), 200},
		{"nan y", 300, math.NaN()},
		{"inf both", math.Inf(1), math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(800, 600)
			c.Set(Transform{X: 40, Y: 30, K: 1})
			got := c.OnTransformChange(Delta{Scale: 2, PX: tt.px, PY: tt.py})
			if !finite(got.X) || !finite(got.Y) || got.K != 2 {
				t.Fatalf("transform = %+v, want finite translate at scale 2", got)
			}
			// Later gestures still work from a usable state.
			if next := c.OnTransformChange(Delta{DX: 10, DY: 10}); !finite(next.X) || !finite(next.Y) {
				t.Errorf("pan after zoom = %+v", next)
			}
		})
	}

	// A missing anchor zooms about the viewport center.
	c := New(800, 600)
	c.Set(Transform{X: 40, Y: 30, K: 1})
	center := layout.Point{X: 400, Y: 300}
	before := c.Transform().Invert(center)
	after := c.OnTransformChange(Delta{Scale: 2, PX: math.NaN(), PY: math.NaN()})
	if got := after.Invert(center); math.Abs(got.X-before.X) > 1e-9 || math.Abs(got.Y-before.Y) > 1e-9 {
		t.Errorf("scene point under the center moved: %+v -> %+v", before, got)
	}
}

func TestPan(t *testing.T) {
	c := New(800, 600)
	c.OnTransformChange(Delta{DX: 15, DY: -5})
	got := c.OnTransformChange(Delta{DX: 5, DY: 5})
	if got != (Transform{X: 20, Y: 0, K: 1}) {
		t.Errorf("pan = %+v", got)
	}
}

func TestSetClamps(t *testing.T) {
	c := New(800, 600)
	got := c.Set(Transform{X: 1, Y: 2, K: 50})
	if got != (Transform{X: 1, Y: 2, K: MaxScale}) {
		t.Errorf("Set = %+v", got)
	}
	if c.Transform() != got {
		t.Errorf("Transform() = %+v, want %+v", c.Transform(), got)
	}
}

func TestCenterOnce(t *testing.T) {
	c := New(1000, 800)
	bounds := layout.Rect{X: 8, Y: 8, Width: 684, Height: 298}

	tr, ok := c.CenterOn(bounds)
	if !ok {
		t.Fatal("first CenterOn not applied")
	}
	want := Transform{X: (1000-684)/2.0 - 8, Y: (800-298)/2.0 - 8, K: 1}
	if tr != want {
		t.Errorf("CenterOn = %+v, want %+v", tr, want)
	}
	if !c.Centered() {
		t.Error("Centered() = false")
	}

	c.OnTransformChange(Delta{DX: 7})
	tr2, ok := c.CenterOn(layout.Rect{Width: 10, Height: 10})
	if ok {
		t.Error("second CenterOn applied")
	}
	if tr2.X != want.X+7 {
		t.Errorf("interaction lost after second CenterOn: %+v", tr2)
	}
}

func TestCenterOnLargerThanViewport(t *testing.T) {
	c := New(100, 100)
	tr, _ := c.CenterOn(layout.Rect{Width: 300, Height: 100})
	if tr.X != -100 || tr.Y != 0 {
		t.Errorf("CenterOn = %+v, want X=-100 Y=0", tr)
	}
}

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       Config
		min, max float64
	}{
		{"zero", Config{}, MinScale, MaxScale},
		{"narrower", Config{MinScale: 0.5, MaxScale: 2}, 0.5, 2},
		{"wider is narrowed", Config{MinScale: 0.01, MaxScale: 10}, MinScale, MaxScale},
		{"swapped", Config{MinScale: 2, MaxScale: 0.5}, 0.5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.SetDefaults()
			if cfg.MinScale != tt.min || cfg.MaxScale != tt.max {
				t.Errorf("extent = [%v, %v], want [%v, %v]", cfg.MinScale, cfg.MaxScale, tt.min, tt.max)
			}
			if cfg.Width != DefaultWidth || cfg.Height != DefaultHeight {
				t.Errorf("size = %vx%v", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{MinScale: 2, MaxScale: 1}).Validate(); err == nil {
		t.Error("expected error for inverted extent")
	}
	if err := (Config{Width: -1}).Validate(); err == nil {
		t.Error("expected error for negative width")
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestNarrowExtent(t *testing.T) {
	c := NewWithConfig(Config{MinScale: 0.5, MaxScale: 1.5})
	if got := c.OnTransformChange(Delta{Scale: 10}); got.K != 1.5 {
		t.Errorf("K = %v, want 1.5", got.K)
	}
	if got := c.OnTransformChange(Delta{Scale: 0.001}); got.K != 0.5 {
		t.Errorf("K = %v, want 0.5", got.K)
	}
}

func TestFitScale(t *testing.T) {
	c := New(800, 600)
	if got := c.FitScale(layout.Rect{Width: 1600, Height: 600}); got != 0.5 {
		t.Errorf("FitScale = %v, want 0.5", got)
	}
	if got := c.FitScale(layout.Rect{Width: 1, Height: 1}); got != MaxScale {
		t.Errorf("FitScale tiny = %v, want %v", got, MaxScale)
	}
	if got := c.FitScale(layout.Rect{}); got != 1 {
		t.Errorf("FitScale empty = %v, want 1", got)
	}
}
