package render

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/scene"
	"github.com/matzehuels/topovis/pkg/viewport"
)

// Format is an output format name.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatHTML, FormatJSON, FormatPNG, FormatPDF}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want svg, html, json, png or pdf)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// View is what the viewer sees: the viewport size, the current transform and
// the zoom extent the page script enforces.
type View struct {
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Transform viewport.Transform `json:"transform"`
	MinScale  float64            `json:"min_scale"`
	MaxScale  float64            `json:"max_scale"`
}

// ViewOf captures the state of a controller.
func ViewOf(c *viewport.Controller) View {
	cfg := c.Config()
	return View{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Transform: c.Transform(),
		MinScale:  cfg.MinScale,
		MaxScale:  cfg.MaxScale,
	}
}

func (v View) withDefaults(sc *scene.Scene) View {
	if v.Width <= 0 {
		v.Width = sc.Width
	}
	if v.Height <= 0 {
		v.Height = sc.Height
	}
	if v.Transform.K == 0 {
		v.Transform = viewport.Identity
	}
	if v.MinScale == 0 {
		v.MinScale = viewport.MinScale
	}
	if v.MaxScale == 0 {
		v.MaxScale = viewport.MaxScale
	}
	return v
}

// Input is everything a sink may need.
type Input struct {
	Scene  *scene.Scene
	Layout *layout.PositionedGraph
	View   View
	Title  string

	// PNGScale is the rsvg-convert zoom factor; 2 when zero.
	PNGScale float64
}

// Write renders in to w in the given format.
func Write(ctx context.Context, w io.Writer, format Format, in Input) error {
	switch format {
	case FormatSVG:
		return SVG(w, in.Scene, in.View)
	case FormatHTML:
		return HTML(w, in.Scene, in.View, in.Title)
	case FormatJSON:
		return JSON(w, in.Layout)
	case FormatPNG, FormatPDF:
		var svg bytes.Buffer
		if err := SVG(&svg, in.Scene, in.View); err != nil {
			return err
		}
		var out []byte
		var err error
		if format == FormatPNG {
			scale := in.PNGScale
			if scale <= 0 {
				scale = 2
			}
			out, err = ToPNG(ctx, svg.Bytes(), scale)
		} else {
			out, err = ToPDF(ctx, svg.Bytes())
		}
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}

// Bytes is [Write] into a buffer.
func Bytes(ctx context.Context, format Format, in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(ctx, &buf, format, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
