// Package cluster places a label above each rendered cluster region.
//
// Placement is driven by measurement, not by input data: the label sits on
// the cluster's center x, and its baseline is the cluster's center y minus
// half the measured height of the rendered cluster element minus a margin:
//
//	x = centerX
//	y = centerY - bboxHeight/2 - margin
//
// The center comes from the positioned graph; the height comes from the
// bounding box of the cluster element in the scene, because the layout
// engine may have grown the region to fit its members.
package cluster

import (
	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/fonts"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/scene"
)

// Defaults for cluster labels.
const (
	DefaultMargin     = 10.0
	DefaultFontSize   = 20.0
	DefaultFontWeight = "bold"
	DefaultFill       = "#333"
)

// Options configures cluster label placement.
type Options struct {
	Margin     float64 `toml:"margin" json:"margin" validate:"gte=0"`
	FontSize   float64 `toml:"font_size" json:"font_size" validate:"gte=0"`
	FontWeight string  `toml:"font_weight" json:"font_weight"`
	Fill       string  `toml:"fill" json:"fill"`

	Measurer fonts.TextMeasurer `toml:"-" json:"-" validate:"-"`
}

// DefaultOptions returns a 10 unit margin and 20px bold labels.
func DefaultOptions() Options {
	o := Options{}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.FontWeight == "" {
		o.FontWeight = DefaultFontWeight
	}
	if o.Fill == "" {
		o.Fill = DefaultFill
	}
	if o.Measurer == nil {
		o.Measurer = fonts.Default()
	}
}

// Validate checks ranges.
func (o Options) Validate() error {
	return errors.ValidateStruct(o, errors.ErrCodeInvalidConfig)
}

// Label is a placed cluster label in drawing coordinates.
type Label struct {
	GroupID string  `json:"group_id"`
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Result is the scene with cluster labels appended, the placed labels, and
// the ids of groups that were skipped.
type Result struct {
	Scene   *scene.Scene
	Labels  []Label
	Skipped []string
}

// PlaceLabels appends one text element per group to a copy of sc. A group
// that is absent from the positioned graph, or whose cluster element has no
// measurable extent, is skipped without failing the pass.
func PlaceLabels(sc *scene.Scene, g *graph.Graph, pg *layout.PositionedGraph, opts Options) Result {
	opts.SetDefaults()

	var res Result
	var texts []scene.Element
	for _, grp := range g.Groups() {
		pos, ok := pg.Group(grp.ID)
		if !ok {
			res.Skipped = append(res.Skipped, grp.ID)
			continue
		}
		el, ok := sc.Find(scene.ClassCluster, grp.ID)
		if !ok {
			res.Skipped = append(res.Skipped, grp.ID)
			continue
		}
		box, ok := scene.BBox(el, opts.Measurer)
		if !ok {
			res.Skipped = append(res.Skipped, grp.ID)
			continue
		}

		lbl := Label{
			GroupID: grp.ID,
			Text:    grp.Label,
			X:       pos.X,
			Y:       pos.Y - box.Height/2 - opts.Margin,
		}
		res.Labels = append(res.Labels, lbl)
		texts = append(texts, scene.Element{
			Kind:   scene.KindText,
			Class:  scene.ClassGroupLabel,
			Datum:  grp.ID,
			X:      lbl.X,
			Y:      lbl.Y,
			Text:   lbl.Text,
			Anchor: "middle",
			Style: scene.Style{
				Fill:       opts.Fill,
				FontSize:   opts.FontSize,
				FontWeight: opts.FontWeight,
			},
		})
	}
	res.Scene = sc.Append(texts...)
	return res
}
