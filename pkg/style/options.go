package style

import (
	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/fonts"
)

// NodeShape selects the glyph drawn for nodes.
type NodeShape string

const (
	ShapeRect   NodeShape = "rect"
	ShapeCircle NodeShape = "circle"
)

// MatchKey selects how rendered edges are matched to domain edges.
type MatchKey string

const (
	// MatchUID matches by edge identity, which is the uid in multigraph mode.
	MatchUID MatchKey = "uid"
	// MatchPair matches by (source, target), taking the first such edge.
	MatchPair MatchKey = "pair"
)

// Visual defaults.
const (
	DefaultNodeFill    = "#FFFFFF80"
	DefaultStroke      = "#333"
	DefaultStrokeWidth = 2.0
	DefaultNodeRadius  = 70.0
	DefaultClusterFill = "rgb(240, 240, 240)"
	DefaultEdgeWidth   = 2.0

	DefaultLabelFill    = "#333"
	DefaultLabelSize    = 12.0
	DefaultLabelPadding = 2.0

	// Edge labels drawn over a background are bold 14px, lifted 15px.
	LabelBackgroundFill   = "rgba(255, 255, 255, 0.8)"
	LabelBackgroundSize   = 14.0
	LabelBackgroundDY     = -15.0
	LabelBackgroundRadius = 3.0

	CircleLabelSize = 14.0

	// centerDY shifts a baseline by this many ems to center text vertically.
	centerDY = 0.35

	defaultUIDEdgeOpacity  = 0.5
	defaultPairEdgeOpacity = 1.0
)

// Options configures style resolution.
type Options struct {
	NodeShape  NodeShape `toml:"node_shape" json:"node_shape" validate:"omitempty,oneof=rect circle"`
	NodeRadius float64   `toml:"node_radius" json:"node_radius" validate:"gte=0"`

	NodeFill    string  `toml:"node_fill" json:"node_fill"`
	Stroke      string  `toml:"stroke" json:"stroke"`
	StrokeWidth float64 `toml:"stroke_width" json:"stroke_width" validate:"gte=0"`
	ClusterFill string  `toml:"cluster_fill" json:"cluster_fill"`

	MatchKey    MatchKey `toml:"match_key" json:"match_key" validate:"omitempty,oneof=uid pair"`
	EdgeWidth   float64  `toml:"edge_width" json:"edge_width" validate:"gte=0"`
	EdgeOpacity float64  `toml:"edge_opacity" json:"edge_opacity" validate:"gte=0,lte=1"`

	// LabelBackground draws a translucent rect behind each edge label.
	LabelBackground bool    `toml:"label_background" json:"label_background"`
	LabelPadding    float64 `toml:"label_padding" json:"label_padding" validate:"gte=0"`

	Measurer fonts.TextMeasurer `toml:"-" json:"-" validate:"-"`
}

// DefaultOptions returns rect nodes, uid matching and plain edge labels.
func DefaultOptions() Options {
	o := Options{}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero values. The edge opacity default depends on the
// match key: 0.5 for uid matching and 1 for pair matching.
func (o *Options) SetDefaults() {
	if o.NodeShape == "" {
		o.NodeShape = ShapeRect
	}
	if o.NodeFill == "" {
		o.NodeFill = DefaultNodeFill
	}
	if o.Stroke == "" {
		o.Stroke = DefaultStroke
	}
	if o.StrokeWidth == 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.NodeRadius == 0 {
		o.NodeRadius = DefaultNodeRadius
	}
	if o.ClusterFill == "" {
		o.ClusterFill = DefaultClusterFill
	}
	if o.MatchKey == "" {
		o.MatchKey = MatchUID
	}
	if o.EdgeWidth == 0 {
		o.EdgeWidth = DefaultEdgeWidth
	}
	if o.EdgeOpacity == 0 {
		o.EdgeOpacity = defaultUIDEdgeOpacity
		if o.MatchKey == MatchPair {
			o.EdgeOpacity = defaultPairEdgeOpacity
		}
	}
	if o.LabelPadding == 0 {
		o.LabelPadding = DefaultLabelPadding
	}
	if o.Measurer == nil {
		o.Measurer = fonts.Default()
	}
}

// Validate checks enumerations and ranges.
func (o Options) Validate() error {
	return errors.ValidateStruct(o, errors.ErrCodeInvalidConfig)
}
