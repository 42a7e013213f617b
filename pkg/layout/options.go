package layout

import (
	"github.com/matzehuels/topovis/pkg/errors"
)

// Default spacing in points.
const (
	DefaultNodeSep       = 50.0
	DefaultRankSep       = 50.0
	DefaultClusterMargin = 24.0

	// Size reserved for a group with no members, which Graphviz would
	// otherwise drop from the drawing.
	DefaultEmptyGroupWidth  = 600.0
	DefaultEmptyGroupHeight = 300.0
)

// RankDir is the fixed flow direction of the layout.
const RankDir = "LR"

// Options configures the layered layout. All lengths are in points.
type Options struct {
	NodeSep          float64 `toml:"node_sep" json:"node_sep" validate:"gte=0"`
	RankSep          float64 `toml:"rank_sep" json:"rank_sep" validate:"gte=0"`
	ClusterMargin    float64 `toml:"cluster_margin" json:"cluster_margin" validate:"gte=0"`
	EmptyGroupWidth  float64 `toml:"empty_group_width" json:"empty_group_width" validate:"gte=0"`
	EmptyGroupHeight float64 `toml:"empty_group_height" json:"empty_group_height" validate:"gte=0"`
}

// DefaultOptions returns the default spacing.
func DefaultOptions() Options {
	return Options{
		NodeSep:          DefaultNodeSep,
		RankSep:          DefaultRankSep,
		ClusterMargin:    DefaultClusterMargin,
		EmptyGroupWidth:  DefaultEmptyGroupWidth,
		EmptyGroupHeight: DefaultEmptyGroupHeight,
	}
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.ClusterMargin == 0 {
		o.ClusterMargin = DefaultClusterMargin
	}
	if o.EmptyGroupWidth == 0 {
		o.EmptyGroupWidth = DefaultEmptyGroupWidth
	}
	if o.EmptyGroupHeight == 0 {
		o.EmptyGroupHeight = DefaultEmptyGroupHeight
	}
}

// Validate checks that no spacing is negative.
func (o Options) Validate() error {
	return errors.ValidateStruct(o, errors.ErrCodeInvalidConfig)
}
