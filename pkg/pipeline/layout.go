package pipeline

import (
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
)

// ComputeLayout lays out cfg in the page's grid box, the same geometry the
// documents are drawn with. Policy limits are not checked here.
func ComputeLayout(cfg seating.Configuration, board seating.BoardPosition, opts Options) (layout.Layout, error) {
	opts.SetDefaults()
	return layout.Build(cfg, sink.GridWidth, sink.GridHeight, board, layout.WithMaxSeatSize(opts.MaxSeatSize))
}
