package sink

import (
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/styles"
	"github.com/eduplan/seatplan/pkg/seating"
)

// A4 landscape page and the grid box on it, in millimetres.
const (
	PageWidth  = 297.0
	PageHeight = 210.0
	GridX      = 12.0
	GridY      = 52.0
	GridWidth  = 273.0
	GridHeight = 128.0
	margin     = 12.0
	headerH    = 18.0
)

// DefaultTitle is printed in the page header.
const DefaultTitle = "Seating plan"

// sheet is a validated plan with its layout and resolved seats.
type sheet struct {
	plan    seating.Plan
	layout  layout.Layout
	cells   []styles.Cell
	summary Summary
}

type sheetOptions struct {
	policy      seating.Policy
	maxSeatSize float64
}

func defaultSheetOptions() sheetOptions {
	return sheetOptions{policy: seating.DefaultPolicy, maxSeatSize: layout.DefaultMaxSeatSize}
}

// prepare validates p and lays it out in the page's grid box. Nothing is
// drawn when it fails.
func prepare(p seating.Plan, o sheetOptions) (sheet, error) {
	if err := p.Validate(o.policy); err != nil {
		return sheet{}, err
	}
	l, err := layout.Build(p.Configuration, GridWidth, GridHeight, p.BoardPosition(),
		layout.WithMaxSeatSize(o.maxSeatSize))
	if err != nil {
		return sheet{}, err
	}
	roster := p.Roster()
	return sheet{
		plan:    p,
		layout:  l,
		cells:   styles.Cells(l, p.Assignment, roster),
		summary: Occupancy(l, p.Assignment, roster),
	}, nil
}

// paint draws the board and the seats of a non-empty sheet in page order.
// A leading board goes under the seats, a trailing one over them.
func (sh sheet) paint(board func(layout.Board), seat func(styles.Cell)) {
	b := sh.layout.Board
	if b.Position.Leading() {
		board(b)
	}
	for _, c := range sh.cells {
		seat(c)
	}
	if !b.Position.Leading() {
		board(b)
	}
}
