package styles

import (
	"strconv"

	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Last and first names are cut to these lengths inside a seat.
const (
	MaxLastNameRunes  = 10
	MaxFirstNameRunes = 8
)

// Cell is everything a renderer needs to draw one seat.
type Cell struct {
	Number     int
	X, Y, W, H float64
	Occupied   bool
	Swatch     Swatch
	LastName   string // truncated for display
	FirstName  string // truncated for display
}

// Label returns the seat number as printed in the cell corner.
func (c Cell) Label() string { return strconv.Itoa(c.Number) }

// Cells resolves every seat of l against the assignment. Seats whose
// occupant is missing from the roster are returned unoccupied.
func Cells(l layout.Layout, a seating.Assignment, r seating.Roster) []Cell {
	cells := make([]Cell, 0, len(l.Seats))
	for _, s := range l.Seats {
		c := Cell{Number: s.Number, X: s.X, Y: s.Y, W: s.W, H: s.H, Swatch: Unoccupied}
		if o, ok := a.Resolve(s.Number, r); ok {
			c.Occupied = true
			c.Swatch = ForRole(seating.ParseRole(string(o.Role)))
			c.LastName = TruncateName(o.LastName, MaxLastNameRunes)
			c.FirstName = TruncateName(o.FirstName, MaxFirstNameRunes)
		}
		cells = append(cells, c)
	}
	return cells
}
