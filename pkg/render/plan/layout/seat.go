package layout

import "github.com/eduplan/seatplan/pkg/seating"

// Seat is one numbered seat with its position in the bounding box.
// Indices are 0-based; Number is 1-based. Coordinates grow right and down.
type Seat struct {
	Number int
	Column int
	Table  int
	Index  int
	X, Y   float64
	W, H   float64
}

// Right returns the right edge of the seat.
func (s Seat) Right() float64 { return s.X + s.W }

// Bottom returns the bottom edge of the seat.
func (s Seat) Bottom() float64 { return s.Y + s.H }

// CenterX returns the horizontal center point of the seat.
func (s Seat) CenterX() float64 { return s.X + s.W/2 }

// CenterY returns the vertical center point of the seat.
func (s Seat) CenterY() float64 { return s.Y + s.H/2 }

// Board is the strip standing for the teaching board.
type Board struct {
	Position seating.BoardPosition
	X, Y     float64
	W, H     float64
}

// CenterX returns the horizontal center point of the strip.
func (b Board) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical center point of the strip.
func (b Board) CenterY() float64 { return b.Y + b.H/2 }
