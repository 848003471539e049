// Package layout computes seat numbers and seat geometry for a room.
//
// # Numbering
//
// Seats are numbered from 1 with no gaps: column by column in configuration
// order, each column's tables from front to back, and each table's seats
// left to right. The same configuration always yields the same numbers, so
// a stored [seating.Assignment] stays valid across exports.
//
// # Geometry
//
// [Build] places the board strip on the requested side of the bounding
// box, then fits the seat grid into what remains:
//
//	l, err := layout.Build(cfg, 273, 128, seating.BoardTop)
//	seat, _ := l.SeatByNumber(1)
//
// Columns are separated by one seat width and the tables of a column by
// half a seat height. Columns with fewer seats per table than the widest
// column are centred in their slot.
//
// [seating.Assignment]: github.com/eduplan/seatplan/pkg/seating.Assignment
package layout
