package layout

import (
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Geometry defaults, in the caller's units (the exporter uses millimetres).
const (
	DefaultMaxSeatSize    = 12.0
	DefaultBoardThickness = 4.0
	BoardFraction         = 0.6

	boardGap       = 4.0
	columnGapSeats = 1.0 // gap between columns, in seat widths
	tableGapSeats  = 0.5 // gap between tables of a column, in seat heights
)

// Layout is the computed seat geometry for one room.
type Layout struct {
	Width, Height float64
	Board         Board
	Seats         []Seat // ordered by Number, Seats[i].Number == i+1
	SeatSize      float64
	Columns       int
	Empty         bool // no columns configured; nothing was laid out
}

// TotalSeats returns the number of laid out seats.
func (l Layout) TotalSeats() int { return len(l.Seats) }

// SeatByNumber returns the seat with the given 1-based number.
func (l Layout) SeatByNumber(n int) (Seat, bool) {
	if n < 1 || n > len(l.Seats) {
		return Seat{}, false
	}
	return l.Seats[n-1], true
}

// Option configures [Build].
type Option func(*options)

type options struct {
	maxSeatSize    float64
	boardThickness float64
}

// WithMaxSeatSize overrides the seat size cap (default 12 units).
func WithMaxSeatSize(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.maxSeatSize = s
		}
	}
}

// WithBoardThickness overrides the board strip thickness (default 4 units).
func WithBoardThickness(t float64) Option {
	return func(o *options) {
		if t > 0 {
			o.boardThickness = t
		}
	}
}

// Build numbers every seat of cfg and places it inside a width × height box,
// leaving a strip for the board on the side given by board.
//
// Seats are square. Their size is the largest that fits every column side by
// side and the tallest column top to bottom, capped by the maximum seat size,
// so the grid never leaves the box. The grid is centred in the space left
// next to the board.
//
// An empty configuration returns a placeholder layout with Empty set.
// Non-positive counts or box dimensions fail with INVALID_CONFIGURATION or
// INVALID_INPUT before any arithmetic.
func Build(cfg seating.Configuration, width, height float64, board seating.BoardPosition, opts ...Option) (Layout, error) {
	o := options{maxSeatSize: DefaultMaxSeatSize, boardThickness: DefaultBoardThickness}
	for _, opt := range opts {
		opt(&o)
	}

	if width <= 0 || height <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "bounding box must be positive, got %gx%g", width, height)
	}
	if board == "" {
		board = seating.BoardTop
	}
	if !board.Valid() {
		return Layout{}, errors.New(errors.ErrCodeInvalidConfiguration, "invalid board position: %q", board)
	}
	if err := cfg.CheckCounts(); err != nil {
		return Layout{}, err
	}

	l := Layout{Width: width, Height: height, Board: Board{Position: board}}
	if cfg.IsEmpty() {
		l.Empty = true
		return l, nil
	}

	l.Board = placeBoard(board, width, height, o.boardThickness)
	gx, gy, gw, gh := gridArea(board, width, height, o.boardThickness)
	if gw <= 0 || gh <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput,
			"bounding box %gx%g leaves no room for seats next to the board", width, height)
	}

	cols := len(cfg.Columns)
	slot := float64(cfg.MaxSeatsPerTable())
	rows := float64(cfg.MaxTables())

	unitsW := float64(cols)*slot + float64(cols-1)*columnGapSeats
	unitsH := rows + (rows-1)*tableGapSeats
	size := min(gw/unitsW, gh/unitsH, o.maxSeatSize)

	ox := gx + (gw-unitsW*size)/2
	oy := gy + (gh-unitsH*size)/2

	l.SeatSize = size
	l.Columns = cols
	l.Seats = make([]Seat, 0, cfg.TotalSeats())

	number := 1
	for c, col := range cfg.Columns {
		colX := ox + float64(c)*(slot+columnGapSeats)*size
		colX += (slot - float64(col.SeatsPerTable)) * size / 2
		for t := 0; t < col.Tables; t++ {
			y := oy + float64(t)*(1+tableGapSeats)*size
			for i := 0; i < col.SeatsPerTable; i++ {
				l.Seats = append(l.Seats, Seat{
					Number: number,
					Column: c,
					Table:  t,
					Index:  i,
					X:      colX + float64(i)*size,
					Y:      y,
					W:      size,
					H:      size,
				})
				number++
			}
		}
	}
	return l, nil
}

func placeBoard(pos seating.BoardPosition, width, height, thickness float64) Board {
	b := Board{Position: pos}
	if pos.Horizontal() {
		b.W, b.H = width*BoardFraction, thickness
		b.X = (width - b.W) / 2
		if pos == seating.BoardBottom {
			b.Y = height - thickness
		}
		return b
	}
	b.W, b.H = thickness, height*BoardFraction
	b.Y = (height - b.H) / 2
	if pos == seating.BoardRight {
		b.X = width - thickness
	}
	return b
}

// gridArea returns the part of the box that is not taken by the board strip.
func gridArea(pos seating.BoardPosition, width, height, thickness float64) (x, y, w, h float64) {
	reserved := thickness + boardGap
	switch pos {
	case seating.BoardTop:
		return 0, reserved, width, height - reserved
	case seating.BoardBottom:
		return 0, 0, width, height - reserved
	case seating.BoardLeft:
		return reserved, 0, width - reserved, height
	default:
		return 0, 0, width - reserved, height
	}
}
