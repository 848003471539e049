package seating

import (
	"strings"

	"github.com/eduplan/seatplan/pkg/errors"
)

// BoardPosition is the side of the seating grid where the teaching board stands.
type BoardPosition string

// Board positions.
const (
	BoardTop    BoardPosition = "top"
	BoardBottom BoardPosition = "bottom"
	BoardLeft   BoardPosition = "left"
	BoardRight  BoardPosition = "right"
)

// BoardPositions lists every valid position.
var BoardPositions = []BoardPosition{BoardTop, BoardBottom, BoardLeft, BoardRight}

// ParseBoardPosition parses a position case-insensitively. The empty string
// yields [BoardTop], which is where rooms are created with the board.
func ParseBoardPosition(s string) (BoardPosition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BoardTop, nil
	}
	for _, p := range BoardPositions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidConfiguration,
		"invalid board position: %q (must be one of: top, bottom, left, right)", s)
}

// Valid reports whether p is one of the four positions.
func (p BoardPosition) Valid() bool {
	switch p {
	case BoardTop, BoardBottom, BoardLeft, BoardRight:
		return true
	}
	return false
}

// Leading reports whether the board comes before the grid in reading order
// (top or left). Leading boards are drawn before the seats.
func (p BoardPosition) Leading() bool {
	return p == BoardTop || p == BoardLeft
}

// Horizontal reports whether the board strip runs along the width of the room.
func (p BoardPosition) Horizontal() bool {
	return p == BoardTop || p == BoardBottom
}
