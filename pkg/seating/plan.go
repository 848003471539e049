package seating

import (
	"time"
)

// Metadata holds the display strings printed in a plan header.
type Metadata struct {
	Room          string    `json:"room" toml:"room"`
	Class         string    `json:"class,omitempty" toml:"class"`
	Teacher       string    `json:"teacher,omitempty" toml:"teacher"`
	Establishment string    `json:"establishment,omitempty" toml:"establishment"`
	GeneratedAt   time.Time `json:"generated_at" toml:"generated_at"`
}

// Plan bundles everything one export needs.
type Plan struct {
	Configuration Configuration `json:"configuration"`
	Board         BoardPosition `json:"board"`
	Assignment    Assignment    `json:"assignment"`
	Occupants     []Occupant    `json:"occupants"`
	Metadata      Metadata      `json:"metadata"`
}

// Validate checks the configuration against p, the board position, and
// the assignment range. Occupant references are not checked: a seat whose
// occupant is missing is rendered empty.
func (pl Plan) Validate(p Policy) error {
	if err := pl.Configuration.Validate(p); err != nil {
		return err
	}
	if _, err := ParseBoardPosition(string(pl.Board)); err != nil {
		return err
	}
	return pl.Assignment.Validate(pl.Configuration.TotalSeats())
}

// BoardPosition returns the normalised board position, defaulting to top.
func (pl Plan) BoardPosition() BoardPosition {
	b, err := ParseBoardPosition(string(pl.Board))
	if err != nil {
		return BoardTop
	}
	return b
}

// Roster returns the plan's occupants indexed by ID.
func (pl Plan) Roster() Roster { return NewRoster(pl.Occupants) }
