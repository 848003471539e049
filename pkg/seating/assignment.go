package seating

import (
	"slices"
	"strconv"

	"github.com/eduplan/seatplan/pkg/errors"
)

// Assignment maps a seat number to an occupant ID. A seat number that is
// not a key is unoccupied.
type Assignment map[int]string

// Validate rejects seat numbers outside [1, total] and empty occupant IDs.
func (a Assignment) Validate(total int) error {
	for _, seat := range a.Seats() {
		if seat < 1 || seat > total {
			return errors.New(errors.ErrCodeInvalidAssignment,
				"seat %d is outside the room (1-%d)", seat, total)
		}
		if a[seat] == "" {
			return errors.New(errors.ErrCodeInvalidAssignment, "seat %d has an empty occupant id", seat)
		}
	}
	return nil
}

// Seats returns the assigned seat numbers in ascending order.
func (a Assignment) Seats() []int {
	seats := make([]int, 0, len(a))
	for n := range a {
		seats = append(seats, n)
	}
	slices.Sort(seats)
	return seats
}

// Resolve returns the occupant seated at n. Seats pointing at an ID that is
// missing from the roster resolve as unoccupied.
func (a Assignment) Resolve(n int, r Roster) (Occupant, bool) {
	id, ok := a[n]
	if !ok {
		return Occupant{}, false
	}
	return r.Lookup(id)
}

// SeatOf returns the seat number assigned to an occupant.
func (a Assignment) SeatOf(occupantID string) (int, bool) {
	for _, n := range a.Seats() {
		if a[n] == occupantID {
			return n, true
		}
	}
	return 0, false
}

// ParseAssignment converts string-keyed seat maps (JSON objects, TOML
// tables, JSONB columns) into an Assignment.
func ParseAssignment(raw map[string]string) (Assignment, error) {
	a := make(Assignment, len(raw))
	for k, id := range raw {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAssignment, err, "seat key %q is not a number", k)
		}
		if id == "" {
			continue
		}
		a[n] = id
	}
	return a, nil
}

// Strings returns the assignment keyed by decimal seat numbers.
func (a Assignment) Strings() map[string]string {
	out := make(map[string]string, len(a))
	for n, id := range a {
		out[strconv.Itoa(n)] = id
	}
	return out
}
