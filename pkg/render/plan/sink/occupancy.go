package sink

import (
	"fmt"

	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Summary is the occupancy count printed on a plan.
type Summary struct {
	Occupied int `json:"occupied"`
	Total    int `json:"total"`
}

// String returns "occupied/total".
func (s Summary) String() string { return fmt.Sprintf("%d/%d", s.Occupied, s.Total) }

// Occupancy counts the seats of l that resolve to a known occupant.
// Assignments naming an unknown occupant count as unoccupied.
func Occupancy(l layout.Layout, a seating.Assignment, r seating.Roster) Summary {
	s := Summary{Total: l.TotalSeats()}
	for _, seat := range l.Seats {
		if _, ok := a.Resolve(seat.Number, r); ok {
			s.Occupied++
		}
	}
	return s
}
