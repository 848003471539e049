package styles

import "github.com/eduplan/seatplan/pkg/seating"

// Brand and seat colours.
const (
	ColorAccent     = "#4F46E5"
	ColorEco        = "#16A34A"
	ColorNeutral    = "#E5E7EB"
	ColorEmpty      = "#F9FAFB"
	ColorInk        = "#111827"
	ColorMuted      = "#6B7280"
	ColorBoard      = "#374151"
	ColorCellBorder = "#9CA3AF"
)

// Swatch is the fill and text colour used for one kind of seat.
type Swatch struct {
	Label string
	Fill  string
	Text  string
}

// Unoccupied is the swatch for seats without an occupant.
var Unoccupied = Swatch{Label: "Empty", Fill: ColorEmpty, Text: ColorMuted}

var roleSwatches = map[seating.Role]Swatch{
	seating.RoleDelegate:    {Label: "Delegate", Fill: ColorAccent, Text: "#FFFFFF"},
	seating.RoleEcoDelegate: {Label: "Eco-delegate", Fill: ColorEco, Text: "#FFFFFF"},
	seating.RoleRegular:     {Label: "Student", Fill: ColorNeutral, Text: ColorInk},
}

// ForRole returns the swatch for r. Unknown roles and the zero value get
// the regular swatch.
func ForRole(r seating.Role) Swatch {
	if s, ok := roleSwatches[r]; ok {
		return s
	}
	return roleSwatches[seating.RoleRegular]
}

// Legend returns the legend entries in print order: every role, then the
// unoccupied swatch.
func Legend() []Swatch {
	roles := seating.Roles()
	out := make([]Swatch, 0, len(roles)+1)
	for _, r := range roles {
		out = append(out, ForRole(r))
	}
	return append(out, Unoccupied)
}
