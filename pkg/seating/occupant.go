package seating

import (
	"strings"
)

// Role is the class role of an occupant. It drives the seat colour.
type Role string

// Roles. The zero value is treated as [RoleRegular].
const (
	RoleRegular     Role = "regular"
	RoleDelegate    Role = "delegate"
	RoleEcoDelegate Role = "eco-delegate"
)

// Roles returns every known role in legend order.
func Roles() []Role {
	return []Role{RoleDelegate, RoleEcoDelegate, RoleRegular}
}

// ParseRole maps a stored role string onto the closed enumeration.
// Unknown values fall back to [RoleRegular].
func ParseRole(s string) Role {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch norm {
	case "delegate", "delegue", "délégué":
		return RoleDelegate
	case "eco-delegate", "ecodelegate", "eco-delegue", "éco-délégué":
		return RoleEcoDelegate
	default:
		return RoleRegular
	}
}

// Occupant is a student (or other person) that can be seated.
type Occupant struct {
	ID        string `json:"id" toml:"id"`
	FirstName string `json:"first_name" toml:"first_name"`
	LastName  string `json:"last_name" toml:"last_name"`
	Role      Role   `json:"role,omitempty" toml:"role"`
	Login     string `json:"login,omitempty" toml:"login"`
}

// DisplayName returns "First Last".
func (o Occupant) DisplayName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// Roster indexes occupants by ID.
type Roster struct {
	byID  map[string]Occupant
	order []string
}

// NewRoster builds a roster. Later duplicates of an ID replace earlier ones
// but keep the original position.
func NewRoster(occupants []Occupant) Roster {
	r := Roster{byID: make(map[string]Occupant, len(occupants))}
	for _, o := range occupants {
		if _, seen := r.byID[o.ID]; !seen {
			r.order = append(r.order, o.ID)
		}
		r.byID[o.ID] = o
	}
	return r
}

// Lookup returns the occupant with the given ID.
func (r Roster) Lookup(id string) (Occupant, bool) {
	o, ok := r.byID[id]
	return o, ok
}

// Len returns the number of distinct occupants.
func (r Roster) Len() int { return len(r.order) }

// Occupants returns the occupants in insertion order.
func (r Roster) Occupants() []Occupant {
	out := make([]Occupant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
