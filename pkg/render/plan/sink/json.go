package sink

import (
	"encoding/json"

	"github.com/eduplan/seatplan/pkg/seating"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	sheet sheetOptions
}

// WithJSONPolicy sets the limits the plan is re-validated against.
func WithJSONPolicy(p seating.Policy) JSONOption {
	return func(r *jsonRenderer) { r.sheet.policy = p }
}

type jsonOutput struct {
	Page      jsonBox          `json:"page"`
	Grid      jsonBox          `json:"grid"`
	Board     jsonBoard        `json:"board"`
	SeatSize  float64          `json:"seat_size"`
	Empty     bool             `json:"empty,omitempty"`
	Metadata  seating.Metadata `json:"metadata"`
	Occupancy Summary          `json:"occupancy"`
	Seats     []jsonSeat       `json:"seats"`
}

type jsonBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonBoard struct {
	Position string `json:"position"`
	jsonBox
}

type jsonSeat struct {
	Number   int           `json:"number"`
	Column   string        `json:"column"`
	Table    int           `json:"table"`
	Index    int           `json:"index"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Size     float64       `json:"size"`
	Occupant *jsonOccupant `json:"occupant,omitempty"`
}

type jsonOccupant struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// RenderJSON exports the computed seat geometry and occupancy as
// pretty-printed JSON. Seat and board coordinates are relative to the grid
// box, which is given in page millimetres. Table and index numbers are
// 1-based.
func RenderJSON(p seating.Plan, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{sheet: defaultSheetOptions()}
	for _, opt := range opts {
		opt(&r)
	}
	sh, err := prepare(p, r.sheet)
	if err != nil {
		return nil, err
	}

	b := sh.layout.Board
	out := jsonOutput{
		Page:      jsonBox{Width: PageWidth, Height: PageHeight},
		Grid:      jsonBox{X: GridX, Y: GridY, Width: GridWidth, Height: GridHeight},
		Board:     jsonBoard{Position: string(b.Position), jsonBox: jsonBox{X: b.X, Y: b.Y, Width: b.W, Height: b.H}},
		SeatSize:  sh.layout.SeatSize,
		Empty:     sh.layout.Empty,
		Metadata:  p.Metadata,
		Occupancy: sh.summary,
		Seats:     make([]jsonSeat, 0, len(sh.layout.Seats)),
	}

	roster := p.Roster()
	for _, s := range sh.layout.Seats {
		js := jsonSeat{
			Number: s.Number,
			Column: p.Configuration.Columns[s.Column].ID,
			Table:  s.Table + 1,
			Index:  s.Index + 1,
			X:      s.X,
			Y:      s.Y,
			Size:   s.W,
		}
		if o, ok := p.Assignment.Resolve(s.Number, roster); ok {
			js.Occupant = &jsonOccupant{
				ID:        o.ID,
				FirstName: o.FirstName,
				LastName:  o.LastName,
				Role:      string(seating.ParseRole(string(o.Role))),
			}
		}
		out.Seats = append(out.Seats, js)
	}
	return json.MarshalIndent(out, "", "  ")
}
