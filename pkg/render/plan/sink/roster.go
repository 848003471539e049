package sink

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render/plan/styles"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Sheet names of the roster workbook.
const (
	RosterSheet  = "Seating"
	SummarySheet = "Summary"
)

var rosterHeader = []any{"Seat", "Column", "Table", "Last name", "First name", "Role"}

var rosterWidths = []float64{8, 10, 8, 24, 20, 16}

// RosterOption configures roster rendering.
type RosterOption func(*rosterRenderer)

type rosterRenderer struct {
	sheet sheetOptions
}

// WithRosterPolicy sets the limits the plan is re-validated against.
func WithRosterPolicy(p seating.Policy) RosterOption {
	return func(r *rosterRenderer) { r.sheet.policy = p }
}

// RenderRoster writes the plan's seat list as an XLSX workbook: one row per
// seat in number order, plus a summary sheet with the metadata and the
// occupancy count.
func RenderRoster(p seating.Plan, opts ...RosterOption) ([]byte, error) {
	r := rosterRenderer{sheet: defaultSheetOptions()}
	for _, opt := range opts {
		opt(&r)
	}
	sh, err := prepare(p, r.sheet)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSeatSheet(f, sh); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "write %s sheet", RosterSheet)
	}
	if err := writeSummarySheet(f, sh); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "write %s sheet", SummarySheet)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "encode xlsx")
	}
	return buf.Bytes(), nil
}

func writeSeatSheet(f *excelize.File, sh sheet) error {
	if err := f.SetSheetName("Sheet1", RosterSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{styles.ColorAccent}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	roleStyles := make(map[string]int)
	for _, s := range styles.Legend() {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{s.Fill}, Pattern: 1},
			Font: &excelize.Font{Color: s.Text},
		})
		if err != nil {
			return err
		}
		roleStyles[s.Fill] = id
	}

	if err := f.SetSheetRow(RosterSheet, "A1", &rosterHeader); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(rosterHeader), 1)
	if err := f.SetCellStyle(RosterSheet, "A1", last, header); err != nil {
		return err
	}
	for i, w := range rosterWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(RosterSheet, col, col, w); err != nil {
			return err
		}
	}

	roster := sh.plan.Roster()
	for i, c := range sh.cells {
		seat := sh.layout.Seats[i]
		row := []any{c.Number, sh.plan.Configuration.Columns[seat.Column].ID, seat.Table + 1, "", "", ""}
		if o, ok := sh.plan.Assignment.Resolve(c.Number, roster); ok {
			row[3], row[4], row[5] = o.LastName, o.FirstName, c.Swatch.Label
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(RosterSheet, cell, &row); err != nil {
			return err
		}
		roleCell, _ := excelize.CoordinatesToCellName(len(rosterHeader), i+2)
		if err := f.SetCellStyle(RosterSheet, roleCell, roleCell, roleStyles[c.Swatch.Fill]); err != nil {
			return err
		}
	}

	return f.SetPanes(RosterSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeSummarySheet(f *excelize.File, sh sheet) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	rows := [][]any{}
	for _, fld := range metadataFields(sh.plan.Metadata, DefaultDateFormat) {
		rows = append(rows, []any{fld.Label, fld.Value})
	}
	rows = append(rows,
		[]any{"Board", string(sh.layout.Board.Position)},
		[]any{"Seats", sh.summary.Total},
		[]any{"Occupied", sh.summary.Occupied},
		[]any{"Occupancy", sh.summary.String()},
	)
	for i, row := range rows {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 22)
}
