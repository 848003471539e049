package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/styles"
	"github.com/eduplan/seatplan/pkg/seating"
)

// DefaultDateFormat renders the generation date in the metadata block.
const DefaultDateFormat = "02/01/2006 15:04"

const fontFamily = "Helvetica, Arial, sans-serif"

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	sheet      sheetOptions
	title      string
	dateFormat string
}

// WithTitle replaces the header title.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithPolicy sets the limits the plan is re-validated against before drawing.
func WithPolicy(p seating.Policy) SVGOption { return func(r *svgRenderer) { r.sheet.policy = p } }

// WithMaxSeatSize caps the drawn seat size, in millimetres.
func WithMaxSeatSize(mm float64) SVGOption {
	return func(r *svgRenderer) { r.sheet.maxSeatSize = mm }
}

// WithDateFormat sets the layout of the generation date (time.Format syntax).
func WithDateFormat(f string) SVGOption { return func(r *svgRenderer) { r.dateFormat = f } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{sheet: defaultSheetOptions(), title: DefaultTitle, dateFormat: DefaultDateFormat}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws p on an A4 landscape page. It fails with the plan's
// validation error, before drawing anything, when p breaks the policy.
func RenderSVG(p seating.Plan, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)
	sh, err := prepare(p, r.sheet)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	openSVG(&buf, PageWidth, PageHeight)
	renderHeader(&buf, r.title)
	renderMetadata(&buf, metadataFields(sh.plan.Metadata, r.dateFormat))
	renderGrid(&buf, sh)
	renderLegend(&buf)
	renderSummary(&buf, sh.summary)
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func openSVG(buf *bytes.Buffer, w, h float64) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0fmm" height="%.0fmm" font-family="%s">`+"\n",
		w, h, w, h, fontFamily)
	fmt.Fprintf(buf, `  <rect width="%.0f" height="%.0f" fill="#FFFFFF"/>`+"\n", w, h)
}

func renderHeader(buf *bytes.Buffer, title string) {
	fmt.Fprintf(buf, `  <rect id="header" width="%.0f" height="%.0f" fill="%s"/>`+"\n", PageWidth, headerH, styles.ColorAccent)
	fmt.Fprintf(buf, `  <text x="%.1f" y="11.5" font-size="7" font-weight="bold" fill="#FFFFFF">EduPlan</text>`+"\n", margin)
	fmt.Fprintf(buf, `  <text x="%.1f" y="11.5" font-size="5" fill="#FFFFFF" text-anchor="end">%s</text>`+"\n",
		PageWidth-margin, styles.EscapeXML(title))
}

type field struct {
	Label string
	Value string
}

func metadataFields(m seating.Metadata, dateFormat string) []field {
	fields := []field{
		{"Room", m.Room},
		{"Class", m.Class},
		{"Teacher", m.Teacher},
		{"Establishment", m.Establishment},
	}
	if !m.GeneratedAt.IsZero() {
		fields = append(fields, field{"Generated", m.GeneratedAt.Format(dateFormat)})
	}
	for i := range fields {
		if strings.TrimSpace(fields[i].Value) == "" {
			fields[i].Value = "-"
		}
	}
	return fields
}

// metadataAt returns the baseline of the i-th metadata field; fields run in
// two columns.
func metadataAt(i int) (x, y float64) {
	return margin + float64(i%2)*138, 27 + float64(i/2)*7
}

func renderMetadata(buf *bytes.Buffer, fields []field) {
	buf.WriteString(`  <g id="metadata" font-size="3.4">` + "\n")
	for i, f := range fields {
		x, y := metadataAt(i)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f"><tspan fill="%s">%s: </tspan><tspan fill="%s" font-weight="bold">%s</tspan></text>`+"\n",
			x, y, styles.ColorMuted, f.Label, styles.ColorInk, styles.EscapeXML(f.Value))
	}
	buf.WriteString("  </g>\n")
}

func renderGrid(buf *bytes.Buffer, sh sheet) {
	fmt.Fprintf(buf, `  <g id="grid" transform="translate(%.1f %.1f)">`+"\n", GridX, GridY)
	defer buf.WriteString("  </g>\n")

	if sh.layout.Empty {
		fmt.Fprintf(buf, `    <text id="placeholder" x="%.1f" y="%.1f" font-size="6" fill="%s" text-anchor="middle">No configuration</text>`+"\n",
			GridWidth/2, GridHeight/2, styles.ColorMuted)
		return
	}

	sh.paint(
		func(b layout.Board) { renderBoard(buf, b) },
		func(c styles.Cell) { renderCell(buf, c) },
	)
}

func renderBoard(buf *bytes.Buffer, b layout.Board) {
	fmt.Fprintf(buf, `    <rect id="board" class="board-%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="1" fill="%s"/>`+"\n",
		b.Position, b.X, b.Y, b.W, b.H, styles.ColorBoard)
	size := min(b.W, b.H) * 0.7
	rotate := ""
	if !b.Position.Horizontal() {
		rotate = fmt.Sprintf(` transform="rotate(-90 %.2f %.2f)"`, b.CenterX(), b.CenterY())
	}
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" fill="#FFFFFF" text-anchor="middle" dominant-baseline="central"%s>BOARD</text>`+"\n",
		b.CenterX(), b.CenterY(), size, rotate)
}

func renderCell(buf *bytes.Buffer, c styles.Cell) {
	fmt.Fprintf(buf, `    <g class="seat" id="seat-%d">`+"\n", c.Number)
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s" stroke="%s" stroke-width="0.2"/>`+"\n",
		c.X, c.Y, c.W, c.H, c.W*0.08, c.Swatch.Fill, styles.ColorCellBorder)

	nfs := styles.NumberFontSize(c)
	fmt.Fprintf(buf, `      <text class="seat-number" x="%.2f" y="%.2f" font-size="%.2f" fill="%s">%s</text>`+"\n",
		c.X+c.W*0.06, c.Y+nfs+c.H*0.03, nfs, c.Swatch.Text, c.Label())

	if c.Occupied {
		fs := styles.NameFontSize(c)
		lastY := c.Y + c.H*0.58
		fmt.Fprintf(buf, `      <text class="seat-name" x="%.2f" y="%.2f" font-size="%.2f" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`+"\n",
			c.X+c.W/2, lastY, fs, c.Swatch.Text, styles.EscapeXML(c.LastName))
		fmt.Fprintf(buf, `      <text class="seat-name" x="%.2f" y="%.2f" font-size="%.2f" fill="%s" text-anchor="middle">%s</text>`+"\n",
			c.X+c.W/2, lastY+fs*1.15, fs, c.Swatch.Text, styles.EscapeXML(c.FirstName))
	}
	buf.WriteString("    </g>\n")
}

const legendY = 186.0

func renderLegend(buf *bytes.Buffer) {
	buf.WriteString(`  <g id="legend" font-size="3">` + "\n")
	x := margin
	for _, s := range styles.Legend() {
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="5" height="3.5" rx="0.5" fill="%s" stroke="%s" stroke-width="0.2"/>`+"\n",
			x, legendY, s.Fill, styles.ColorCellBorder)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n", x+6.5, legendY+2.9, styles.ColorInk, s.Label)
		x += legendAdvance(s.Label)
	}
	buf.WriteString("  </g>\n")
}

func legendAdvance(label string) float64 {
	return 6.5 + float64(len(label))*1.8 + 6
}

func renderSummary(buf *bytes.Buffer, s Summary) {
	fmt.Fprintf(buf, `  <text id="occupancy" x="%.1f" y="%.1f" font-size="4" font-weight="bold" fill="%s" text-anchor="end">Occupancy: %s</text>`+"\n",
		PageWidth-margin, legendY+3.2, styles.ColorInk, s)
}
