// Package sink renders seating plans into printable and machine-readable
// documents.
//
// # Overview
//
// Every plan sink takes a [seating.Plan], re-validates it against a
// [seating.Policy], computes the seat grid with [layout.Build], and draws:
//
//   - SVG: A4 landscape page in millimetres ([RenderSVG])
//   - PDF: the SVG page converted by rsvg-convert ([RenderPDF])
//   - PNG: a raster preview drawn natively ([RenderPNG])
//   - JSON: seat geometry and occupancy for external tools ([RenderJSON])
//   - XLSX: the seat list as a spreadsheet ([RenderRoster])
//
// Credential cards ([RenderCredential]) and the per-occupant card archive
// ([RenderCredentialArchive]) are the secondary export.
//
// # Page
//
// The page carries a branded header, the plan metadata, the seat grid with
// the board strip, a colour legend, and the occupancy summary
// "occupied/total". Seat numbers are always printed; names only for
// occupied seats. Seats whose occupant is missing are drawn empty.
//
//	svg, err := sink.RenderSVG(plan)
//	pdf, err := sink.RenderPDF(ctx, plan, sink.WithPDFSVGOptions(sink.WithTitle("Exam")))
//
// Sinks are pure functions of their input and safe for concurrent use.
//
// [seating.Plan]: github.com/eduplan/seatplan/pkg/seating.Plan
// [seating.Policy]: github.com/eduplan/seatplan/pkg/seating.Policy
// [layout.Build]: github.com/eduplan/seatplan/pkg/render/plan/layout.Build
package sink
