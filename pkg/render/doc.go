// Package render converts rendered SVG documents into other formats.
//
// [ToPDF] hands an SVG to the external rsvg-convert tool (from librsvg).
// The seating plan sinks in [plan/sink] build on it:
//
//	svg := sink.RenderSVG(plan)
//	pdf, err := render.ToPDF(ctx, svg, render.WithConverter("/opt/librsvg/bin/rsvg-convert"))
//
// Without [WithConverter], rsvg-convert is looked up on PATH.
//
// A conversion either yields the whole document or fails with a single
// RENDER_FAILURE error; partial output is never returned.
//
// [plan/sink]: github.com/eduplan/seatplan/pkg/render/plan/sink
package render
