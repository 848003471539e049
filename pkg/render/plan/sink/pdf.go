package sink

import (
	"context"

	"github.com/eduplan/seatplan/pkg/render"
	"github.com/eduplan/seatplan/pkg/seating"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts   []SVGOption
	converter string
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// WithPDFConverter sets the rsvg-convert binary. Empty means
// [render.DefaultConverter].
func WithPDFConverter(bin string) PDFOption {
	return func(r *pdfRenderer) { r.converter = bin }
}

// RenderPDF renders the plan as PDF via SVG conversion. Converter failures
// are returned as a single RENDER_FAILURE error with no output.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, p seating.Plan, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svg, err := RenderSVG(p, r.svgOpts...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg, render.WithConverter(r.converter))
}
