package pipeline

import (
	"context"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Render generates documents in the requested formats. Each renderer
// validates the plan again before drawing. A failure in any format fails
// the whole call.
func Render(ctx context.Context, p seating.Plan, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	page := []sink.SVGOption{
		sink.WithTitle(opts.Title),
		sink.WithPolicy(*opts.Policy),
		sink.WithMaxSeatSize(opts.MaxSeatSize),
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = sink.RenderSVG(p, page...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, p, sink.WithPDFSVGOptions(page...), sink.WithPDFConverter(opts.Converter))
		case FormatPNG:
			data, err = sink.RenderPNG(p, sink.WithPNGSVGOptions(page...), sink.WithScale(opts.Scale))
		case FormatJSON:
			data, err = sink.RenderJSON(p, sink.WithJSONPolicy(*opts.Policy))
		case FormatXLSX:
			data, err = sink.RenderRoster(p, sink.WithRosterPolicy(*opts.Policy))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, err
		}
		artifacts[format] = data
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
	}
	return artifacts, nil
}
