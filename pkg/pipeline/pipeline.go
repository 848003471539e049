// Package pipeline runs the validate → layout → render export of a seating
// plan, with caching. The CLI and the HTTP API both go through it so that
// every entry point validates and renders the same way.
//
// # Stages
//
//  1. Validate: the plan is checked against the policy before any work
//  2. Layout: seat geometry for the page's grid box, cached per configuration
//  3. Render: one document per requested format, cached per plan
//
// Credential archives are a separate operation ([Runner.Archive]).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, scope, plan, pipeline.Options{
//	    Formats: []string{pipeline.FormatPDF},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts[pipeline.FormatPDF]
//
// Cache keys are namespaced by the scope's establishment, so two schools
// never share cached documents.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eduplan/seatplan/pkg/cache"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatXLSX: true,
}

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatPDF

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPDF:  "application/pdf",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Options configures one export. It supports JSON for API requests.
type Options struct {
	Formats     []string        `json:"formats,omitempty"`
	Title       string          `json:"title,omitempty"`
	MaxSeatSize float64         `json:"max_seat_size,omitempty"` // millimetres
	Scale       float64         `json:"scale,omitempty"`         // PNG pixels per millimetre
	Policy      *seating.Policy `json:"-"`
	Refresh     bool            `json:"refresh,omitempty"` // bypass cached documents
	Converter   string          `json:"-"`                 // rsvg-convert binary for PDF; empty uses PATH

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of an export.
type Result struct {
	// Layout is the seat geometry inside the page's grid box.
	Layout layout.Layout

	// PlanHash is the content hash the documents are cached under.
	PlanHash string

	// Artifacts contains rendered documents keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains export statistics.
type Stats struct {
	Seats      int
	Occupied   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// Occupancy returns the "occupied/total" summary.
func (s Stats) Occupancy() string {
	return sink.Summary{Occupied: s.Occupied, Total: s.Seats}.String()
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache
	RenderHit bool // every artifact came from cache
}

// ValidateFormat checks that a format is supported. Formats are lower case.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in alphabetical order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.MaxSeatSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max seat size must be positive, got %g", o.MaxSeatSize)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	o.validated = true
	return nil
}

// SetDefaults fills in empty options.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = dedupe(o.Formats)
	if o.Title == "" {
		o.Title = sink.DefaultTitle
	}
	if o.MaxSeatSize == 0 {
		o.MaxSeatSize = layout.DefaultMaxSeatSize
	}
	if o.Scale == 0 {
		o.Scale = sink.DefaultPNGScale
	}
	if o.Policy == nil {
		p := seating.DefaultPolicy
		o.Policy = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for the layout of board.
func (o *Options) LayoutKeyOpts(board seating.BoardPosition) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:       sink.GridWidth,
		Height:      sink.GridHeight,
		Board:       string(board),
		MaxSeatSize: o.MaxSeatSize,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Title:       o.Title,
		MaxSeatSize: o.MaxSeatSize,
		MaxSeats:    o.Policy.MaxSeats,
		MaxColumns:  o.Policy.MaxColumns,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
