// Package pkg provides the core libraries for EduPlan seating plans.
//
// # Overview
//
// EduPlan lays out classroom seating plans: a room is a row of columns, each
// column a stack of tables, each table a number of seats. The libraries
// number those seats, place occupants on them and export the result as a
// printable document or a spreadsheet. The pkg directory is organized into
// four main areas:
//
//  1. [seating] - Domain model (configuration, occupants, assignment, plan)
//  2. [render] - Layout and output formats (SVG, PDF, PNG, JSON, XLSX)
//  3. [pipeline] - Orchestration (validate → layout → render) with caching
//  4. [store] - Read access to the school's records
//
// # Architecture
//
// The typical data flow through EduPlan:
//
//	Record store / plan file
//	         ↓
//	    [store] or [planfile] package (load a plan)
//	         ↓
//	    [seating] package (validate against the policy)
//	         ↓
//	    [render/plan/layout] package (seat numbers + geometry)
//	         ↓
//	    [render/plan/sink] package (SVG/PDF/PNG/JSON/XLSX)
//
// # Quick Start
//
// Render a plan file to PDF:
//
//	import (
//	    "context"
//	    "github.com/eduplan/seatplan/pkg/pipeline"
//	    "github.com/eduplan/seatplan/pkg/planfile"
//	    "github.com/eduplan/seatplan/pkg/session"
//	)
//
//	plan, _ := planfile.Import("b12.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(context.Background(), session.Local("local").Scope, plan,
//	    pipeline.Options{Formats: []string{pipeline.FormatPDF}})
//	pdf := res.Artifacts[pipeline.FormatPDF]
//
// # Main Packages
//
// ## Domain
//
// [seating] - Room configurations, occupants and roles, seat assignments and
// the board position. [seating.Plan.Validate] checks a plan against the
// establishment's [seating.Policy] before anything is rendered.
//
// [credentials] - Login derivation and random passwords for the credential
// cards handed to occupants.
//
// ## Rendering
//
// [render/plan/layout] - Seat numbering (column by column, table by table,
// from the board side) and seat rectangles inside the page's grid box.
//
// [render/plan/sink] - Output formats: the SVG sheet, PDF through
// rsvg-convert, native PNG, the JSON document, the XLSX roster and the
// credential card archive.
//
// [render/plan/styles] - Palette, role colours and text fitting shared by
// the sinks.
//
// [render] - SVG to PDF conversion.
//
// ## Orchestration
//
// [pipeline] - The export pipeline used by the CLI and the HTTP API. Caches
// layouts, documents and credential archives per establishment.
//
// [cache] - Null, memory, file and Redis caches with scoped key derivation.
//
// [planfile] - TOML and JSON plan documents for import and export.
//
// ## Infrastructure
//
// [store] - Read-only record store boundary with file, PostgreSQL and
// MongoDB backends. [store.ResolvePlan] assembles a room's plan.
//
// [session] - Bearer sessions and the establishment scope, with memory and
// Redis stores.
//
// [observability] - Hooks for layout, render and archive events, with a
// logging implementation.
//
// [errors] - Coded errors and the identifier validation shared by every
// boundary.
//
// [retry] - Exponential backoff for backends that are still starting.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/render/...             # Specific package
//
// [seating]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/seating
// [credentials]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/credentials
// [render]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/render
// [render/plan/layout]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/render/plan/layout
// [render/plan/sink]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/render/plan/sink
// [render/plan/styles]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/render/plan/styles
// [pipeline]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/cache
// [planfile]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/planfile
// [store]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/store
// [session]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/session
// [observability]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/observability
// [errors]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/errors
// [retry]: https://pkg.go.dev/github.com/eduplan/seatplan/pkg/retry
package pkg
