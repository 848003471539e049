// Package planfile reads and writes single-document seating plans.
//
// A plan file holds everything one export needs, so the CLI can render
// without a record store. TOML and JSON share one schema:
//
//	board = "top"
//
//	[metadata]
//	room = "B12"
//	class = "2nde 3"
//	teacher = "M. Dupont"
//	establishment = "Lycée Victor Hugo"
//
//	[[columns]]
//	id = "A"
//	tables = 5
//	seats_per_table = 2
//
//	[[occupants]]
//	id = "s1"
//	first_name = "Ada"
//	last_name = "Lovelace"
//	role = "delegate"
//
//	[assignment]
//	"1" = "s1"
//
// Reading checks the document shape only. Policy limits and seat ranges
// are checked by the exporter.
package planfile

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Format is a plan file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported plan file %q (want .toml or .json)", filepath.Base(path))
	}
}

type document struct {
	Board      string             `json:"board,omitempty" toml:"board,omitempty"`
	Metadata   seating.Metadata   `json:"metadata" toml:"metadata"`
	Columns    []seating.Column   `json:"columns" toml:"columns"`
	Occupants  []seating.Occupant `json:"occupants,omitempty" toml:"occupants,omitempty"`
	Assignment map[string]string  `json:"assignment,omitempty" toml:"assignment,omitempty"`
}

// Read decodes a plan from r.
func Read(r io.Reader, format Format) (seating.Plan, error) {
	var doc document
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return seating.Plan{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported plan format %q", format)
	}
	if err != nil {
		return seating.Plan{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s plan", format)
	}

	a, err := seating.ParseAssignment(doc.Assignment)
	if err != nil {
		return seating.Plan{}, err
	}
	return seating.Plan{
		Configuration: seating.Configuration{Columns: doc.Columns},
		Board:         seating.BoardPosition(doc.Board),
		Assignment:    a,
		Occupants:     doc.Occupants,
		Metadata:      doc.Metadata,
	}, nil
}

// Import reads the plan file at path.
func Import(path string) (seating.Plan, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return seating.Plan{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return seating.Plan{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format)
}

// Write encodes p to w.
func Write(w io.Writer, p seating.Plan, format Format) error {
	doc := document{
		Board:      string(p.Board),
		Metadata:   p.Metadata,
		Columns:    p.Configuration.Columns,
		Occupants:  p.Occupants,
		Assignment: p.Assignment.Strings(),
	}
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported plan format %q", format)
	}
}

// Export writes p to path in the format given by its extension.
func Export(p seating.Plan, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := Write(f, p, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
