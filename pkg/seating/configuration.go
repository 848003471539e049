// Package seating defines the room configuration and occupant model shared
// by the layout planner, the plan exporter and the persistence boundary.
//
// Every value in this package is supplied wholesale by the caller for one
// export; nothing here is long-lived or mutated after construction.
//
// # Seat numbering
//
// Seats are numbered from 1 without gaps. Columns are traversed in their
// configured order, tables top to bottom within a column, seats left to
// right within a table:
//
//	cfg := seating.Configuration{Columns: []seating.Column{
//	    {ID: "A", Tables: 5, SeatsPerTable: 2},
//	    {ID: "B", Tables: 5, SeatsPerTable: 2},
//	    {ID: "C", Tables: 4, SeatsPerTable: 2},
//	}}
//	cfg.TotalSeats() // 28; seat 1 is column A, table 1, seat 1
package seating

import (
	"github.com/eduplan/seatplan/pkg/errors"
)

// Policy bounds accepted room configurations.
type Policy struct {
	MaxSeats   int `json:"max_seats" mapstructure:"max_seats"`
	MaxColumns int `json:"max_columns" mapstructure:"max_columns"`
}

// DefaultPolicy is the limit applied by the room editor.
var DefaultPolicy = Policy{MaxSeats: 350, MaxColumns: 6}

// Column is a vertical group of identical tables.
type Column struct {
	ID            string `json:"id" toml:"id" bson:"id"`
	Tables        int    `json:"tables" toml:"tables" bson:"tables"`
	SeatsPerTable int    `json:"seats_per_table" toml:"seats_per_table" bson:"seats_per_table"`
}

// Seats returns the number of seats in the column.
func (c Column) Seats() int { return c.Tables * c.SeatsPerTable }

// Configuration is the ordered list of columns making up a room.
type Configuration struct {
	Columns []Column `json:"columns" toml:"columns" bson:"columns"`
}

// IsEmpty reports whether the room has no columns yet.
func (c Configuration) IsEmpty() bool { return len(c.Columns) == 0 }

// TotalSeats returns the sum of tables × seats per table over all columns.
func (c Configuration) TotalSeats() int {
	total := 0
	for _, col := range c.Columns {
		total += col.Seats()
	}
	return total
}

// MaxTables returns the largest table count across columns.
func (c Configuration) MaxTables() int {
	m := 0
	for _, col := range c.Columns {
		m = max(m, col.Tables)
	}
	return m
}

// MaxSeatsPerTable returns the widest table across columns.
func (c Configuration) MaxSeatsPerTable() int {
	m := 0
	for _, col := range c.Columns {
		m = max(m, col.SeatsPerTable)
	}
	return m
}

// SeatLimit bounds any configuration, policy or not. Counts above it are
// rejected before they are multiplied.
const SeatLimit = 100_000

// CheckCounts rejects columns with non-positive table or seat counts and
// rooms above [SeatLimit]. It does not apply any policy bound.
func (c Configuration) CheckCounts() error {
	for i, col := range c.Columns {
		if col.Tables < 1 {
			return errors.New(errors.ErrCodeInvalidConfiguration,
				"column %d (%s): table count must be positive, got %d", i+1, col.ID, col.Tables)
		}
		if col.SeatsPerTable < 1 {
			return errors.New(errors.ErrCodeInvalidConfiguration,
				"column %d (%s): seats per table must be positive, got %d", i+1, col.ID, col.SeatsPerTable)
		}
	}
	return c.checkTotal(SeatLimit)
}

// checkTotal fails once the running seat total passes limit. Columns are
// bounded by division first so no product can overflow. Counts must
// already be positive.
func (c Configuration) checkTotal(limit int) error {
	total := 0
	for i, col := range c.Columns {
		if col.Tables > limit/col.SeatsPerTable {
			return errors.New(errors.ErrCodeInvalidConfiguration,
				"column %d (%s): %d tables of %d seats exceeds the maximum of %d seats",
				i+1, col.ID, col.Tables, col.SeatsPerTable, limit)
		}
		if total += col.Seats(); total > limit {
			return errors.New(errors.ErrCodeInvalidConfiguration,
				"more than %d seats (%d after column %s)", limit, total, col.ID)
		}
	}
	return nil
}

// Validate checks counts and the policy bounds. An empty configuration is
// valid: it stands for a room whose layout has not been drawn yet.
func (c Configuration) Validate(p Policy) error {
	if err := c.CheckCounts(); err != nil {
		return err
	}
	if p.MaxColumns > 0 && len(c.Columns) > p.MaxColumns {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"%d columns exceeds the maximum of %d", len(c.Columns), p.MaxColumns)
	}
	if p.MaxSeats > 0 {
		return c.checkTotal(p.MaxSeats)
	}
	return nil
}

// Locate returns the 0-based column, table and seat indices of a seat
// number, or ok=false when the number is outside [1, TotalSeats].
func (c Configuration) Locate(number int) (column, table, seat int, ok bool) {
	if number < 1 {
		return 0, 0, 0, false
	}
	n := number - 1
	for ci, col := range c.Columns {
		if n < col.Seats() {
			return ci, n / col.SeatsPerTable, n % col.SeatsPerTable, true
		}
		n -= col.Seats()
	}
	return 0, 0, 0, false
}
