package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/planfile"
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
)

// layoutCommand prints the numbered seats of a plan.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		establishment string
		noCache       bool
		emptySeats    bool
	)

	cmd := &cobra.Command{
		Use:   "layout [plan.toml|plan.json]",
		Short: "Print the seat numbering of a plan",
		Long: `Print the seat numbering of a plan as a table.

Seats are numbered column by column, table by table, from the board side.
Each row shows where a seat sits and who occupies it. Use --empty to list
unoccupied seats as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p, err := planfile.Import(args[0])
			if err != nil {
				return err
			}
			if err := p.Validate(cfg.Policy); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), p, establishment, noCache, emptySeats)
		},
	}

	cmd.Flags().StringVarP(&establishment, "establishment", "e", "", "establishment id")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&emptySeats, "empty", false, "list unoccupied seats")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, p seating.Plan, establishment string, noCache, emptySeats bool) error {
	return c.withRunner(ctx, noCache, func(runner *pipeline.Runner) error {
		l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, localScope(establishment), p.Configuration, p.BoardPosition(), pipeline.Options{})
		if err != nil {
			return err
		}

		if l.Empty {
			printWarning("No columns configured: the plan renders as a placeholder")
			return nil
		}

		roster := p.Roster()
		fmt.Fprintln(stdout, StyleTitle.Render(p.Metadata.Room) + " " + StyleDim.Render("board "+string(p.BoardPosition())))
		fmt.Fprintln(stdout, seatTable(l, p.Configuration, p.Assignment, roster, emptySeats))
		printStats(l.TotalSeats(), sink.Occupancy(l, p.Assignment, roster).Occupied, cacheHit)
		return nil
	})
}

// seatTable renders one row per seat.
func seatTable(l layout.Layout, cfg seating.Configuration, a seating.Assignment, r seating.Roster, emptySeats bool) string {
	var (
		rows  [][]string
		roles []seating.Role
	)
	for _, seat := range l.Seats {
		o, ok := a.Resolve(seat.Number, r)
		if !ok && !emptySeats {
			continue
		}
		name, role := iconEmpty, seating.Role("")
		if ok {
			name, role = o.DisplayName(), o.Role
		}
		rows = append(rows, []string{
			strconv.Itoa(seat.Number),
			cfg.Columns[seat.Column].ID,
			strconv.Itoa(seat.Table + 1),
			strconv.Itoa(seat.Index + 1),
			name,
			roleLabel(role),
		})
		roles = append(roles, role)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Seat", "Column", "Table", "Place", "Occupant", "Role").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row >= len(roles) {
				return base
			}
			switch {
			case col == 0:
				return base.Inherit(StyleNumber).Align(lipgloss.Right)
			case col == 4 && rows[row][4] == iconEmpty:
				return base.Inherit(StyleDim)
			case col == 4 || col == 5:
				switch roles[row] {
				case seating.RoleDelegate:
					return base.Inherit(styleDelegate)
				case seating.RoleEcoDelegate:
					return base.Inherit(styleEcoDelegate)
				}
				return base.Inherit(StyleValue)
			}
			return base.Inherit(StyleDim)
		}).
		Render()
}

func roleLabel(r seating.Role) string {
	if r == "" || r == seating.RoleRegular {
		return ""
	}
	return strings.ReplaceAll(string(r), "-", " ")
}
