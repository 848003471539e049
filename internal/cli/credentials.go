package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/pkg/credentials"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/planfile"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
)

// credentialsCommand issues credential cards for a plan's occupants.
func (c *CLI) credentialsCommand() *cobra.Command {
	var (
		target     roomTarget
		output     string
		format     string
		show       bool
		passLength int
	)

	cmd := &cobra.Command{
		Use:   "credentials [plan.toml|plan.json]",
		Short: "Issue login cards as a ZIP archive",
		Long: `Issue a login and a random password to every occupant and bundle
one card per occupant into a ZIP archive.

The occupants come from a plan file, or from a stored room with --room.
Stored logins are kept; missing ones are derived from the occupant's name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cardFormat, err := sink.ParseCardFormat(format)
			if err != nil {
				return err
			}

			var p seating.Plan
			switch {
			case len(args) == 1:
				p, err = planfile.Import(args[0])
			case target.roomID != "":
				p, err = c.resolve(cmd.Context(), cfg, target)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "pass a plan file or --room")
			}
			if err != nil {
				return err
			}

			req := pipeline.ArchiveRequest{
				Occupants: p.Occupants,
				Metadata:  p.Metadata,
				Format:    cardFormat,
				Issuer:    credentials.NewIssuer(credentials.WithPasswordLength(passLength)),
			}
			return c.runCredentials(cmd.Context(), target.establishment, req, output, show)
		},
	}

	target.register(cmd)
	cmd.Flags().StringVar(&target.roomID, "room", "", "stored room id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default: credentials-<format>.zip)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "card format: pdf (default), svg")
	cmd.Flags().BoolVar(&show, "show", false, "print the issued logins and passwords")
	cmd.Flags().IntVar(&passLength, "password-length", 0, "password length")

	return cmd
}

// runCredentials never caches. Archives hold plain-text passwords, which
// must not stay on disk beyond the output file.
func (c *CLI) runCredentials(ctx context.Context, establishment string, req pipeline.ArchiveRequest, output string, show bool) error {
	return c.withRunner(ctx, true, func(runner *pipeline.Runner) error {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Issuing %d credentials...", len(req.Occupants)))
		spinner.Start()

		res, err := runner.Archive(ctx, localScope(establishment), req)
		if err != nil {
			spinner.StopWithError("Credentials failed")
			return err
		}
		spinner.Stop()

		path := output
		if path == "" {
			path = res.ArchiveName()
		}
		if err := writeFile(path, res.Data); err != nil {
			return err
		}

		printSuccess("Issued %d credentials", len(res.Credentials))
		printFile(path)
		if show {
			fmt.Fprintln(stdout, credentialTable(res.Credentials))
		} else {
			printDetail("Passwords are only in the archive; use --show to print them")
		}
		return nil
	})
}

func credentialTable(creds []credentials.Credential) string {
	rows := make([][]string, 0, len(creds))
	for _, cr := range creds {
		rows = append(rows, []string{cr.Occupant.DisplayName(), cr.Login, cr.Password})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Occupant", "Login", "Password").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return base.Inherit(StyleValue)
			}
			return base.Inherit(StyleHighlight)
		}).
		Render()
}
