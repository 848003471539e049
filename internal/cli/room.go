package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/internal/config"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/planfile"
	"github.com/eduplan/seatplan/pkg/seating"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
)

// datasetLoader is implemented by stores that can list an establishment's
// rooms (the file store).
type datasetLoader interface {
	Load(scope session.Scope) (store.Dataset, error)
}

// roomTarget names a stored room and the establishment it belongs to.
type roomTarget struct {
	establishment string
	roomID        string
	subRoomID     string
}

func (t *roomTarget) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.establishment, "establishment", "e", "", "establishment id (required)")
	cmd.Flags().StringVar(&t.subRoomID, "subroom", "", "sub-room id")
}

// resolve loads the plan of the target room, asking interactively for the
// room when none was given.
func (c *CLI) resolve(ctx context.Context, cfg *config.Config, t roomTarget) (seating.Plan, error) {
	if t.establishment == "" {
		return seating.Plan{}, errors.New(errors.ErrCodeInvalidInput, "--establishment is required")
	}
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return seating.Plan{}, err
	}
	defer st.Close()

	scope := localScope(t.establishment)
	if t.roomID == "" {
		loader, ok := st.(datasetLoader)
		if !ok {
			return seating.Plan{}, errors.New(errors.ErrCodeInvalidInput,
				"the %s store cannot list rooms; pass a room id", cfg.Store.Backend)
		}
		choice, err := pickRoom(loader, scope)
		if err != nil {
			return seating.Plan{}, err
		}
		t.roomID, t.subRoomID = choice.RoomID, choice.SubRoomID
	}

	c.Logger.Debug("resolving room", "establishment", t.establishment, "room", t.roomID, "subroom", t.subRoomID)
	return store.ResolvePlan(ctx, st, scope, store.PlanRequest{RoomID: t.roomID, SubRoomID: t.subRoomID})
}

// pickRoom runs the interactive room list.
func pickRoom(loader datasetLoader, scope session.Scope) (RoomChoice, error) {
	ds, err := loader.Load(scope)
	if err != nil {
		return RoomChoice{}, err
	}
	choices := roomChoices(ds)
	if len(choices) == 0 {
		return RoomChoice{}, errors.New(errors.ErrCodeNotFound, "establishment %q has no rooms", scope.EstablishmentID)
	}

	final, err := tea.NewProgram(NewRoomListModel(choices)).Run()
	if err != nil {
		return RoomChoice{}, fmt.Errorf("room picker: %w", err)
	}
	m, ok := final.(RoomListModel)
	if !ok || m.Selected == nil {
		return RoomChoice{}, errors.New(errors.ErrCodeInvalidInput, "no room selected")
	}
	return *m.Selected, nil
}

// roomChoices lists every room followed by its sub-rooms, sorted by name.
func roomChoices(ds store.Dataset) []RoomChoice {
	rooms := slices.Clone(ds.Rooms)
	slices.SortFunc(rooms, func(a, b store.RoomRecord) int { return strings.Compare(a.Name, b.Name) })

	classes := make(map[string]string, len(ds.Classes))
	for _, cl := range ds.Classes {
		classes[cl.ID] = cl.Name
	}

	var out []RoomChoice
	for _, r := range rooms {
		out = append(out, RoomChoice{
			RoomID: r.ID,
			Name:   r.Name,
			Class:  classes[r.ClassID],
			Seats:  seatCount(r.Layout),
		})
		for _, sr := range ds.SubRooms {
			if sr.RoomID != r.ID {
				continue
			}
			class := classes[sr.ClassID]
			if class == "" {
				class = classes[r.ClassID]
			}
			layout := sr.Layout
			if layout == nil {
				layout = r.Layout
			}
			out = append(out, RoomChoice{
				RoomID:    r.ID,
				SubRoomID: sr.ID,
				Name:      r.Name + " / " + sr.Name,
				Class:     class,
				Seats:     seatCount(layout),
			})
		}
	}
	return out
}

// seatCount returns -1 when the stored layout cannot be decoded.
func seatCount(layout map[string]any) int {
	cfg, err := store.DecodeLayout(layout)
	if err != nil {
		return -1
	}
	return cfg.TotalSeats()
}

// roomCommand renders a stored room.
func (c *CLI) roomCommand() *cobra.Command {
	var (
		target roomTarget
		opts   renderOpts
	)

	cmd := &cobra.Command{
		Use:   "room [room-id]",
		Short: "Render a stored room",
		Long: `Render the seating plan of a room held in the configured store.

Without a room id, rooms of the file store are listed for selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				target.roomID = args[0]
			}
			target.establishment = opts.establishment
			p, err := c.resolve(cmd.Context(), cfg, target)
			if err != nil {
				return err
			}
			base := opts.output
			if base == "" {
				base = fileSafe(p.Metadata.Room)
			}
			return c.runRender(cmd.Context(), p, basePath(base, ""), &opts, cfg.Policy)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&target.subRoomID, "subroom", "", "sub-room id")
	return cmd
}

// exportCommand writes a stored room to a plan file.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		target roomTarget
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [room-id]",
		Short: "Write a stored room to a plan file",
		Long: `Write the plan of a stored room to a TOML or JSON plan file that
'eduplan render' accepts. The format follows the file extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				target.roomID = args[0]
			}
			p, err := c.resolve(cmd.Context(), cfg, target)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = fileSafe(p.Metadata.Room) + ".toml"
			}
			if err := planfile.Export(p, path); err != nil {
				return err
			}
			printSuccess("Plan exported")
			printFile(path)
			printNewline()
			printNextStep("Render", appName+" render "+path)
			return nil
		},
	}
	target.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "plan file (.toml or .json, default: <room>.toml)")
	return cmd
}

// fileSafe turns a room name into a file name.
func fileSafe(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('-')
		case r == ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "plan"
	}
	return strings.ReplaceAll(b.String(), "_-_", "-")
}
