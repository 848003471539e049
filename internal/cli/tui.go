package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// =============================================================================
// RoomListModel - Interactive room selection
// =============================================================================

// RoomChoice is one selectable room or sub-room.
type RoomChoice struct {
	RoomID    string
	SubRoomID string
	Name      string
	Class     string
	Seats     int // -1 when the stored layout is unreadable
}

// Selectable reports whether the room has a readable layout.
func (r RoomChoice) Selectable() bool { return r.Seats >= 0 }

// RoomListModel is the bubbletea model for interactive room selection.
type RoomListModel struct {
	Rooms    []RoomChoice
	Cursor   int
	Selected *RoomChoice
	Height   int
	Offset   int
}

// NewRoomListModel creates a new room list model.
func NewRoomListModel(rooms []RoomChoice) RoomListModel {
	return RoomListModel{
		Rooms:  rooms,
		Height: 15,
	}
}

func (m RoomListModel) Init() tea.Cmd {
	return nil
}

func (m RoomListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rooms)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rooms) == 0 {
				return m, nil
			}
			room := m.Rooms[m.Cursor]
			if !room.Selectable() {
				return m, nil
			}
			m.Selected = &room
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m RoomListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Room"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rooms))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rooms[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		seats := "unreadable"
		if r.Selectable() {
			seats = strconv.Itoa(r.Seats)
		}
		class := r.Class
		if class == "" {
			class = iconEmpty
		}
		rows = append(rows, []string{cursor, r.Name, class, seats})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("", "Room", "Class", "Seats").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Rooms) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.Rooms[idx].Selectable() {
				return base.Foreground(colorMuted)
			}
			if idx == m.Cursor {
				return base.Foreground(colorAccent).Bold(true)
			}
			if col == 2 || col == 3 {
				return base.Foreground(colorLabel)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rooms))))

	return b.String()
}
