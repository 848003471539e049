package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// Terminal colours follow the printed sheet: indigo brand, amber for
// delegates, green for eco-delegates.
var (
	colorAccent   = lipgloss.Color("#6366F1")
	colorDelegate = lipgloss.Color("#F59E0B")
	colorEco      = lipgloss.Color("#22C55E")
	colorError    = lipgloss.Color("#EF4444")
	colorCommand  = lipgloss.Color("#60A5FA")
	colorValue    = lipgloss.Color("255")
	colorLabel    = lipgloss.Color("245")
	colorMuted    = lipgloss.Color("240")
)

// Exported styles are shared with the room picker.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorDelegate)
)

var (
	styleIconOK      = lipgloss.NewStyle().Foreground(colorEco)
	styleIconFailed  = lipgloss.NewStyle().Foreground(colorError)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorDelegate)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorLabel)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)

	styleLabel    = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleHeader   = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	styleCached   = lipgloss.NewStyle().Foreground(colorEco)
	styleComputed = lipgloss.NewStyle().Foreground(colorLabel)
	styleCommand  = lipgloss.NewStyle().Foreground(colorCommand)

	styleDelegate    = lipgloss.NewStyle().Foreground(colorDelegate).Bold(true)
	styleEcoDelegate = lipgloss.NewStyle().Foreground(colorEco).Bold(true)
)

const (
	iconOK      = "✓"
	iconFailed  = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconEmpty   = "·"
	iconArrow   = "→"
)

// status prints one line led by a coloured icon.
func status(icon lipgloss.Style, glyph, format string, args ...any) {
	fmt.Fprintln(stdout, icon.Render(glyph)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(styleIconOK, iconOK, format, args...) }
func printError(format string, args ...any)   { status(styleIconFailed, iconFailed, format, args...) }
func printInfo(format string, args ...any)    { status(styleIconInfo, iconInfo, format, args...) }

func printWarning(format string, args ...any) {
	status(styleIconWarning, iconWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints seat counts and whether the result came from the cache.
func printStats(seats, occupied int, cached bool) {
	parts := []string{"no seats configured"}
	if seats > 0 {
		parts = []string{fmt.Sprintf("%d seats", seats), fmt.Sprintf("%d occupied", occupied)}
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }
