// Package ui holds the interactive parts of the nocstudio CLI: line
// prompts for overwrite decisions and the entity browser TUI.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
)

// Theme defines the color scheme for the browser.
var Theme = struct {
	Primary    tcell.Color
	Accent     tcell.Color
	Added      tcell.Color
	Modified   tcell.Color
	Removed    tcell.Color
	Text       tcell.Color
	TextDim    tcell.Color
	Background tcell.Color
	Border     tcell.Color
	Selection  tcell.Color
	Highlight  tcell.Color
}{
	Primary:    tcell.ColorBlue,
	Accent:     tcell.ColorAqua,
	Added:      tcell.ColorGreen,
	Modified:   tcell.ColorYellow,
	Removed:    tcell.ColorRed,
	Text:       tcell.ColorWhite,
	TextDim:    tcell.ColorGray,
	Background: tcell.ColorBlack,
	Border:     tcell.ColorGray,
	Selection:  tcell.ColorTeal,
	Highlight:  tcell.ColorWhite,
}

// tview color tags
const (
	tagLabel    = "[yellow]"
	tagValue    = "[white]"
	tagAdded    = "[green]"
	tagModified = "[yellow]"
	tagRemoved  = "[red]"
	tagMuted    = "[gray]"
	tagReset    = "[-]"
)

// Panel titles
const (
	panelEntities   = " Entities "
	panelProperties = " Properties "
	panelChanges    = " Changes "
)

const hintsBrowse = " q quit  h/l panels  j/k navigate  g/G top/bottom "

var (
	primaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func primary(s string) string { return primaryStyle.Render(s) }
func warning(s string) string { return warningStyle.Render(s) }
func dim(s string) string     { return dimStyle.Render(s) }

// IsTerminal reports whether both stdin and stdout are terminals.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}
