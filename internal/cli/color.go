package cli

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette, Cargo-like.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	stylePipe    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePath    = lipgloss.NewStyle().Bold(true)
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// change markers
	styleAdded    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleModified = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleRemoved  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func paint(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error styles an error label.
func Error(s string) string { return paint(styleError, s) }

// Warning styles a warning label.
func Warning(s string) string { return paint(styleWarning, s) }

// Note styles a note label.
func Note(s string) string { return paint(styleNote, s) }

// Help styles a help label.
func Help(s string) string { return paint(styleHelp, s) }

// Success styles a success message.
func Success(s string) string { return paint(styleSuccess, s) }

// Info styles informational text.
func Info(s string) string { return paint(styleInfo, s) }

// Code styles an error code.
func Code(s string) string { return paint(styleError, s) }

// Pipe returns the gutter character.
func Pipe() string { return paint(stylePipe, "|") }

// FilePath styles a path.
func FilePath(s string) string { return paint(stylePath, s) }

// Header styles a table header.
func Header(s string) string { return paint(styleHeader, s) }

// Dim styles muted text.
func Dim(s string) string { return paint(styleDim, s) }

// Added styles an added marker.
func Added(s string) string { return paint(styleAdded, s) }

// Modified styles a modified marker.
func Modified(s string) string { return paint(styleModified, s) }

// Removed styles a removed marker.
func Removed(s string) string { return paint(styleRemoved, s) }

// ChangeMarker returns the one-character marker for a change kind:
// "+" added, "~" modified, "-" removed, " " otherwise.
func ChangeMarker(kind string) string {
	switch kind {
	case "added":
		return Added("+")
	case "modified":
		return Modified("~")
	case "removed":
		return Removed("-")
	}
	return " "
}
