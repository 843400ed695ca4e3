package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette. lipgloss drops the colors when the output is not a TTY.
var (
	green = lipgloss.Color("35")
	red   = lipgloss.Color("167")
	amber = lipgloss.Color("220")
	teal  = lipgloss.Color("36")
	blue  = lipgloss.Color("75")
	gray  = lipgloss.Color("245")
	dim   = lipgloss.Color("240")
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(dim)
	styleMuted   = lipgloss.NewStyle().Foreground(gray)
	stylePath    = lipgloss.NewStyle().Foreground(gray).Italic(true)
	styleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleWarning = lipgloss.NewStyle().Foreground(amber)
	styleCommand = lipgloss.NewStyle().Foreground(green)
	styleAdded   = lipgloss.NewStyle().Foreground(green).Bold(true)
	styleTyping  = lipgloss.NewStyle().Foreground(blue).Bold(true)

	styleIconSpinner = lipgloss.NewStyle().Foreground(teal)
)

const (
	iconPackage = "📦"
	iconSparkle = "✨"
	iconBranch  = "├─"
	iconLeaf    = "└─"
)

// statusLine is a leading icon plus the style applied to the message.
type statusLine struct {
	icon     string
	iconFg   lipgloss.Color
	msgStyle lipgloss.Style
}

var (
	lineSuccess = statusLine{"✓", green, styleValue}
	lineError   = statusLine{"✗", red, lipgloss.NewStyle()}
	lineInfo    = statusLine{"›", gray, styleMuted}
)

func (l statusLine) print(w io.Writer, format string, args ...any) {
	icon := lipgloss.NewStyle().Foreground(l.iconFg).Render(l.icon)
	fmt.Fprintln(w, icon+" "+l.msgStyle.Render(fmt.Sprintf(format, args...)))
}

func printSuccess(w io.Writer, format string, args ...any) { lineSuccess.print(w, format, args...) }
func printError(w io.Writer, format string, args ...any)   { lineError.print(w, format, args...) }
func printInfo(w io.Writer, format string, args ...any)    { lineInfo.print(w, format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// printNextStep prints a hint such as "✨  Go ahead and run npm install".
func printNextStep(w io.Writer, msg string) {
	fmt.Fprintln(w, iconSparkle+"  "+msg)
}

func printNewline(w io.Writer) { fmt.Fprintln(w) }

func command(s string) string { return styleCommand.Render(s) }
