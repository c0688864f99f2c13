package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal colors (ANSI 256).
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by the command output, the tables and the explorer.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
)

// statusIcons prefix one-line status messages.
var statusIcons = map[string]lipgloss.Style{
	iconSuccess: lipgloss.NewStyle().Foreground(colorGreen),
	iconError:   lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
	iconInfo:    lipgloss.NewStyle().Foreground(colorGray),
}

func printStatus(icon, format string, args ...any) {
	fmt.Println(statusIcons[icon].Render(icon) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printStatus(iconSuccess, format, args...) }
func printError(format string, args ...any) { printStatus(iconError, format, args...) }
func printInfo(format string, args ...any) { printStatus(iconInfo, format, args...) }

// printDetail prints an indented, dimmed line under a status message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats summarizes a run: drawn nodes, drawn edges (dangling edges
// excluded) and whether the artifacts came from the cache.
func printStats(nodeCount, edgeCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if edgeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)))
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGreen).Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// swatch renders a two-cell block in the given hex color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}

func printNextStep(description, cmd string) {
	command := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	fmt.Println(StyleDim.Render(description+":") + " " + command.Render(cmd))
}

func printNewline() { fmt.Println() }
