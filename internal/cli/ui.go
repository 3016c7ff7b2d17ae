package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/indoorroute/pkg/connector"
	"github.com/matzehuels/indoorroute/pkg/journey"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - connectors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleConnector = lipgloss.NewStyle().Foreground(colorBlue)
	styleCommand   = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCurrent = "▸"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Routes and Steps
// =============================================================================

// formatPath joins node ids with arrows.
func formatPath(nodes []string) string {
	return strings.Join(nodes, StyleDim.Render(" "+iconArrow+" "))
}

// printRouteStats prints node count and distance on a single line.
func printRouteStats(nodes int, distance float64) {
	line := StyleDim.Render(fmt.Sprintf("%d nodes", nodes)) +
		StyleDim.Render(" · ") +
		StyleDim.Render(fmt.Sprintf("%.1f units", distance))
	fmt.Println("  " + line)
}

// viaLabel renders the connector type used to leave a floor.
func viaLabel(t connector.Type) string {
	switch t {
	case connector.Elevator:
		return "take the elevator"
	case connector.Escalator:
		return "take the escalator"
	default:
		return "take the stairs"
	}
}

// writeSteps renders journey steps as a numbered list. current marks the
// active step; pass -1 for none.
func writeSteps(w io.Writer, steps []journey.RouteStep, current int) {
	for i, s := range steps {
		marker := " "
		style := StyleValue
		if i == current {
			marker = StyleHighlight.Render(iconCurrent)
			style = StyleHighlight
		} else if current >= 0 && i < current {
			style = StyleDim
		}
		line := fmt.Sprintf("%d. [%s] %s %s %s", i+1, s.Floor, s.From, iconArrow, s.To)
		fmt.Fprintf(w, "%s %s\n", marker, style.Render(line))
		if i < len(steps)-1 {
			fmt.Fprintf(w, "     %s\n", styleConnector.Render(fmt.Sprintf("then %s to %s", viaLabel(s.Via), steps[i+1].Floor)))
		}
	}
}
