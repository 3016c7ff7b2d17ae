package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/indoorroute/pkg/journey"
)

var (
	navFloorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	navPathStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	navWaitingStyle = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	navBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// journeyDriver is the part of the engine the navigator drives.
type journeyDriver interface {
	OnFloorChange(ctx context.Context, floor string) ([]string, bool, error)
	AdvanceRoute() bool
	Journey() journey.MultiFloorRoute
}

// =============================================================================
// Navigator - Interactive journey walk-through
// =============================================================================

// floorShownMsg carries the result of a floor change.
type floorShownMsg struct {
	floor     string
	nodes     []string
	published bool
	err       error
}

// Navigator is the bubbletea model for walking a journey. The traveller
// switches the displayed floor with left/right and advances with enter;
// a path appears only when the displayed floor is the current step's floor.
type Navigator struct {
	ctx    context.Context
	driver journeyDriver
	floors []string

	Floor     string
	Nodes     []string
	Published bool
	Route     journey.MultiFloorRoute
	Done      bool
	Err       error
}

func newNavigator(ctx context.Context, d journeyDriver, floors []string) Navigator {
	route := d.Journey()
	n := Navigator{ctx: ctx, driver: d, floors: floors, Route: route}
	if step, ok := route.Current(); ok {
		n.Floor = step.Floor
	} else if len(floors) > 0 {
		n.Floor = floors[0]
	}
	return n
}

func (m Navigator) Init() tea.Cmd {
	return m.show(m.Floor)
}

// show notifies the engine that floor is displayed.
func (m Navigator) show(floor string) tea.Cmd {
	ctx, d := m.ctx, m.driver
	return func() tea.Msg {
		nodes, published, err := d.OnFloorChange(ctx, floor)
		return floorShownMsg{floor: floor, nodes: nodes, published: published, err: err}
	}
}

func (m Navigator) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case floorShownMsg:
		if msg.floor != m.Floor {
			return m, nil
		}
		m.Err = msg.err
		if msg.published {
			m.Nodes, m.Published = msg.nodes, true
		}
		m.Route = m.driver.Journey()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			return m.switchFloor(-1)
		case "right", "l":
			return m.switchFloor(1)
		case "enter", "n", " ":
			if m.Done {
				return m, tea.Quit
			}
			if !m.driver.AdvanceRoute() {
				m.Done = true
				m.Route = m.driver.Journey()
				m.Nodes, m.Published = nil, false
				return m, nil
			}
			m.Route = m.driver.Journey()
			m.Nodes, m.Published = nil, false
			if step, ok := m.Route.Current(); ok {
				m.Floor = step.Floor
			}
			return m, m.show(m.Floor)
		}
	}
	return m, nil
}

func (m Navigator) switchFloor(delta int) (tea.Model, tea.Cmd) {
	if len(m.floors) == 0 {
		return m, nil
	}
	i := slices.Index(m.floors, m.Floor)
	i = (i + delta + len(m.floors)) % len(m.floors)
	m.Floor = m.floors[i]
	m.Nodes, m.Published = nil, false
	return m, m.show(m.Floor)
}

func (m Navigator) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Journey"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ change floor  ⏎ next step  q quit"))
	b.WriteString("\n\n")

	if m.Done {
		b.WriteString(StyleSuccess.Render(iconSuccess + " You have arrived."))
		b.WriteString("\n")
		return b.String()
	}

	writeSteps(&b, m.Route.Steps, m.Route.CurrentStep)
	b.WriteString("\n")

	var body string
	switch {
	case m.Err != nil:
		body = styleIconError.Render(iconError) + " " + m.Err.Error()
	case m.Published && m.Nodes == nil:
		body = StyleWarning.Render("No walkable path for this step")
	case m.Published:
		body = navPathStyle.Render(formatPath(m.Nodes))
	default:
		want := ""
		if step, ok := m.Route.Current(); ok {
			want = step.Floor
		}
		body = navWaitingStyle.Render(fmt.Sprintf("Go to floor %s to see the next path", want))
	}
	b.WriteString(navBoxStyle.Render(navFloorStyle.Render(m.Floor) + "\n" + body))
	b.WriteString("\n")
	return b.String()
}
