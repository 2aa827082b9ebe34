package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/malthus/internal/malthus"
)

const (
	historyCapacity = 600
	graphWidth      = 60
	graphHeight     = 8
	tickInterval    = time.Second / 30
)

// Tunable lists the parameters the live view lets the user adjust.
var Tunable = []string{"lambda", "g", "alpha", "subsistence", "max_growth"}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveModel advances one economy per tick and keeps a bounded history of
// income and population for plotting.
type LiveModel struct {
	name          string
	params        malthus.Parameters
	initialParams malthus.Parameters
	state         malthus.State
	incomes       []float64
	populations   []float64
	stepsPerTick  int
	running       bool
	selected      int
	theme         Theme
	st            styles
	showHelp      bool
	notice        string
	err           error
}

// NewLiveModel validates p and returns a model positioned at p's initial
// state.
func NewLiveModel(name string, p malthus.Parameters, theme Theme) (LiveModel, error) {
	if err := p.Validate(); err != nil {
		return LiveModel{}, err
	}
	m := LiveModel{
		name:          name,
		params:        p,
		initialParams: p,
		stepsPerTick:  1,
		running:       true,
		theme:         theme,
		st:            newStyles(theme),
	}
	m.reset()
	return m, nil
}

// WithStepsPerTick sets how many periods each tick advances.
func (m LiveModel) WithStepsPerTick(n int) LiveModel {
	m.stepsPerTick = max(1, n)
	return m
}

func (m LiveModel) Params() malthus.Parameters { return m.params }
func (m LiveModel) State() malthus.State       { return m.state }
func (m LiveModel) Running() bool              { return m.running }
func (m LiveModel) Err() error                 { return m.err }

// Incomes returns the retained income history, oldest first.
func (m LiveModel) Incomes() []float64 {
	out := make([]float64, len(m.incomes))
	copy(out, m.incomes)
	return out
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and advances the economy on each tick.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.params = m.initialParams
			m.reset()
			m.running = true
		case "tab":
			m.selected = (m.selected + 1) % len(Tunable)
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerTick && m.err == nil; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) reset() {
	m.state = m.params.Initial()
	m.incomes = nil
	m.populations = nil
	m.err = nil
	m.notice = ""
	m.record()
}

func (m *LiveModel) step() {
	next, err := malthus.Step(m.state, m.params)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.state = next
	m.record()
}

func (m *LiveModel) record() {
	y, err := m.state.Income(m.params)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.incomes = appendBounded(m.incomes, y)
	m.populations = appendBounded(m.populations, m.state.Population)
}

func appendBounded(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[len(xs)-historyCapacity:]
	}
	return xs
}

// adjust moves the selected parameter by 5% of its value, or by a fixed
// increment when it is zero. Changes that fail validation are refused.
func (m *LiveModel) adjust(dir int) {
	name := Tunable[m.selected]
	v, err := m.params.Get(name)
	if err != nil {
		m.notice = err.Error()
		return
	}
	delta := math.Abs(v) * 0.05
	if delta == 0 {
		delta = 0.005
	}
	next, err := m.params.With(name, v+float64(dir)*delta)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.params = next
	m.notice = ""
}

// View renders the plots and the parameter panel side by side.
func (m LiveModel) View() string {
	var left strings.Builder
	left.WriteString(m.st.header.Render(strings.ToUpper(m.name)) + "\n")
	if len(m.incomes) > 1 {
		left.WriteString(m.st.graph.Render(asciigraph.Plot(m.incomes,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("income per capita"))) + "\n")
		left.WriteString(m.st.graph.Render(asciigraph.Plot(m.populations,
			asciigraph.Height(graphHeight/2),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("population"))) + "\n")
	} else {
		left.WriteString(m.st.subtle.Render("waiting for data") + "\n")
	}

	var right strings.Builder
	right.WriteString(m.status() + "\n\n")
	y := 0.0
	if len(m.incomes) > 0 {
		y = m.incomes[len(m.incomes)-1]
	}
	right.WriteString(m.row("Period", fmt.Sprintf("%d", m.state.T)))
	right.WriteString(m.row("Population", fmt.Sprintf("%.4g", m.state.Population)))
	right.WriteString(m.row("Technology", fmt.Sprintf("%.4g", m.state.Technology)))
	right.WriteString(m.row("Income", m.incomeStyle(y).Render(fmt.Sprintf("%.4f", y))))
	right.WriteString(m.row("Subsistence", fmt.Sprintf("%.4f", m.params.Subsistence)))
	right.WriteString(m.st.subtle.Render(Sparkline(m.incomes, 30)) + "\n")

	right.WriteString("\nPARAMETERS\n")
	for i, name := range Tunable {
		v, _ := m.params.Get(name)
		v0, _ := m.initialParams.Get(name)
		ratio := 0.5
		if v0 != 0 {
			ratio = v / (2 * v0)
		}
		line := fmt.Sprintf("%-12s %s %.4g", name, Bar(ratio, 10), v)
		if i == m.selected {
			right.WriteString(m.st.active.Render("> "+line) + "\n")
		} else {
			right.WriteString("  " + m.st.subtle.Render(line) + "\n")
		}
	}
	if m.notice != "" {
		right.WriteString("\n" + m.st.warning.Render(m.notice) + "\n")
	}
	if m.err != nil {
		right.WriteString("\n" + m.st.trap.Render("stopped: "+m.err.Error()) + "\n")
	}
	right.WriteString(m.st.help.Render("SP:Pause R:Reset Q:Quit\nTab:Select ↑↓:Tune T:Theme ?:Help"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), m.st.panel.Render(right.String()))
	if m.showHelp {
		return m.st.panel.Render(helpText) + "\n" + body
	}
	return body
}

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return m.st.trap.Render("STOPPED")
	case m.running:
		return m.st.running.Render("RUNNING")
	default:
		return m.st.paused.Render("PAUSED")
	}
}

func (m LiveModel) row(label, value string) string {
	return m.st.label.Render(label) + m.st.value.Render(value) + "\n"
}

func (m LiveModel) incomeStyle(y float64) lipgloss.Style {
	if y > m.params.Subsistence {
		return m.st.growth
	}
	return m.st.trap
}

const helpText = `KEYBOARD SHORTCUTS
  Space    Pause/Resume
  R        Reset state and parameters
  Tab      Select next parameter
  Up/K     Increase parameter (+5%)
  Down/J   Decrease parameter (-5%)
  T        Cycle themes
  ?        Toggle this help
  Q        Quit`
