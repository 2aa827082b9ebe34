package viz

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/malthus/internal/malthus"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m LiveModel, msgs ...tea.Msg) LiveModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(LiveModel)
	}
	return m
}

func ticks(n int) []tea.Msg {
	msgs := make([]tea.Msg, n)
	for i := range msgs {
		msgs[i] = TickMsg(time.Time{})
	}
	return msgs
}

func newTestModel(t *testing.T) LiveModel {
	t.Helper()
	m, err := NewLiveModel("stagnation", malthus.DefaultParameters(), ThemeMinimal)
	if err != nil {
		t.Fatalf("NewLiveModel: %v", err)
	}
	return m
}

func TestNewLiveModelRejectsInvalid(t *testing.T) {
	p := malthus.DefaultParameters()
	p.Alpha = 1.2
	if _, err := NewLiveModel("bad", p, ThemeMinimal); !errors.Is(err, malthus.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestTickAdvances(t *testing.T) {
	m := newTestModel(t)
	if m.State().T != 0 || len(m.Incomes()) != 1 {
		t.Fatalf("initial model at t=%d with %d incomes", m.State().T, len(m.Incomes()))
	}

	next, cmd := m.Update(TickMsg(time.Time{}))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	m = send(t, next.(LiveModel), ticks(2)...)

	if m.State().T != 3 {
		t.Errorf("expected t=3, got %d", m.State().T)
	}
	if len(m.Incomes()) != 4 {
		t.Errorf("expected 4 incomes, got %d", len(m.Incomes()))
	}

	want, err := malthus.Simulate(malthus.DefaultParameters().Initial(), malthus.DefaultParameters(), 3)
	if err != nil {
		t.Fatal(err)
	}
	final, err := want.Final()
	if err != nil {
		t.Fatal(err)
	}
	if m.State() != final {
		t.Errorf("live state %v differs from simulated %v", m.State(), final)
	}
}

func TestStepsPerTick(t *testing.T) {
	m := newTestModel(t).WithStepsPerTick(5)
	m = send(t, m, ticks(2)...)
	if m.State().T != 10 {
		t.Errorf("expected t=10, got %d", m.State().T)
	}

	m = newTestModel(t).WithStepsPerTick(0)
	m = send(t, m, ticks(1)...)
	if m.State().T != 1 {
		t.Errorf("non-positive steps per tick should fall back to 1, got t=%d", m.State().T)
	}
}

func TestPauseStopsStepping(t *testing.T) {
	m := send(t, newTestModel(t), keyMsg(" "))
	if m.Running() {
		t.Fatal("space should pause")
	}
	m = send(t, m, ticks(5)...)
	if m.State().T != 0 {
		t.Errorf("paused model advanced to t=%d", m.State().T)
	}
	m = send(t, m, keyMsg(" "), TickMsg(time.Time{}))
	if m.State().T != 1 {
		t.Errorf("resumed model should be at t=1, got %d", m.State().T)
	}
}

func TestResetRestoresInitial(t *testing.T) {
	m := newTestModel(t)
	initial := m.Params()
	m = send(t, m, ticks(10)...)
	m = send(t, m, keyMsg("k"), keyMsg(" "))
	if m.Params() == initial {
		t.Fatal("adjust should have changed lambda")
	}

	m = send(t, m, keyMsg("r"))
	if m.Params() != initial {
		t.Errorf("reset params = %+v, want %+v", m.Params(), initial)
	}
	if m.State() != initial.Initial() {
		t.Errorf("reset state = %v, want %v", m.State(), initial.Initial())
	}
	if !m.Running() {
		t.Error("reset should resume")
	}
	if len(m.Incomes()) != 1 {
		t.Errorf("reset should clear history, got %d incomes", len(m.Incomes()))
	}
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name    string
		tabs    int
		key     string
		param   string
		want    float64
		refused bool
	}{
		{"lambda up", 0, "k", "lambda", 0.525, false},
		{"lambda down", 0, "j", "lambda", 0.475, false},
		{"g up from zero", 1, "k", "g", 0.005, false},
		{"g down from zero", 1, "j", "g", -0.005, false},
		{"alpha up", 2, "k", "alpha", 0.735, false},
		{"max growth down refused", 4, "j", "max_growth", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			for i := 0; i < tt.tabs; i++ {
				m = send(t, m, keyMsg("tab"))
			}
			m = send(t, m, keyMsg(tt.key))

			got, err := m.Params().Get(tt.param)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s = %v, want %v", tt.param, got, tt.want)
			}
			if refused := m.notice != ""; refused != tt.refused {
				t.Errorf("refused = %v, want %v (notice %q)", refused, tt.refused, m.notice)
			}
		})
	}
}

func TestTabWraps(t *testing.T) {
	m := newTestModel(t)
	for range Tunable {
		m = send(t, m, keyMsg("tab"))
	}
	if m.selected != 0 {
		t.Errorf("selection should wrap to 0, got %d", m.selected)
	}
}

func TestHistoryBounded(t *testing.T) {
	m := newTestModel(t).WithStepsPerTick(historyCapacity + 25)
	m = send(t, m, ticks(1)...)
	if got := len(m.Incomes()); got != historyCapacity {
		t.Errorf("expected %d retained incomes, got %d", historyCapacity, got)
	}
	if m.State().T != historyCapacity+25 {
		t.Errorf("expected t=%d, got %d", historyCapacity+25, m.State().T)
	}
}

func TestQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{keyMsg("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := newTestModel(t).Update(msg)
		if cmd == nil {
			t.Fatalf("%q should return a command", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q should quit", msg.String())
		}
	}
}

func TestThemeCycles(t *testing.T) {
	m := send(t, newTestModel(t), keyMsg("t"))
	if m.theme.Name != NextTheme(ThemeMinimal).Name {
		t.Errorf("theme = %s, want %s", m.theme.Name, NextTheme(ThemeMinimal).Name)
	}
	if NextTheme(Themes[len(Themes)-1]).Name != Themes[0].Name {
		t.Error("NextTheme should wrap")
	}
	if GetTheme("no-such-theme").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	v := m.View()
	for _, want := range []string{"STAGNATION", "RUNNING", "waiting for data", "lambda"} {
		if !strings.Contains(v, want) {
			t.Errorf("initial view missing %q", want)
		}
	}

	m = send(t, m, ticks(20)...)
	m = send(t, m, keyMsg(" "))
	v = m.View()
	for _, want := range []string{"PAUSED", "income per capita", "population"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = send(t, m, keyMsg("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay not shown")
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline([]float64{1, 2}, 0) != "" {
		t.Error("zero width should render nothing")
	}
	if got := Sparkline(nil, 5); got != strings.Repeat("─", 5) {
		t.Errorf("empty sparkline = %q", got)
	}

	got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("ascending sparkline = %q", got)
	}
	if n := utf8.RuneCountInString(Sparkline(make([]float64, 100), 20)); n != 20 {
		t.Errorf("expected 20 runes, got %d", n)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "[----]"},
		{0.5, "[==--]"},
		{1, "[====]"},
		{3, "[====]"},
		{-1, "[----]"},
	}
	for _, tt := range tests {
		if got := Bar(tt.ratio, 4); got != tt.want {
			t.Errorf("Bar(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}
