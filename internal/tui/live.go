// Package tui renders the live digital twin in the terminal: scrolling
// temperature charts, heater bars, and keyboard control of mode,
// setpoints and manual duties.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/abe-mart/tclab-sim/internal/lab"
)

const (
	graphWidth  = 64
	graphHeight = 10
	barWidth    = 20
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	statsStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// window cycle: 1min, 5min, 10min, unbounded.
var windowChoices = []float64{60, 300, 600, 0}

type TickMsg time.Time

// Model owns the scheduler and drives it on a fixed wall-clock cadence.
// Every tick advances the physics by exactly one step, so simulated
// time tracks tick count, not the wall clock.
type Model struct {
	sched    *lab.Scheduler
	interval time.Duration
	selected int // active channel for up/down tuning: 0 or 1
	message  string
	showHelp bool
}

func NewModel(sched *lab.Scheduler, tickMillis int) Model {
	if tickMillis <= 0 {
		tickMillis = 100
	}
	return Model{
		sched:    sched,
		interval: time.Duration(tickMillis) * time.Millisecond,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.sched.Running() {
				m.sched.Pause()
			} else {
				m.sched.Resume()
			}
		case "a":
			m.sched.SetAutomatic(!m.sched.Automatic())
		case "r":
			m.sched.Reset()
			m.message = ""
		case "tab":
			m.selected = (m.selected + 1) % 2
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "w":
			m.cycleWindow()
		case "s":
			m.message = m.export()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.sched.Tick()
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// adjust tunes the selected channel: manual duty in manual mode,
// setpoint in automatic mode.
func (m *Model) adjust(dir float64) {
	if m.sched.Automatic() {
		p1, p2 := m.sched.Controllers()
		if m.selected == 0 {
			p1.Setpoint += dir
		} else {
			p2.Setpoint += dir
		}
		return
	}
	q1, q2 := m.sched.Actuation()
	if m.selected == 0 {
		q1 += dir * 5
	} else {
		q2 += dir * 5
	}
	m.sched.SetManual(q1, q2)
}

func (m *Model) cycleWindow() {
	cur := m.sched.WindowSeconds()
	for i, w := range windowChoices {
		if w == cur {
			m.sched.SetWindow(windowChoices[(i+1)%len(windowChoices)])
			return
		}
	}
	m.sched.SetWindow(windowChoices[0])
}

func (m *Model) export() string {
	name := fmt.Sprintf("tclab_%s.csv", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return fmt.Sprintf("export failed: %v", err)
	}
	defer f.Close()
	if err := m.sched.ExportCSV(f); err != nil {
		return fmt.Sprintf("export failed: %v", err)
	}
	return fmt.Sprintf("saved %s (%d samples)", name, m.sched.History().Len())
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("TCLAB DIGITAL TWIN") + "\n")
	s.WriteString(m.statusLine() + "\n")

	view := m.sched.Window()
	if len(view) > 1 {
		t1 := make([]float64, len(view))
		t2 := make([]float64, len(view))
		for i, sm := range view {
			t1[i] = sm.T1
			t2[i] = sm.T2
		}
		chart := asciigraph.PlotMany([][]float64{t1, t2},
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(fmt.Sprintf("T1/T2 (degC) %s", m.windowLabel())),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	} else {
		s.WriteString(graphStyle.Render("(collecting samples...)") + "\n")
	}

	s.WriteString(m.statsPanel())
	s.WriteString(helpStyle.Render("\nSP:Pause A:Auto/Manual R:Reset Tab:Channel ↑↓:Tune W:Window S:Export ?:Help Q:Quit"))

	if m.message != "" {
		s.WriteString("\n" + messageStyle.Render(m.message))
	}
	if m.showHelp {
		s.WriteString(m.helpPanel())
	}
	return s.String()
}

func (m Model) statusLine() string {
	status := "RUNNING"
	style := statusStyle
	if m.sched.Diverged() {
		status = "UNSTABLE — integration diverged, press R to reset"
		style = dangerStyle
	} else if !m.sched.Running() {
		status = "PAUSED"
	}
	mode := "MANUAL"
	if m.sched.Automatic() {
		mode = "AUTO"
	}
	return style.Render(status) + statusStyle.Render("  ·  "+mode)
}

func (m Model) windowLabel() string {
	w := m.sched.WindowSeconds()
	if w <= 0 {
		return "[all]"
	}
	return fmt.Sprintf("[%.0fs]", w)
}

func (m Model) statsPanel() string {
	t1, t2 := m.sched.Plant().Sensors()
	q1, q2 := m.sched.Actuation()
	p1, p2 := m.sched.Controllers()
	energy := m.sched.Plant().Energy(m.sched.Plant().State())

	var s strings.Builder
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.1fs", m.sched.Elapsed())) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.1f J", energy)) + "\n\n")
	s.WriteString(m.channelLine(0, "Heater 1", t1, q1, p1.Setpoint) + "\n")
	s.WriteString(m.channelLine(1, "Heater 2", t2, q2, p2.Setpoint) + "\n")
	return statsStyle.Render(s.String())
}

func (m Model) channelLine(idx int, name string, temp, duty, setpoint float64) string {
	filled := int(duty / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
	line := fmt.Sprintf("%-9s %6.2f°C  sp %5.1f  %s %5.1f%%", name, temp, setpoint, bar, duty)
	if idx == m.selected {
		return activeStyle.Render("> " + line)
	}
	return "  " + labelStyle.Render(line)
}

func (m Model) helpPanel() string {
	return helpStyle.Render(`

  Space  pause/resume the simulation clock
  A      toggle manual/automatic (bumpless transfer)
  Tab    select channel for tuning
  ↑/↓    manual: duty ±5%   auto: setpoint ±1°C
  W      cycle display window (60s/300s/600s/all)
  S      export full history as CSV
  R      reset plant, history and controllers`)
}

// Run starts the live view and blocks until the user quits.
func Run(sched *lab.Scheduler, tickMillis int) error {
	p := tea.NewProgram(NewModel(sched, tickMillis))
	_, err := p.Run()
	return err
}
