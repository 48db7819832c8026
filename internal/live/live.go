// Package live renders a running simulation in the terminal: current
// observables alongside a scrolling kinetic-temperature trace.
package live

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/shearmd/internal/config"
	"github.com/san-kum/shearmd/internal/observe"
	"github.com/san-kum/shearmd/internal/sllod"
	"github.com/san-kum/shearmd/internal/system"
)

const historyCapacity = 120

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

type Model struct {
	cfg     *config.Run
	stepper *sllod.Stepper
	potLRC  observe.LRC
	prsLRC  observe.LRC

	sys     *system.State
	initial *system.State

	t       float64
	steps   int
	latest  observe.Set
	history []float64
	running bool
	err     error

	stepsPerFrame int
}

func NewModel(cfg *config.Run, field sllod.ForceField, sys *system.State, potLRC, prsLRC observe.LRC) Model {
	return Model{
		cfg:           cfg,
		stepper:       sllod.NewStepper(cfg.Dt, field),
		potLRC:        potLRC,
		prsLRC:        prsLRC,
		sys:           sys,
		initial:       sys.Clone(),
		history:       make([]float64, 0, historyCapacity),
		running:       true,
		stepsPerFrame: 5,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			m.sys = m.initial.Clone()
			m.t = 0
			m.steps = 0
			m.history = m.history[:0]
			m.err = nil
			m.running = true
		}

	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerFrame; i++ {
				inter, err := m.stepper.Step(m.sys)
				if err != nil {
					m.err = err
					m.running = false
					break
				}
				m.t += m.cfg.Dt
				m.steps++
				m.latest = observe.Compute(m.sys, inter, m.cfg.Cutoff, m.potLRC, m.prsLRC)
			}
			if m.err == nil {
				m.history = append(m.history, m.latest.TempKinetic)
				if len(m.history) > historyCapacity {
					m.history = m.history[1:]
				}
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("shearmd  N=%d  box=%.4f  rate=%.3f", m.sys.N(), m.sys.Box, m.sys.StrainRate)))
	b.WriteString("\n")

	row := func(label string, format string, v float64) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(fmt.Sprintf(format, v)))
		b.WriteString("\n")
	}
	row("time", "%.3f", m.t)
	row("strain", "%.5f", m.sys.Strain)
	row("E/N (full)", "%.6f", m.latest.EnergyFull)
	row("P (full)", "%.6f", m.latest.PressureFull)
	row("T kinetic", "%.6f", m.latest.TempKinetic)
	row("T config", "%.6f", m.latest.TempConfig)

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption("T kinetic"))
		b.WriteString(graphStyle.Render(chart))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("aborted: " + m.err.Error()))
		b.WriteString("\n")
	} else if !m.running {
		b.WriteString(helpStyle.Render("paused"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

func Run(cfg *config.Run, field sllod.ForceField, sys *system.State, potLRC, prsLRC observe.LRC) error {
	p := tea.NewProgram(NewModel(cfg, field, sys, potLRC, prsLRC))
	_, err := p.Run()
	return err
}
