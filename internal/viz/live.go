// Package viz renders a terminal live view of a launch: the firing cycle
// replayed in slow motion with scrolling velocity and pressure charts.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/pistonlab/pistonsim/internal/dynamo"
	"github.com/pistonlab/pistonsim/internal/report"
)

const (
	graphWidth      = 60
	graphHeight     = 6
	historyCapacity = 600

	// A full firing cycle lasts tens of milliseconds; stretch it so the
	// replay takes about ten seconds of wall time.
	replaySeconds = 10.0
	ticksPerSec   = 60
)

type TickMsg time.Time

// Model is the bubbletea model driving the live replay.
type Model struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	tolerance  float64

	state        dynamo.State
	initialState dynamo.State
	t, dt        float64
	endTime      float64

	velHistory      []float64
	pressureHistory []float64

	modelName string
	running   bool
	done      bool
	failed    error
}

// NewModel prepares a replay of the given system from initState to endTime.
func NewModel(dyn dynamo.System, integ dynamo.Integrator, initState []float64, endTime, tolerance float64, modelName string) Model {
	init := dynamo.State(initState).Clone()
	return Model{
		dyn:             dyn,
		integrator:      integ,
		tolerance:       tolerance,
		state:           init.Clone(),
		initialState:    init,
		dt:              endTime / 1000,
		endTime:         endTime,
		velHistory:      make([]float64, 0, historyCapacity),
		pressureHistory: make([]float64, 0, historyCapacity),
		modelName:       modelName,
		running:         true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/ticksPerSec, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the replay.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && !m.done && m.failed == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances simulated time by one tick's share of the replay.
func (m *Model) step() {
	target := m.t + m.endTime/(replaySeconds*ticksPerSec)
	if target > m.endTime {
		target = m.endTime
	}

	for m.t < target {
		dt := m.dt
		if m.t+dt > target {
			dt = target - m.t
		}

		// Advance the clock by the step the integrator actually took,
		// which may be shorter than requested under error control.
		if adaptive, ok := m.integrator.(dynamo.AdaptiveIntegrator); ok {
			next, taken, suggested, err := adaptive.StepAdaptive(m.dyn, m.state, m.t, dt, m.tolerance)
			if err != nil {
				m.failed = err
				return
			}
			m.state = next
			m.t += taken
			if suggested > 0 {
				m.dt = suggested
			}
		} else {
			m.state = m.integrator.Step(m.dyn, m.state, m.t, dt)
			m.t += dt
		}

		if !m.state.IsValid() {
			m.failed = dynamo.ErrInvalidState
			return
		}
	}

	m.record()
	if m.t >= m.endTime {
		m.done = true
	}
}

func (m *Model) record() {
	m.velHistory = append(m.velHistory, m.state[1]*report.FPSPerMPS)
	if len(m.velHistory) > historyCapacity {
		m.velHistory = m.velHistory[1:]
	}
	if pv, ok := m.dyn.(dynamo.PressureVolume); ok {
		m.pressureHistory = append(m.pressureHistory, pv.Pressure(m.state)*report.BarPerPascal)
		if len(m.pressureHistory) > historyCapacity {
			m.pressureHistory = m.pressureHistory[1:]
		}
	}
}

// reset rewinds the replay to the initial state.
func (m *Model) reset() {
	m.t = 0
	m.dt = m.endTime / 1000
	m.state = m.initialState.Clone()
	m.velHistory = m.velHistory[:0]
	m.pressureHistory = m.pressureHistory[:0]
	m.done = false
	m.failed = nil
	m.running = true
}

// View renders the replay screen.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(strings.ToUpper(m.modelName)) + "\n")

	switch {
	case m.failed != nil:
		s.WriteString(statusFailed.Render(fmt.Sprintf("FAILED: %v", m.failed)) + "\n\n")
	case m.done:
		s.WriteString(statusDone.Render("COMPLETE") + "\n\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	s.WriteString(ProgressBar(m.t/m.endTime, graphWidth) + "\n\n")

	if len(m.velHistory) > 1 {
		chart := asciigraph.Plot(m.velHistory,
			asciigraph.Height(graphHeight), asciigraph.Width(graphWidth),
			asciigraph.Caption("Dart Velocity (fps)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	if len(m.pressureHistory) > 1 {
		chart := asciigraph.Plot(m.pressureHistory,
			asciigraph.Height(graphHeight), asciigraph.Width(graphWidth),
			asciigraph.Caption("Chamber Pressure (bar)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f ms", m.t*report.MSPerSecond)) + "\n")
	s.WriteString(labelStyle.Render("Position") + valueStyle.Render(fmt.Sprintf("%.1f mm", m.state[0]*report.MMPerMeter)) + "\n")
	s.WriteString(labelStyle.Render("Velocity") + valueStyle.Render(fmt.Sprintf("%.1f fps", m.state[1]*report.FPSPerMPS)) + "\n")
	if len(m.state) >= 4 {
		s.WriteString(labelStyle.Render("Plunger") + valueStyle.Render(fmt.Sprintf("%.1f mm", m.state[2]*report.MMPerMeter)) + "\n")
	}
	if pv, ok := m.dyn.(dynamo.PressureVolume); ok {
		s.WriteString(labelStyle.Render("Pressure") + valueStyle.Render(fmt.Sprintf("%.3f bar", pv.Pressure(m.state)*report.BarPerPascal)) + "\n")
		s.WriteString(labelStyle.Render("Volume") + valueStyle.Render(fmt.Sprintf("%.2f mL", pv.Volume(m.state)*report.MLPerM3)) + "\n")
	}
	if sl, ok := m.dyn.(dynamo.SpringLoaded); ok {
		s.WriteString(labelStyle.Render("Spring") + valueStyle.Render(fmt.Sprintf("%.1f N", sl.SpringForce(m.state))) + "\n")
	}

	s.WriteString(helpStyle.Render("\nSP:Pause  R:Restart  Q:Quit"))

	return panelStyle.Render(s.String())
}
