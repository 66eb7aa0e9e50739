package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odestream/internal/analysis"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 600
	frameInterval   = time.Second / 60
)

// Mode selects what the canvas shows.
type Mode int

const (
	// ModeSeries plots the selected slot against time.
	ModeSeries Mode = iota
	// ModePhase plots slot 0 against the selected slot.
	ModePhase
	// ModeReturn plots y[k+1] against y[k] for the selected slot.
	ModeReturn
	// Mode3D projects the first three slots through a rotating camera.
	Mode3D
)

func (m Mode) String() string {
	switch m {
	case ModeSeries:
		return "time series"
	case ModePhase:
		return "phase portrait"
	case ModeReturn:
		return "return map"
	case Mode3D:
		return "3d"
	}
	return "unknown"
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the live viewer. Each frame it calls Advance on the engine once,
// which also applies the engine's pacing delay.
type Model struct {
	engine  *sim.Engine
	metrics []dynamo.Metric
	labels  dynamo.Labels
	slots   []int // labelled slots

	mode     Mode
	selected int // index into slots
	running  bool
	err      error

	canvas   *Canvas
	camera   *Camera
	themeIdx int
	styles   styles
}

type ModelOption func(*Model)

// WithMetrics shows the current value of each metric in the side panel. The
// metrics are reset together with the engine.
func WithMetrics(ms ...dynamo.Metric) ModelOption {
	return func(m *Model) { m.metrics = append(m.metrics, ms...) }
}

// WithMode selects the initial canvas mode.
func WithMode(mode Mode) ModelOption {
	return func(m *Model) { m.mode = mode }
}

// WithTheme selects a color theme by name.
func WithTheme(name string) ModelOption {
	return func(m *Model) {
		for i, t := range Themes {
			if t.Name == name {
				m.themeIdx = i
			}
		}
	}
}

func NewModel(engine *sim.Engine, opts ...ModelOption) Model {
	labels := engine.Labels()
	m := Model{
		engine:  engine,
		labels:  labels,
		slots:   labels.Slots(),
		running: true,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
	}
	if len(m.slots) > 1 {
		m.selected = 1
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.mode == Mode3D && len(m.slots) < 3 {
		m.mode = ModeSeries
	}
	m.styles = newStyles(Themes[m.themeIdx])
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
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
		case "tab":
			if len(m.slots) > 0 {
				m.selected = (m.selected + 1) % len(m.slots)
			}
		case "m":
			m.cycleMode()
		case "t":
			m.themeIdx = (m.themeIdx + 1) % len(Themes)
			m.styles = newStyles(Themes[m.themeIdx])
		case "x":
			m.camera.RotateX(0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case tickMsg:
		m.step()
		if m.mode == Mode3D && m.running {
			m.camera.RotateY(0.005)
		}
		return m, tick()
	}
	return m, nil
}

// step advances the engine by one sample unless paused, finished or failed.
func (m *Model) step() {
	if !m.running || m.err != nil || m.engine.Done() {
		return
	}
	if err := m.engine.Advance(); err != nil {
		m.err = err
		m.running = false
	}
}

func (m *Model) reset() {
	m.engine.Reset()
	for _, mt := range m.metrics {
		mt.Reset()
	}
	m.err = nil
	m.running = true
}

func (m *Model) cycleMode() {
	m.mode = (m.mode + 1) % 4
	if m.mode == Mode3D && len(m.slots) < 3 {
		m.mode = ModeSeries
	}
}

// Err returns the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) Mode() Mode { return m.mode }

// Slot returns the state slot the canvas is currently following.
func (m Model) Slot() int {
	if len(m.slots) == 0 {
		return 0
	}
	return m.slots[m.selected]
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(m.canvas.String())

	traj := m.engine.Trajectory()
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render(strings.ToUpper(m.engine.System().Name())) + "\n")
	s.WriteString(st.label.Render("solver") + st.value.Render(m.engine.Solver()) + "\n")
	s.WriteString(m.status() + "\n\n")

	t := m.engine.Config().T0
	if traj.Len() > 0 {
		t = traj.Last().T
	}
	span := m.engine.TEnd() - m.engine.Config().T0
	s.WriteString(st.label.Render("time") + st.value.Render(fmt.Sprintf("%.3f / %.3f", t, m.engine.TEnd())) + "\n")
	s.WriteString(st.label.Render("") + st.value.Render(ProgressBar((t-m.engine.Config().T0)/span, 24)) + "\n")
	s.WriteString(st.label.Render("samples") + st.value.Render(fmt.Sprintf("%d", traj.Len())) + "\n\n")

	for i, slot := range m.slots {
		val := "-"
		if traj.Len() > 0 {
			val = fmt.Sprintf("%.5g", traj.Last().Y[slot])
		}
		line := st.label.Render(m.labels[slot]) + st.value.Render(val)
		if i == m.selected {
			line = st.active.Render("> ") + line
		} else {
			line = "  " + line
		}
		s.WriteString(line + "\n")
	}

	if len(m.metrics) > 0 {
		s.WriteString("\n")
		for _, mt := range m.metrics {
			s.WriteString(st.label.Render(mt.Name()) + st.value.Render(fmt.Sprintf("%.4g", mt.Value())) + "\n")
		}
	}

	if traj.Len() > 1 && m.mode != ModeSeries {
		series := tail(traj.Component(m.Slot()), historyCapacity)
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(m.labels[m.Slot()]))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit\nTab:Slot M:" + m.mode.String() + " T:Theme"))
	panel := st.panel.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.bad.Render("ERROR ") + m.styles.value.Render(m.err.Error())
	case m.engine.Done():
		return m.styles.ok.Render("DONE")
	case !m.running:
		return m.styles.warn.Render("PAUSED")
	}
	return m.styles.ok.Render("RUNNING")
}

// draw renders the current mode onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	traj := m.engine.Trajectory()
	if traj.Len() == 0 {
		return
	}
	slot := m.Slot()

	switch m.mode {
	case ModeSeries:
		times, ys := tail(traj.Times(), historyCapacity), tail(traj.Component(slot), historyCapacity)
		points := make([]analysis.Point, len(ys))
		for i := range ys {
			points[i] = analysis.Point{X: times[i], Y: ys[i]}
		}
		m.canvas.Plot(points, true)
	case ModePhase:
		x := 0
		if len(m.slots) > 0 {
			x = m.slots[0]
		}
		m.canvas.Plot(tail(analysis.Project(traj, x, slot).Points, historyCapacity), true)
	case ModeReturn:
		m.canvas.Plot(tail(analysis.ReturnMap(traj, slot).Points, historyCapacity), false)
	case Mode3D:
		n := traj.Len()
		start := max(0, n-historyCapacity)
		trail := make([]Vec3, 0, n-start)
		for i := start; i < n; i++ {
			y := traj.At(i).Y
			trail = append(trail, Vec3{y[m.slots[0]], y[m.slots[2]], y[m.slots[1]]})
		}
		DrawTrail(m.canvas, trail, m.camera)
	}
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
