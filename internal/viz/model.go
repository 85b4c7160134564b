package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

const historyCapacity = 300

type TickMsg time.Time

type Options struct {
	Title         string
	FPS           int
	StepsPerFrame int
	Width, Height int
	TrailLength   int
}

func DefaultOptions() Options {
	return Options{
		Title:         "gravsim",
		FPS:           30,
		StepsPerFrame: 10,
		Width:         60,
		Height:        22,
		TrailLength:   200,
	}
}

// Model is the live view. It paces the simulator from the host side: every
// tick takes StepsPerFrame steps, then redraws.
type Model struct {
	sim           *sim.Simulator
	dt            float64
	opts          Options
	canvas        *Canvas
	camera        *Camera
	trails        *Trails
	drift         *metrics.EnergyDrift
	energyHistory []float64
	running       bool
	showTrails    bool
	autoFit       bool
	showHelp      bool
	err           error
}

// NewModel registers a trail observer and an energy-drift metric on s.
func NewModel(s *sim.Simulator, dt float64, opts Options) Model {
	def := DefaultOptions()
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = def.StepsPerFrame
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.TrailLength <= 0 {
		opts.TrailLength = def.TrailLength
	}
	if opts.Title == "" {
		opts.Title = def.Title
	}

	trails := NewTrails(opts.TrailLength, max(1, opts.StepsPerFrame/2))
	s.AddObserver(trails)

	drift := metrics.NewEnergyDrift(s.ForceField().G())
	drift.Observe(s.Steps(), s.Time(), s.System())
	s.AddMetric(drift)

	m := Model{
		sim:           s,
		dt:            dt,
		opts:          opts,
		canvas:        NewCanvas(opts.Width, opts.Height),
		camera:        NewCamera(),
		trails:        trails,
		drift:         drift,
		energyHistory: make([]float64, 0, historyCapacity),
		running:       true,
		showTrails:    true,
		autoFit:       true,
	}
	m.camera.Fit(m.positions())
	m.draw()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
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
		case "n":
			if !m.running && m.err == nil {
				m.advance(1)
			}
		case "+", "=":
			m.opts.StepsPerFrame *= 2
		case "-", "_":
			m.opts.StepsPerFrame = max(1, m.opts.StepsPerFrame/2)
		case "t":
			m.showTrails = !m.showTrails
		case "c":
			m.trails.Clear()
		case "f":
			m.autoFit = !m.autoFit
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "i":
			m.camera.ZoomIn()
		case "o":
			m.camera.ZoomOut()
		case "0":
			m.camera.ResetView()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case TickMsg:
		if m.running && m.err == nil {
			m.advance(m.opts.StepsPerFrame)
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance(steps int) {
	for i := 0; i < steps; i++ {
		if err := m.sim.Step(m.dt); err != nil {
			m.err = err
			m.running = false
			break
		}
	}
	m.energyHistory = append(m.energyHistory, m.drift.Current())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[len(m.energyHistory)-historyCapacity:]
	}
}

func (m *Model) positions() []dynamo.Vector {
	bodies := m.sim.System().Bodies()
	out := make([]dynamo.Vector, len(bodies))
	for i, b := range bodies {
		out[i] = b.Position()
	}
	return out
}

func (m *Model) draw() {
	m.canvas.Clear()
	positions := m.positions()
	if m.autoFit {
		m.camera.Fit(positions)
	}
	w, h := m.canvas.Dots()
	scale := m.camera.Scale(w, h)

	bodies := m.sim.System().Bodies()
	if m.showTrails {
		for i, b := range bodies {
			color := BodyColor(b.Color())
			for _, p := range m.trails.Points(i) {
				if x, y, ok := m.camera.Project(p, w, h); ok {
					m.canvas.SetColor(x, y, color)
				}
			}
		}
	}

	for i, b := range bodies {
		x, y, ok := m.camera.Project(positions[i], w, h)
		if !ok {
			continue
		}
		r := int(math.Round(b.Radius() * scale))
		r = max(1, min(r, 3))
		m.canvas.Disc(x, y, r, BodyColor(b.Color()))
	}
}

// Err is the stability fault that stopped the view, if any.
func (m Model) Err() error { return m.err }

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.opts.Title)) + "\n")

	switch {
	case m.err != nil:
		var se *dynamo.StabilityError
		if errors.As(m.err, &se) {
			s.WriteString(faultStyle.Render(fmt.Sprintf("DIVERGED: body %d %s", se.Body, se.Quantity)) + "\n\n")
		} else {
			s.WriteString(faultStyle.Render("ERROR: "+m.err.Error()) + "\n\n")
		}
	case m.running:
		s.WriteString(runningStyle.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(pausedStyle.Render("PAUSED") + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4g", m.sim.Time())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.sim.Steps())) + "\n")
	s.WriteString(labelStyle.Render("Steps/frame") + valueStyle.Render(fmt.Sprintf("%d", m.opts.StepsPerFrame)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6g", m.drift.Current())) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.3e", m.drift.Value())) + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(Sparkline(m.energyHistory, 30) + "\n")
	}

	s.WriteString("\nBODIES\n")
	for i, b := range m.sim.System().Bodies() {
		dot := lipgloss.NewStyle().Foreground(BodyColor(b.Color())).Render("●")
		s.WriteString(fmt.Sprintf("%s %-3d m=%.3g\n", dot, i, b.Mass()))
	}

	s.WriteString(helpStyle.Render("SP:Pause N:Step +/-:Speed Q:Quit ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.Render()),
		statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space   pause / resume       N       single step when paused
  + / -   double / halve steps per frame
  T       toggle trails        C       clear trails
  F       toggle auto-fit      I / O   zoom in / out
  x y z   rotate (shift reverses)       0       reset view
  Q       quit                 ?       toggle this help
`
