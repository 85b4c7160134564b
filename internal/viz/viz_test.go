package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

func TestCanvas_SetAndString(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if !c.IsSet(0, 0) || !c.IsSet(1, 3) {
		t.Fatal("expected dots to be set")
	}
	want := string([]rune{0x2800 | 0x01 | 0x80, 0x2800}) + "\n"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("expected clear canvas")
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7, "")
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d, %d) not set", i, i)
		}
	}
}

func TestCamera_ProjectFitted(t *testing.T) {
	cam := NewCamera()
	pts := []dynamo.Vector{{-1, -1}, {1, 1}}
	cam.Fit(pts)

	x, y, ok := cam.Project(dynamo.Vector{0, 0}, 100, 100)
	if !ok || x != 50 || y != 50 {
		t.Errorf("centre projected to (%d, %d, %v), want (50, 50, true)", x, y, ok)
	}
	for _, p := range pts {
		if _, _, ok := cam.Project(p, 100, 100); !ok {
			t.Errorf("fitted point %v outside view", p)
		}
	}

	x1, y1, _ := cam.Project(dynamo.Vector{1, 1}, 100, 100)
	if x1 <= 50 || y1 >= 50 {
		t.Errorf("+x+y should land right and up, got (%d, %d)", x1, y1)
	}

	if _, _, ok := cam.Project(dynamo.Vector{100, 0}, 100, 100); ok {
		t.Error("far point should be outside view")
	}
}

func TestTrails_RingOrder(t *testing.T) {
	b, err := physics.NewBody([]float64{0, 0}, []float64{1, 0}, 1, 1, "red")
	if err != nil {
		t.Fatal(err)
	}
	sys, err := physics.NewSystem(b)
	if err != nil {
		t.Fatal(err)
	}

	tr := NewTrails(3, 1)
	for step := 1; step <= 5; step++ {
		if err := b.SetPosition([]float64{float64(step), 0}); err != nil {
			t.Fatal(err)
		}
		tr.OnStep(step, 0, sys)
	}

	pts := tr.Points(0)
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i, want := range []float64{3, 4, 5} {
		if pts[i][0] != want {
			t.Errorf("point %d = %v, want x=%v", i, pts[i], want)
		}
	}
	if tr.Points(7) != nil {
		t.Error("expected nil for unknown body")
	}
}

func TestBodyColor(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"green", "#50fa7b"},
		{" Green ", "#50fa7b"},
		{"#123abc", "#123abc"},
		{"#12", "#ffffff"},
		{"", "#ffffff"},
	}
	for _, tt := range tests {
		if got := string(BodyColor(tt.tag)); got != tt.want {
			t.Errorf("BodyColor(%q) = %s, want %s", tt.tag, got, tt.want)
		}
	}
}

func newModel(t *testing.T, bodies ...*physics.Body) (Model, *sim.Simulator) {
	t.Helper()
	sys, err := physics.NewSystem(bodies...)
	if err != nil {
		t.Fatal(err)
	}
	ff, err := physics.NewForceField(1.0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sim.New(sys, ff)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.StepsPerFrame = 4
	opts.Title = "binary"
	return NewModel(s, 0.001, opts), s
}

func TestModel_TickSteps(t *testing.T) {
	a, _ := physics.NewBody([]float64{-0.5, 0}, []float64{0, -0.7}, 1, 0.05, "yellow")
	b, _ := physics.NewBody([]float64{0.5, 0}, []float64{0, 0.7}, 1, 0.05, "cyan")
	m, s := newModel(t, a, b)

	next, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("expected next tick")
	}
	m = next.(Model)
	if s.Steps() != 4 {
		t.Errorf("expected 4 steps after one tick, got %d", s.Steps())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	m2, _ := m.Update(TickMsg{})
	if s.Steps() != 4 {
		t.Errorf("paused model stepped: %d", s.Steps())
	}

	next, _ = m2.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if s.Steps() != 5 {
		t.Errorf("single step: expected 5 steps, got %d", s.Steps())
	}

	view := next.(Model).View()
	for _, want := range []string{"BINARY", "PAUSED", "BODIES"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_StopsOnFault(t *testing.T) {
	a, _ := physics.NewBody([]float64{0, 0}, []float64{0, 0}, 1, 1, "")
	b, _ := physics.NewBody([]float64{1e-110, 0}, []float64{0, 0}, 1, 1, "")
	m, s := newModel(t, a, b)

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.Err() == nil {
		t.Fatal("expected stability fault")
	}
	if s.Steps() != 0 {
		t.Errorf("expected no completed steps, got %d", s.Steps())
	}
	if !strings.Contains(m.View(), "DIVERGED") {
		t.Error("view should report divergence")
	}
}

func TestModel_Quit(t *testing.T) {
	a, _ := physics.NewBody([]float64{0, 0}, []float64{0, 0}, 1, 1, "")
	m, _ := newModel(t, a)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
