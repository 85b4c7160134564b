package store

import (
	"github.com/san-kum/gravsim/internal/physics"
)

// Sample is the state of every body at one recorded step. Rows are body
// position followed by velocity, in body index order.
type Sample struct {
	Step int
	Time float64
	Rows [][]float64
}

// Recorder is a sim.Observer that keeps every Nth step.
type Recorder struct {
	every   int
	dim     int
	samples []Sample
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

// Capture records sys unconditionally, typically the initial state before a run.
func (r *Recorder) Capture(step int, t float64, sys *physics.System) {
	r.dim = sys.Dim()
	rows := make([][]float64, sys.Len())
	for i, b := range sys.Bodies() {
		row := make([]float64, 0, 2*r.dim)
		row = append(row, b.Position()...)
		row = append(row, b.Velocity()...)
		rows[i] = row
	}
	r.samples = append(r.samples, Sample{Step: step, Time: t, Rows: rows})
}

func (r *Recorder) OnStep(step int, t float64, sys *physics.System) {
	if step%r.every == 0 {
		r.Capture(step, t, sys)
	}
}

func (r *Recorder) Samples() []Sample { return r.samples }
func (r *Recorder) Len() int          { return len(r.samples) }

func (r *Recorder) Reset() {
	r.samples = r.samples[:0]
}
